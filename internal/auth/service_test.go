package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

var pgErr = errors.New("db error")

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	return mock
}

func TestRegisterSuccess(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "user@example.com", "user", pgxmock.AnyArg(), "", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	svc := NewService("secret", mock)
	public, err := svc.Register(context.Background(), RegisterRequest{Email: "user@example.com", Username: "user", Password: "password1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if public.Email != "user@example.com" || public.Username != "user" {
		t.Fatalf("unexpected projection: %+v", public)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc := NewService("secret", nil)
	if _, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.com", Username: "a", Password: "short"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestRegisterHashFailure(t *testing.T) {
	old := hashPasswordFn
	defer func() { hashPasswordFn = old }()
	hashPasswordFn = func([]byte, int) ([]byte, error) { return nil, pgErr }

	svc := NewService("secret", nil)
	if _, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.com", Username: "a", Password: "password1"}); err == nil {
		t.Fatalf("expected hash error")
	}
}

func TestRegisterConflict(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "user@example.com", "user", pgxmock.AnyArg(), "", "").
		WillReturnError(pgErr)

	svc := NewService("secret", mock)
	if _, err := svc.Register(context.Background(), RegisterRequest{Email: "user@example.com", Username: "user", Password: "password1"}); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestLoginSuccess(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, email, username, password_hash, full_name, avatar_url, created_at, updated_at`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "password_hash", "full_name", "avatar_url", "created_at", "updated_at"}).
			AddRow("user-1", "user@example.com", "user", string(hash), "", "", now, now))

	svc := NewService("secret", mock)
	resp, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" || resp.User.ID != "user-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLoginMissingFields(t *testing.T) {
	svc := NewService("secret", nil)
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "", Password: ""}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoginMissingUser(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, email, username, password_hash, full_name, avatar_url, created_at, updated_at`).
		WithArgs("missing@example.com").
		WillReturnError(pgErr)

	svc := NewService("secret", mock)
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "missing@example.com", Password: "password1"}); err == nil {
		t.Fatalf("expected unauthorized")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, email, username, password_hash, full_name, avatar_url, created_at, updated_at`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "password_hash", "full_name", "avatar_url", "created_at", "updated_at"}).
			AddRow("user-1", "user@example.com", "user", string(hash), "", "", now, now))

	svc := NewService("secret", mock)
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "wrong"}); err == nil {
		t.Fatalf("expected unauthorized")
	}
}

func TestLoginSignTokenFailure(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, email, username, password_hash, full_name, avatar_url, created_at, updated_at`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "password_hash", "full_name", "avatar_url", "created_at", "updated_at"}).
			AddRow("user-1", "user@example.com", "user", string(hash), "", "", now, now))

	old := signTokenFn
	defer func() { signTokenFn = old }()
	signTokenFn = func(*Service, string, time.Duration) (string, error) { return "", pgErr }

	svc := NewService("secret", mock)
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "password1"}); err == nil {
		t.Fatalf("expected internal error")
	}
}

func TestValidateAccessToken(t *testing.T) {
	svc := NewService("secret", nil)
	token, err := svc.signToken("user-1", accessTokenTTL)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	userID, err := svc.ValidateAccessToken(token)
	if err != nil || userID != "user-1" {
		t.Fatalf("validate: %v %q", err, userID)
	}
}

func TestValidateAccessTokenInvalid(t *testing.T) {
	svc := NewService("secret", nil)
	if _, err := svc.ValidateAccessToken("garbage"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseTokenInvalid(t *testing.T) {
	old := parseWithClaimsFn
	defer func() { parseWithClaimsFn = old }()
	parseWithClaimsFn = func(_ string, _ jwt.Claims, _ jwt.Keyfunc, _ ...jwt.ParserOption) (*jwt.Token, error) {
		return &jwt.Token{Valid: false, Claims: &Claims{}}, nil
	}

	svc := NewService("secret", nil)
	if _, err := svc.parseToken("token"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseTokenParseFailure(t *testing.T) {
	old := parseWithClaimsFn
	defer func() { parseWithClaimsFn = old }()
	parseWithClaimsFn = func(string, jwt.Claims, jwt.Keyfunc, ...jwt.ParserOption) (*jwt.Token, error) {
		return nil, pgErr
	}

	svc := NewService("secret", nil)
	if _, err := svc.parseToken("token"); err == nil {
		t.Fatalf("expected error")
	}
}

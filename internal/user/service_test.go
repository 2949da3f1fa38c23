package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

var dbErr = errors.New("db error")

func TestByIDSuccess(t *testing.T) {
	mock, _ := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, email, username, full_name, avatar_url, created_at FROM users WHERE id`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "full_name", "avatar_url", "created_at"}).
			AddRow("user-1", "a@b.com", "alice", "Alice", "", now))

	svc := NewService(mock)
	u, err := svc.ByID(context.Background(), "user-1")
	if err != nil || u.Username != "alice" {
		t.Fatalf("unexpected: %v %+v", err, u)
	}
}

func TestByIDNotFound(t *testing.T) {
	mock, _ := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, email, username, full_name, avatar_url, created_at FROM users WHERE id`).
		WithArgs("missing").
		WillReturnError(dbErr)

	svc := NewService(mock)
	if _, err := svc.ByID(context.Background(), "missing"); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Search(context.Background(), ""); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSearchResults(t *testing.T) {
	mock, _ := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, email, username, full_name, avatar_url, created_at`).
		WithArgs("%ali%").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "full_name", "avatar_url", "created_at"}).
			AddRow("user-1", "a@b.com", "alice", "Alice", "", now))

	svc := NewService(mock)
	users, err := svc.Search(context.Background(), "ali")
	if err != nil || len(users) != 1 {
		t.Fatalf("unexpected: %v %+v", err, users)
	}
}

func TestByUsernameNotFound(t *testing.T) {
	mock, _ := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, email, username, full_name, avatar_url, created_at FROM users WHERE username`).
		WithArgs("ghost").
		WillReturnError(dbErr)

	svc := NewService(mock)
	if _, err := svc.ByUsername(context.Background(), "ghost"); err == nil {
		t.Fatalf("expected not found")
	}
}

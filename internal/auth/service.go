package auth

import (
	"context"
	"errors"
	"time"

	"tripledger/internal/apperr"
	"tripledger/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 24 * time.Hour

// Service owns credential verification and token issuance. It takes a
// db.Querier rather than a concrete pool so pgxmock can stand in for
// tests.
type Service struct {
	secret string
	db     db.Querier
}

func NewService(secret string, querier db.Querier) *Service {
	return &Service{secret: secret, db: querier}
}

var hashPasswordFn = bcrypt.GenerateFromPassword
var compareHashFn = bcrypt.CompareHashAndPassword
var signTokenFn = func(s *Service, userID string, ttl time.Duration) (string, error) {
	return s.signToken(userID, ttl)
}
var parseWithClaimsFn = jwt.ParseWithClaims

// Register creates a new user and returns its public projection. It
// never issues a token; the caller logs in separately.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (PublicUser, error) {
	if req.Email == "" || req.Username == "" || len(req.Password) < 6 {
		return PublicUser{}, apperr.Validation("email, username and a password of at least 6 characters are required")
	}

	hash, err := hashPasswordFn([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return PublicUser{}, apperr.Internal(err)
	}

	id := uuid.NewString()
	var createdAt, updatedAt time.Time
	row := s.db.QueryRow(ctx,
		`INSERT INTO users (id, email, username, password_hash, full_name, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		id, req.Email, req.Username, string(hash), req.FullName, "")
	if err := row.Scan(&createdAt, &updatedAt); err != nil {
		return PublicUser{}, apperr.Conflict("email or username already registered")
	}

	user := User{
		ID: id, Email: req.Email, Username: req.Username,
		PasswordHash: string(hash), FullName: req.FullName,
		CreatedAt: createdAt, UpdatedAt: updatedAt,
	}
	return user.Public(), nil
}

// Login verifies credentials and issues a single bearer token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return LoginResponse{}, apperr.Validation("email and password are required")
	}

	var u User
	row := s.db.QueryRow(ctx,
		`SELECT id, email, username, password_hash, full_name, avatar_url, created_at, updated_at
		 FROM users WHERE email = $1`, req.Email)
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FullName, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return LoginResponse{}, apperr.Authorization("invalid email or password")
	}

	if err := compareHashFn([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResponse{}, apperr.Authorization("invalid email or password")
	}

	token, err := signTokenFn(s, u.ID, accessTokenTTL)
	if err != nil {
		return LoginResponse{}, apperr.Internal(err)
	}

	return LoginResponse{Token: token, User: u.Public()}, nil
}

func (s *Service) signToken(userID string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// parseToken validates a bearer token and returns its claims.
func (s *Service) parseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := parseWithClaimsFn(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ValidateAccessToken is the entry point used by middleware: it
// returns the authenticated user id or an error.
func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

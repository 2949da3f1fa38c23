package user

import (
	"context"

	"tripledger/internal/apperr"
	"tripledger/internal/db"
)

// Service resolves user projections for search and self-lookup. It
// reads the same `users` table internal/auth writes to, kept in a
// separate package because nothing about user lookup needs auth's
// credential machinery.
type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

// ByID returns the caller's own projection for GET /users/me.
func (s *Service) ByID(ctx context.Context, id string) (PublicUser, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, email, username, full_name, avatar_url, created_at FROM users WHERE id = $1`, id)
	var u PublicUser
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.AvatarURL, &u.CreatedAt); err != nil {
		return PublicUser{}, apperr.NotFound("user not found")
	}
	return u, nil
}

// Search finds users by a case-insensitive prefix/substring match on
// username or email, capped at 20 results.
func (s *Service) Search(ctx context.Context, query string) ([]PublicUser, error) {
	if query == "" {
		return nil, apperr.Validation("q is required")
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, email, username, full_name, avatar_url, created_at
		 FROM users WHERE username ILIKE $1 OR email ILIKE $1
		 ORDER BY username LIMIT 20`, "%"+query+"%")
	if err != nil {
		return nil, apperr.Transient(err)
	}
	defer rows.Close()

	users := make([]PublicUser, 0, 8)
	for rows.Next() {
		var u PublicUser
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.AvatarURL, &u.CreatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		users = append(users, u)
	}
	return users, nil
}

// ByUsername resolves a username to a user id, used by the trip-member,
// payment and friend handlers accepting a username instead of a raw id.
func (s *Service) ByUsername(ctx context.Context, username string) (PublicUser, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, email, username, full_name, avatar_url, created_at FROM users WHERE username = $1`, username)
	var u PublicUser
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.AvatarURL, &u.CreatedAt); err != nil {
		return PublicUser{}, apperr.NotFound("user %q not found", username)
	}
	return u, nil
}

package friend

import (
	"context"
	"time"

	"tripledger/internal/apperr"
	"tripledger/internal/db"

	"github.com/google/uuid"
)

var nowFn = time.Now

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

func (s *Service) areFriends(ctx context.Context, a, b string) bool {
	row := s.db.QueryRow(ctx, `SELECT 1 FROM friends WHERE user_id = $1 AND friend_id = $2`, a, b)
	var one int
	return row.Scan(&one) == nil
}

// CreateInvite sends a directed friend request, rejecting self-adds,
// an existing friendship, or a non-terminal invite already pending in
// either direction.
func (s *Service) CreateInvite(ctx context.Context, senderID, receiverID string) (Invite, error) {
	if senderID == receiverID {
		return Invite{}, apperr.Validation("cannot friend yourself")
	}
	if s.areFriends(ctx, senderID, receiverID) {
		return Invite{}, apperr.Conflict("already friends")
	}

	row := s.db.QueryRow(ctx, `
		SELECT 1 FROM friend_invites
		WHERE status = $1 AND ((sender_id = $2 AND receiver_id = $3) OR (sender_id = $3 AND receiver_id = $2))`,
		InviteStatusPending, senderID, receiverID)
	var one int
	if row.Scan(&one) == nil {
		return Invite{}, apperr.Conflict("a pending invite already exists between these users")
	}

	inv := Invite{ID: uuid.NewString(), SenderID: senderID, ReceiverID: receiverID, Status: InviteStatusPending}
	r := s.db.QueryRow(ctx, `
		INSERT INTO friend_invites (id, sender_id, receiver_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING created_at, updated_at`,
		inv.ID, inv.SenderID, inv.ReceiverID, inv.Status, nowFn())
	if err := r.Scan(&inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return Invite{}, apperr.Conflict("a pending invite already exists between these users")
	}
	return inv, nil
}

// AcceptInvite transitions a pending invite to accepted and writes
// both symmetric friendship rows in one transaction.
func (s *Service) AcceptInvite(ctx context.Context, inviteID, callerID string) (Invite, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Invite{}, apperr.Transient(err)
	}
	defer tx.Rollback(ctx)

	var inv Invite
	row := tx.QueryRow(ctx, `
		UPDATE friend_invites SET status = $1, updated_at = $2
		WHERE id = $3 AND receiver_id = $4 AND status = $5
		RETURNING id, sender_id, receiver_id, status, created_at, updated_at`,
		InviteStatusAccepted, nowFn(), inviteID, callerID, InviteStatusPending)
	if err := row.Scan(&inv.ID, &inv.SenderID, &inv.ReceiverID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return Invite{}, apperr.Conflict("invite is not pending or caller is not the receiver")
	}

	now := nowFn()
	if _, err := tx.Exec(ctx, `INSERT INTO friends (user_id, friend_id, created_at) VALUES ($1, $2, $3)`,
		inv.SenderID, inv.ReceiverID, now); err != nil {
		return Invite{}, apperr.Internal(err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO friends (user_id, friend_id, created_at) VALUES ($1, $2, $3)`,
		inv.ReceiverID, inv.SenderID, now); err != nil {
		return Invite{}, apperr.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Invite{}, apperr.Transient(err)
	}
	return inv, nil
}

// DeclineInvite transitions a pending invite to declined; only the
// receiver may call this.
func (s *Service) DeclineInvite(ctx context.Context, inviteID, callerID string) (Invite, error) {
	var inv Invite
	row := s.db.QueryRow(ctx, `
		UPDATE friend_invites SET status = $1, updated_at = $2
		WHERE id = $3 AND receiver_id = $4 AND status = $5
		RETURNING id, sender_id, receiver_id, status, created_at, updated_at`,
		InviteStatusDeclined, nowFn(), inviteID, callerID, InviteStatusPending)
	if err := row.Scan(&inv.ID, &inv.SenderID, &inv.ReceiverID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return Invite{}, apperr.Conflict("invite is not pending or caller is not the receiver")
	}
	return inv, nil
}

// InvitesForUser returns the pending invites where userID is the
// receiver.
func (s *Service) InvitesForUser(ctx context.Context, userID string) ([]Invite, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, sender_id, receiver_id, status, created_at, updated_at
		FROM friend_invites WHERE receiver_id = $1 AND status = $2`, userID, InviteStatusPending)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var invites []Invite
	for rows.Next() {
		var inv Invite
		if err := rows.Scan(&inv.ID, &inv.SenderID, &inv.ReceiverID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		invites = append(invites, inv)
	}
	return invites, nil
}

// ListForUser returns every friend of userID.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Friend, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id, friend_id, created_at FROM friends WHERE user_id = $1`, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var friends []Friend
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.UserID, &f.FriendID, &f.CreatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		friends = append(friends, f)
	}
	return friends, nil
}

// Remove deletes both symmetric rows of a friendship in one
// transaction.
func (s *Service) Remove(ctx context.Context, userID, friendID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperr.Transient(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM friends WHERE user_id = $1 AND friend_id = $2`, userID, friendID); err != nil {
		return apperr.Internal(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM friends WHERE user_id = $1 AND friend_id = $2`, friendID, userID); err != nil {
		return apperr.Internal(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Transient(err)
	}
	return nil
}

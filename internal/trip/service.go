package trip

import (
	"context"

	"tripledger/internal/apperr"
	"tripledger/internal/db"

	"github.com/google/uuid"
)

// Service owns trip CRUD, membership and the invite state machine.
type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

// CreateTrip persists a new trip and inserts its creator as the sole
// owner in one transaction, per the invariant that every trip has at
// least one member at creation.
func (s *Service) CreateTrip(ctx context.Context, creatorID string, t Trip) (Trip, error) {
	if len(t.Name) < 2 {
		return Trip{}, apperr.Validation("name must be at least 2 characters")
	}
	if t.Status == "" {
		t.Status = StatusPlanning
	}
	if !validStatus(t.Status) {
		return Trip{}, apperr.Validation("invalid status %q", t.Status)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Trip{}, apperr.Transient(err)
	}
	defer tx.Rollback(ctx)

	t.ID = uuid.NewString()
	t.CreatedBy = creatorID
	row := tx.QueryRow(ctx,
		`INSERT INTO trips (id, name, status, start_date, end_date, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		t.ID, t.Name, t.Status, t.StartDate, t.EndDate, creatorID)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return Trip{}, apperr.Internal(err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO trip_members (trip_id, user_id, role) VALUES ($1, $2, $3)`,
		t.ID, creatorID, RoleOwner); err != nil {
		return Trip{}, apperr.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Trip{}, apperr.Transient(err)
	}
	return t, nil
}

// UpdateTrip applies a partial patch; only non-empty/non-nil fields in
// patch are changed.
func (s *Service) UpdateTrip(ctx context.Context, id string, patch Trip) (Trip, error) {
	current, err := s.GetTrip(ctx, id)
	if err != nil {
		return Trip{}, err
	}

	if patch.Name != "" {
		if len(patch.Name) < 2 {
			return Trip{}, apperr.Validation("name must be at least 2 characters")
		}
		current.Name = patch.Name
	}
	if patch.Status != "" {
		if !validStatus(patch.Status) {
			return Trip{}, apperr.Validation("invalid status %q", patch.Status)
		}
		current.Status = patch.Status
	}
	if patch.StartDate != nil {
		current.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		current.EndDate = patch.EndDate
	}

	_, err = s.db.Exec(ctx,
		`UPDATE trips SET name = $2, status = $3, start_date = $4, end_date = $5 WHERE id = $1`,
		current.ID, current.Name, current.Status, current.StartDate, current.EndDate)
	if err != nil {
		return Trip{}, apperr.Transient(err)
	}
	return current, nil
}

func (s *Service) GetTrip(ctx context.Context, id string) (Trip, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, name, status, start_date, end_date, created_by, created_at FROM trips WHERE id = $1`, id)
	var t Trip
	if err := row.Scan(&t.ID, &t.Name, &t.Status, &t.StartDate, &t.EndDate, &t.CreatedBy, &t.CreatedAt); err != nil {
		return Trip{}, apperr.NotFound("trip not found")
	}
	return t, nil
}

// ListForUser returns every trip the given user belongs to, most
// recently created first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Trip, error) {
	rows, err := s.db.Query(ctx,
		`SELECT t.id, t.name, t.status, t.start_date, t.end_date, t.created_by, t.created_at
		 FROM trips t JOIN trip_members m ON m.trip_id = t.id
		 WHERE m.user_id = $1 ORDER BY t.created_at DESC`, userID)
	if err != nil {
		return nil, apperr.Transient(err)
	}
	defer rows.Close()

	trips := make([]Trip, 0, 8)
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.Name, &t.Status, &t.StartDate, &t.EndDate, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		trips = append(trips, t)
	}
	return trips, nil
}

func (s *Service) Members(ctx context.Context, tripID string) ([]TripMember, error) {
	rows, err := s.db.Query(ctx,
		`SELECT trip_id, user_id, role, joined_at FROM trip_members WHERE trip_id = $1 ORDER BY joined_at`, tripID)
	if err != nil {
		return nil, apperr.Transient(err)
	}
	defer rows.Close()

	members := make([]TripMember, 0, 8)
	for rows.Next() {
		var m TripMember
		if err := rows.Scan(&m.TripID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		members = append(members, m)
	}
	return members, nil
}

// RemoveMember removes userID from tripID. A trip's sole owner cannot
// be removed — ownership transfer is not modeled, so the only way to
// leave that position is for the trip itself to be retired.
func (s *Service) RemoveMember(ctx context.Context, tripID, userID string) error {
	members, err := s.Members(ctx, tripID)
	if err != nil {
		return err
	}

	var target *TripMember
	owners := 0
	for i := range members {
		if members[i].Role == RoleOwner {
			owners++
		}
		if members[i].UserID == userID {
			target = &members[i]
		}
	}
	if target == nil {
		return apperr.NotFound("user is not a member of this trip")
	}
	if target.Role == RoleOwner && owners == 1 {
		return apperr.Conflict("cannot remove the trip's sole owner")
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM trip_members WHERE trip_id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		return apperr.Transient(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user is not a member of this trip")
	}
	return nil
}

// IsMember reports whether userID currently belongs to tripID.
func (s *Service) IsMember(ctx context.Context, tripID, userID string) (bool, error) {
	row := s.db.QueryRow(ctx, `SELECT 1 FROM trip_members WHERE trip_id = $1 AND user_id = $2`, tripID, userID)
	var one int
	if err := row.Scan(&one); err != nil {
		return false, nil
	}
	return true, nil
}

// CreateInvite offers trip membership to inviteeID. The caller must
// already be a member; the invitee must not be.
func (s *Service) CreateInvite(ctx context.Context, tripID, inviterID, inviteeID string) (TripInvite, error) {
	isMember, err := s.IsMember(ctx, tripID, inviterID)
	if err != nil {
		return TripInvite{}, apperr.Internal(err)
	}
	if !isMember {
		return TripInvite{}, apperr.Authorization("caller is not a member of this trip")
	}
	if already, _ := s.IsMember(ctx, tripID, inviteeID); already {
		return TripInvite{}, apperr.Conflict("user is already a member")
	}

	inv := TripInvite{
		ID:        uuid.NewString(),
		TripID:    tripID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    InviteStatusPending,
	}
	row := s.db.QueryRow(ctx,
		`INSERT INTO trip_invites (id, trip_id, inviter_id, invitee_id, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`,
		inv.ID, inv.TripID, inv.InviterID, inv.InviteeID, inv.Status)
	if err := row.Scan(&inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return TripInvite{}, apperr.Conflict("an active invite for this user already exists")
	}
	return inv, nil
}

// InvitesForUser returns the pending (and past) invites addressed to
// userID.
func (s *Service) InvitesForUser(ctx context.Context, userID string) ([]TripInvite, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, trip_id, inviter_id, invitee_id, status, created_at, updated_at
		 FROM trip_invites WHERE invitee_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, apperr.Transient(err)
	}
	defer rows.Close()

	invites := make([]TripInvite, 0, 8)
	for rows.Next() {
		var inv TripInvite
		if err := rows.Scan(&inv.ID, &inv.TripID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		invites = append(invites, inv)
	}
	return invites, nil
}

// AcceptInvite transitions a pending invite to accepted and inserts
// the membership row in one transaction.
func (s *Service) AcceptInvite(ctx context.Context, inviteID, callerID string) (TripInvite, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return TripInvite{}, apperr.Transient(err)
	}
	defer tx.Rollback(ctx)

	var inv TripInvite
	row := tx.QueryRow(ctx,
		`UPDATE trip_invites SET status = $1, updated_at = now()
		 WHERE id = $2 AND invitee_id = $3 AND status = $4
		 RETURNING id, trip_id, inviter_id, invitee_id, status, created_at, updated_at`,
		InviteStatusAccepted, inviteID, callerID, InviteStatusPending)
	if err := row.Scan(&inv.ID, &inv.TripID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return TripInvite{}, apperr.Conflict("invite is no longer pending")
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO trip_members (trip_id, user_id, role) VALUES ($1, $2, $3)`,
		inv.TripID, inv.InviteeID, RoleMember); err != nil {
		return TripInvite{}, apperr.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return TripInvite{}, apperr.Transient(err)
	}
	return inv, nil
}

// DeclineInvite transitions a pending invite to declined.
func (s *Service) DeclineInvite(ctx context.Context, inviteID, callerID string) (TripInvite, error) {
	var inv TripInvite
	row := s.db.QueryRow(ctx,
		`UPDATE trip_invites SET status = $1, updated_at = now()
		 WHERE id = $2 AND invitee_id = $3 AND status = $4
		 RETURNING id, trip_id, inviter_id, invitee_id, status, created_at, updated_at`,
		InviteStatusDeclined, inviteID, callerID, InviteStatusPending)
	if err := row.Scan(&inv.ID, &inv.TripID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return TripInvite{}, apperr.Conflict("invite is no longer pending")
	}
	return inv, nil
}

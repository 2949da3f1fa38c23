package payment

import (
	"context"
	"time"

	"tripledger/internal/apperr"
	"tripledger/internal/db"
	"tripledger/internal/money"

	"github.com/google/uuid"
)

var nowFn = time.Now

type Service struct {
	db db.Querier
}

func NewService(querier db.Querier) *Service {
	return &Service{db: querier}
}

func (s *Service) isMember(ctx context.Context, tripID, userID string) bool {
	row := s.db.QueryRow(ctx, `SELECT 1 FROM trip_members WHERE trip_id = $1 AND user_id = $2`, tripID, userID)
	var one int
	return row.Scan(&one) == nil
}

// Create records a new pending payment from the caller to a resolved
// counterparty, rejecting self-pay and non-member parties.
func (s *Service) Create(ctx context.Context, tripID, fromUserID string, req CreateRequest) (Payment, error) {
	toUserID := req.ToUserID
	if toUserID == "" {
		return Payment{}, apperr.Validation("toUserId is required")
	}
	if toUserID == fromUserID {
		return Payment{}, apperr.Validation("cannot pay yourself")
	}
	if req.Amount <= 0 {
		return Payment{}, apperr.Validation("amount must be positive")
	}
	if !s.isMember(ctx, tripID, fromUserID) || !s.isMember(ctx, tripID, toUserID) {
		return Payment{}, apperr.Authorization("both parties must be trip members")
	}

	p := Payment{
		ID:         uuid.NewString(),
		TripID:     tripID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Amount:     int64(money.ToCents(req.Amount)),
		Method:     req.Method,
		Status:     StatusPending,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO payments (id, trip_id, from_user_id, to_user_id, amount, method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING created_at, updated_at`,
		p.ID, p.TripID, p.FromUserID, p.ToUserID, p.Amount, p.Method, p.Status, nowFn())
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return Payment{}, apperr.Internal(err)
	}
	return p, nil
}

// Confirm transitions a pending payment to confirmed; only toUser may
// call this.
func (s *Service) Confirm(ctx context.Context, id, callerID string) (Payment, error) {
	return s.transition(ctx, id, callerID, "to_user_id", StatusConfirmed, "")
}

// Decline transitions a pending payment to declined; only toUser may
// call this, with an optional ≤200 char note.
func (s *Service) Decline(ctx context.Context, id, callerID string, note string) (Payment, error) {
	if len(note) > 200 {
		return Payment{}, apperr.Validation("declineNote must be at most 200 characters")
	}
	return s.transition(ctx, id, callerID, "to_user_id", StatusDeclined, note)
}

func (s *Service) transition(ctx context.Context, id, callerID, counterpartyCol, newStatus, note string) (Payment, error) {
	var p Payment
	row := s.db.QueryRow(ctx, `
		UPDATE payments
		SET status = $1, decline_note = $2, updated_at = $3
		WHERE id = $4 AND `+counterpartyCol+` = $5 AND status = $6
		RETURNING id, trip_id, from_user_id, to_user_id, amount, method, status, decline_note, created_at, updated_at`,
		newStatus, note, nowFn(), id, callerID, StatusPending)
	if err := row.Scan(&p.ID, &p.TripID, &p.FromUserID, &p.ToUserID, &p.Amount, &p.Method, &p.Status, &p.DeclineNote, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Payment{}, apperr.Conflict("payment is not pending or caller is not the counterparty")
	}
	return p, nil
}

// Delete removes a payment; only fromUser may call this, and only
// while the payment is pending.
func (s *Service) Delete(ctx context.Context, id, callerID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM payments WHERE id = $1 AND from_user_id = $2 AND status = $3`,
		id, callerID, StatusPending)
	if err != nil {
		return apperr.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("payment is not pending or caller is not the payer")
	}
	return nil
}

// ListForTrip returns every payment on a trip, newest first.
func (s *Service) ListForTrip(ctx context.Context, tripID string) ([]Payment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, from_user_id, to_user_id, amount, method, status, decline_note, created_at, updated_at
		FROM payments WHERE trip_id = $1 ORDER BY created_at DESC`, tripID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.TripID, &p.FromUserID, &p.ToUserID, &p.Amount, &p.Method, &p.Status, &p.DeclineNote, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// ListPendingForReceiver returns every pending payment across every
// trip where userID is the receiver, newest first.
func (s *Service) ListPendingForReceiver(ctx context.Context, userID string) ([]Payment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, from_user_id, to_user_id, amount, method, status, decline_note, created_at, updated_at
		FROM payments WHERE to_user_id = $1 AND status = $2 ORDER BY created_at DESC`, userID, StatusPending)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.TripID, &p.FromUserID, &p.ToUserID, &p.Amount, &p.Method, &p.Status, &p.DeclineNote, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// ConfirmedForTrip returns only confirmed payments, the subset the
// balance calculator folds in.
func (s *Service) ConfirmedForTrip(ctx context.Context, tripID string) ([]Payment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, from_user_id, to_user_id, amount, method, status, decline_note, created_at, updated_at
		FROM payments WHERE trip_id = $1 AND status = $2`, tripID, StatusConfirmed)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.TripID, &p.FromUserID, &p.ToUserID, &p.Amount, &p.Method, &p.Status, &p.DeclineNote, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

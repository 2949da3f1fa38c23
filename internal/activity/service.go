package activity

import (
	"context"
	"sort"

	"tripledger/internal/apperr"
	"tripledger/internal/db"
)

type Service struct {
	db    db.Querier
	limit int
}

// NewService builds an activity feed reader capped at limit events per
// call; limit <= 0 falls back to 30.
func NewService(querier db.Querier, limit int) *Service {
	if limit <= 0 {
		limit = 30
	}
	return &Service{db: querier, limit: limit}
}

// ForUser returns the caller's merged activity feed across every trip
// they belong to, newest first, capped at the configured limit.
func (s *Service) ForUser(ctx context.Context, userID string) ([]Event, error) {
	expenses, err := s.expenseEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentEvents(ctx, userID)
	if err != nil {
		return nil, err
	}

	events := append(expenses, payments...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})

	if len(events) > s.limit {
		events = events[:s.limit]
	}
	return events, nil
}

func (s *Service) expenseEvents(ctx context.Context, userID string) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT e.id, e.trip_id, e.title, e.paid_by_id, e.total, e.created_at
		FROM expenses e
		JOIN trip_members m ON m.trip_id = e.trip_id
		WHERE m.user_id = $1
		ORDER BY e.created_at DESC
		LIMIT $2`, userID, s.limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		e.Type = EventExpense
		if err := rows.Scan(&e.ID, &e.TripID, &e.Title, &e.PaidByID, &e.Amount, &e.CreatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		events = append(events, e)
	}
	return events, nil
}

func (s *Service) paymentEvents(ctx context.Context, userID string) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.trip_id, p.from_user_id, p.to_user_id, p.amount, p.method, p.status, p.created_at
		FROM payments p
		JOIN trip_members m ON m.trip_id = p.trip_id
		WHERE m.user_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2`, userID, s.limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		e.Type = EventPayment
		if err := rows.Scan(&e.ID, &e.TripID, &e.FromUserID, &e.ToUserID, &e.Amount, &e.Method, &e.Status, &e.CreatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		events = append(events, e)
	}
	return events, nil
}

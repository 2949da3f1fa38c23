package export

import (
	"context"
	"time"

	"tripledger/internal/balance"
	"tripledger/internal/db"
	"tripledger/internal/expense"
	"tripledger/internal/payment"
	"tripledger/internal/settlement"
	"tripledger/internal/trip"
	"tripledger/internal/user"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Service composes the trip, expense, payment, balance and user
// services into a single workbook builder. The only thing it persists
// is a short audit row per generated export, via db.
type Service struct {
	trips    *trip.Service
	expenses *expense.Service
	payments *payment.Service
	balances *balance.Service
	users    *user.Service
	db       db.Querier
}

func NewService(trips *trip.Service, expenses *expense.Service, payments *payment.Service, balances *balance.Service, users *user.Service, q db.Querier) *Service {
	return &Service{trips: trips, expenses: expenses, payments: payments, balances: balances, users: users, db: q}
}

// TripWorkbook assembles the export for one trip: the full expense and
// payment history, the current balance view and a settlement plan.
// generatedBy is recorded on the export's audit descriptor.
func (s *Service) TripWorkbook(ctx context.Context, tripID, generatedBy string) (*excelize.File, error) {
	t, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	members, err := s.trips.Members(ctx, tripID)
	if err != nil {
		return nil, err
	}
	order := make([]string, len(members))
	names := make(map[string]string, len(members))
	for i, m := range members {
		order[i] = m.UserID
		if u, err := s.users.ByID(ctx, m.UserID); err == nil {
			names[m.UserID] = u.Username
		}
	}

	expenses, err := s.expenses.ListWithSplitsForTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListForTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	balances, err := s.balances.ForTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	transfers := settlement.Plan(balances, order)

	wb, err := BuildWorkbook(t, expenses, payments, balances, transfers, names)
	if err != nil {
		return nil, err
	}
	s.recordDescriptor(ctx, tripID, generatedBy, wb)
	return wb, nil
}

// recordDescriptor writes a short audit row for this export: id,
// who generated it, when, and how many bytes it came out to. The row
// is informational only, so an insert failure never blocks the
// download that's already in the caller's hands.
func (s *Service) recordDescriptor(ctx context.Context, tripID, generatedBy string, wb *excelize.File) {
	buf, err := wb.WriteToBuffer()
	if err != nil {
		return
	}
	_, _ = s.db.Exec(ctx, `
		INSERT INTO export_descriptors (id, trip_id, generated_by, byte_size, generated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), tripID, generatedBy, buf.Len(), time.Now())
}

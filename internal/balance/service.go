package balance

import (
	"context"
	"encoding/json"
	"time"

	"tripledger/internal/expense"
	"tripledger/internal/money"
	"tripledger/internal/payment"
	"tripledger/internal/trip"

	"github.com/redis/go-redis/v9"
)

// Service composes the trip, expense and payment services into a
// per-trip balance view, with a short-TTL redis cache in front since
// balances are read far more often than the ledger changes.
type Service struct {
	trips    *trip.Service
	expenses *expense.Service
	payments *payment.Service
	cache    *redis.Client
	ttl      time.Duration
}

func NewService(trips *trip.Service, expenses *expense.Service, payments *payment.Service, cache *redis.Client, ttl time.Duration) *Service {
	return &Service{trips: trips, expenses: expenses, payments: payments, cache: cache, ttl: ttl}
}

func cacheKey(tripID string) string {
	return "balance:" + tripID
}

// ForTrip returns the per-member balance map for a trip, serving from
// cache when available.
func (s *Service) ForTrip(ctx context.Context, tripID string) (map[string]money.Cents, error) {
	if s.cache != nil {
		if cached, ok := s.readCache(ctx, tripID); ok {
			return cached, nil
		}
	}

	members, err := s.trips.Members(ctx, tripID)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
	}

	expenses, err := s.expenses.ListWithSplitsForTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	lines := make([]ExpenseLine, 0, len(expenses))
	for _, e := range expenses {
		splits := make(map[string]money.Cents, len(e.Splits))
		for _, sp := range e.Splits {
			splits[sp.UserID] = money.Cents(sp.Share)
		}
		lines = append(lines, ExpenseLine{PaidByID: e.PaidByID, Total: money.Cents(e.Total), Splits: splits})
	}

	confirmed, err := s.payments.ConfirmedForTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	paymentLines := make([]PaymentLine, len(confirmed))
	for i, p := range confirmed {
		paymentLines[i] = PaymentLine{FromUserID: p.FromUserID, ToUserID: p.ToUserID, Amount: money.Cents(p.Amount)}
	}

	balances := Compute(memberIDs, lines, paymentLines)

	if s.cache != nil {
		s.writeCache(ctx, tripID, balances)
	}

	return balances, nil
}

func (s *Service) readCache(ctx context.Context, tripID string) (map[string]money.Cents, bool) {
	raw, err := s.cache.Get(ctx, cacheKey(tripID)).Bytes()
	if err != nil {
		return nil, false
	}
	var plain map[string]int64
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, false
	}
	out := make(map[string]money.Cents, len(plain))
	for k, v := range plain {
		out[k] = money.Cents(v)
	}
	return out, true
}

func (s *Service) writeCache(ctx context.Context, tripID string, balances map[string]money.Cents) {
	plain := make(map[string]int64, len(balances))
	for k, v := range balances {
		plain[k] = int64(v)
	}
	raw, err := json.Marshal(plain)
	if err != nil {
		return
	}
	s.cache.Set(ctx, cacheKey(tripID), raw, s.ttl)
}

// Invalidate drops the cached balance for a trip; callers mutate the
// ledger (create expense, confirm/decline payment) and then call this
// so the next read recomputes.
func (s *Service) Invalidate(ctx context.Context, tripID string) {
	if s.cache == nil {
		return
	}
	s.cache.Del(ctx, cacheKey(tripID))
}

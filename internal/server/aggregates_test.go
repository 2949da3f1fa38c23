package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tripledger/internal/balance"
	"tripledger/internal/expense"
	"tripledger/internal/payment"
	"tripledger/internal/trip"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	return mock
}

func TestPaginateTripsOffsetBeyondLength(t *testing.T) {
	trips := []trip.Trip{{ID: "a"}, {ID: "b"}}
	if got := paginateTrips(trips, 5, 0); len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
}

func TestPaginateTripsLimitTruncates(t *testing.T) {
	trips := []trip.Trip{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := paginateTrips(trips, 1, 1)
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestTripBalancesComposesSettlementAndTotals(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT trip_id, user_id, role, joined_at FROM trip_members`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"trip_id", "user_id", "role", "joined_at"}).
			AddRow("trip-1", "u1", "owner", now).
			AddRow("trip-1", "u2", "member", now))

	members2 := pgxmock.NewRows([]string{"trip_id", "user_id", "role", "joined_at"}).
		AddRow("trip-1", "u1", "owner", now).
		AddRow("trip-1", "u2", "member", now)
	mock.ExpectQuery(`SELECT trip_id, user_id, role, joined_at FROM trip_members`).
		WithArgs("trip-1").WillReturnRows(members2)

	expenseRows := pgxmock.NewRows([]string{"id", "trip_id", "paid_by_id", "title", "amount", "subtotal", "tax", "tip", "total", "created_at"}).
		AddRow("exp-1", "trip-1", "u1", "Groceries", int64(1000), int64(1000), int64(0), int64(0), int64(1000), now)
	mock.ExpectQuery(`SELECT id, trip_id, paid_by_id, title, amount, subtotal, tax, tip, total, created_at`).
		WithArgs("trip-1").WillReturnRows(expenseRows)
	mock.ExpectQuery(`SELECT s.expense_id, s.user_id, s.share`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"expense_id", "user_id", "share"}).
			AddRow("exp-1", "u1", int64(500)).
			AddRow("exp-1", "u2", int64(500)))
	mock.ExpectQuery(`SELECT id, trip_id, from_user_id, to_user_id, amount, method, status, decline_note, created_at, updated_at\s+FROM payments WHERE trip_id = \$1 AND status`).
		WithArgs("trip-1", payment.StatusConfirmed).
		WillReturnRows(pgxmock.NewRows([]string{"id", "trip_id", "from_user_id", "to_user_id", "amount", "method", "status", "decline_note", "created_at", "updated_at"}).
			AddRow("pay-1", "trip-1", "u2", "u1", int64(500), "", payment.StatusConfirmed, "", now, now))
	mock.ExpectQuery(`SELECT id, trip_id, from_user_id, to_user_id, amount, method, status, decline_note, created_at, updated_at\s+FROM payments WHERE trip_id = \$1 AND status`).
		WithArgs("trip-1", payment.StatusConfirmed).
		WillReturnRows(pgxmock.NewRows([]string{"id", "trip_id", "from_user_id", "to_user_id", "amount", "method", "status", "decline_note", "created_at", "updated_at"}).
			AddRow("pay-1", "trip-1", "u2", "u1", int64(500), "", payment.StatusConfirmed, "", now, now))

	trips := trip.NewService(mock)
	expenses := expense.NewService(mock)
	payments := payment.NewService(mock)
	balances := balance.NewService(trips, expenses, payments, nil, time.Second)

	agg := &aggregates{trips: trips, expenses: expenses, payments: payments, balances: balances}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "u1")
		return c.Next()
	})
	app.Get("/trips/:id/balances", agg.tripBalances)

	req := httptest.NewRequest(http.MethodGet, "/trips/trip-1/balances", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected: %v %v", err, resp.StatusCode)
	}
}

func TestListTripsAggregatesTotals(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT t.id, t.name, t.status, t.start_date, t.end_date, t.created_by, t.created_at\s+FROM trips`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "status", "start_date", "end_date", "created_by", "created_at"}).
			AddRow("trip-1", "Lake House", "active", nil, nil, "u1", now))

	expenseRows := pgxmock.NewRows([]string{"id", "trip_id", "paid_by_id", "title", "amount", "subtotal", "tax", "tip", "total", "created_at"}).
		AddRow("exp-1", "trip-1", "u1", "Groceries", int64(1000), int64(1000), int64(0), int64(0), int64(1000), now)
	mock.ExpectQuery(`SELECT id, trip_id, paid_by_id, title, amount, subtotal, tax, tip, total, created_at\s+FROM expenses WHERE trip_id = \$1 ORDER`).
		WithArgs("trip-1").WillReturnRows(expenseRows)

	mock.ExpectQuery(`SELECT trip_id, user_id, role, joined_at FROM trip_members`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"trip_id", "user_id", "role", "joined_at"}).
			AddRow("trip-1", "u1", "owner", now))
	mock.ExpectQuery(`SELECT id, trip_id, paid_by_id, title, amount, subtotal, tax, tip, total, created_at`).
		WithArgs("trip-1").WillReturnRows(expenseRows)
	mock.ExpectQuery(`SELECT s.expense_id, s.user_id, s.share`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"expense_id", "user_id", "share"}).
			AddRow("exp-1", "u1", int64(1000)))
	mock.ExpectQuery(`SELECT id, trip_id, from_user_id, to_user_id, amount, method, status, decline_note, created_at, updated_at\s+FROM payments WHERE trip_id = \$1 AND status`).
		WithArgs("trip-1", payment.StatusConfirmed).
		WillReturnRows(pgxmock.NewRows([]string{"id", "trip_id", "from_user_id", "to_user_id", "amount", "method", "status", "decline_note", "created_at", "updated_at"}))

	trips := trip.NewService(mock)
	expenses := expense.NewService(mock)
	payments := payment.NewService(mock)
	balances := balance.NewService(trips, expenses, payments, nil, time.Second)

	agg := &aggregates{trips: trips, expenses: expenses, payments: payments, balances: balances}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "u1")
		return c.Next()
	})
	app.Get("/trips", agg.listTrips)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected: %v %v", err, resp.StatusCode)
	}
}

func TestTripDetailComposesExpensesPaymentsAndBalances(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, status, start_date, end_date, created_by, created_at FROM trips`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "status", "start_date", "end_date", "created_by", "created_at"}).
			AddRow("trip-1", "Lake House", "active", nil, nil, "u1", now))

	expenseRows := pgxmock.NewRows([]string{"id", "trip_id", "paid_by_id", "title", "amount", "subtotal", "tax", "tip", "total", "created_at"}).
		AddRow("exp-1", "trip-1", "u1", "Groceries", int64(1000), int64(1000), int64(0), int64(0), int64(1000), now)
	mock.ExpectQuery(`SELECT id, trip_id, paid_by_id, title, amount, subtotal, tax, tip, total, created_at`).
		WithArgs("trip-1").WillReturnRows(expenseRows)
	mock.ExpectQuery(`SELECT s.expense_id, s.user_id, s.share`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"expense_id", "user_id", "share"}).
			AddRow("exp-1", "u1", int64(1000)))

	mock.ExpectQuery(`SELECT id, trip_id, from_user_id, to_user_id, amount, method, status, decline_note, created_at, updated_at\s+FROM payments WHERE trip_id = \$1 ORDER`).
		WithArgs("trip-1").WillReturnRows(pgxmock.NewRows([]string{"id", "trip_id", "from_user_id", "to_user_id", "amount", "method", "status", "decline_note", "created_at", "updated_at"}))

	mock.ExpectQuery(`SELECT trip_id, user_id, role, joined_at FROM trip_members`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"trip_id", "user_id", "role", "joined_at"}).
			AddRow("trip-1", "u1", "owner", now))
	mock.ExpectQuery(`SELECT id, trip_id, paid_by_id, title, amount, subtotal, tax, tip, total, created_at`).
		WithArgs("trip-1").WillReturnRows(expenseRows)
	mock.ExpectQuery(`SELECT s.expense_id, s.user_id, s.share`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"expense_id", "user_id", "share"}).
			AddRow("exp-1", "u1", int64(1000)))
	mock.ExpectQuery(`SELECT id, trip_id, from_user_id, to_user_id, amount, method, status, decline_note, created_at, updated_at\s+FROM payments WHERE trip_id = \$1 AND status`).
		WithArgs("trip-1", payment.StatusConfirmed).
		WillReturnRows(pgxmock.NewRows([]string{"id", "trip_id", "from_user_id", "to_user_id", "amount", "method", "status", "decline_note", "created_at", "updated_at"}))

	trips := trip.NewService(mock)
	expenses := expense.NewService(mock)
	payments := payment.NewService(mock)
	balances := balance.NewService(trips, expenses, payments, nil, time.Second)

	agg := &aggregates{trips: trips, expenses: expenses, payments: payments, balances: balances}

	app := fiber.New()
	app.Get("/trips/:id", agg.tripDetail)

	req := httptest.NewRequest(http.MethodGet, "/trips/trip-1", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected: %v %v", err, resp.StatusCode)
	}
}

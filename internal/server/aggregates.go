package server

import (
	"tripledger/internal/balance"
	"tripledger/internal/expense"
	"tripledger/internal/money"
	"tripledger/internal/payment"
	"tripledger/internal/settlement"
	"tripledger/internal/trip"

	"github.com/gofiber/fiber/v2"
)

// aggregates implements the three read endpoints that cross trip,
// expense, payment and balance: none of those packages should know
// about the others' shapes, so the joins live here instead.
type aggregates struct {
	trips    *trip.Service
	expenses *expense.Service
	payments *payment.Service
	balances *balance.Service
}

func (a *aggregates) listTrips(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	trips, err := a.trips.ListForUser(c.Context(), callerID)
	if err != nil {
		return err
	}
	trips = paginateTrips(trips, c.QueryInt("offset", 0), c.QueryInt("limit", 0))

	summaries := make([]trip.Summary, 0, len(trips))
	for _, t := range trips {
		expenses, err := a.expenses.ListForTrip(c.Context(), t.ID)
		if err != nil {
			return err
		}
		var total int64
		for _, e := range expenses {
			total += e.Total
		}

		balances, err := a.balances.ForTrip(c.Context(), t.ID)
		if err != nil {
			return err
		}

		summaries = append(summaries, trip.Summary{
			Trip:         t,
			TotalAmount:  total,
			ExpenseCount: len(expenses),
			UserBalance:  int64(balances[callerID]),
		})
	}
	return c.JSON(summaries)
}

func paginateTrips(trips []trip.Trip, offset, limit int) []trip.Trip {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(trips) {
		return []trip.Trip{}
	}
	trips = trips[offset:]
	if limit > 0 && limit < len(trips) {
		trips = trips[:limit]
	}
	return trips
}

type tripDetailResponse struct {
	trip.Trip
	Expenses []expense.Expense     `json:"expenses"`
	Payments []payment.Payment     `json:"payments"`
	Balances map[string]money.Cents `json:"balances"`
}

func (a *aggregates) tripDetail(c *fiber.Ctx) error {
	tripID := c.Params("id")

	t, err := a.trips.GetTrip(c.Context(), tripID)
	if err != nil {
		return err
	}
	expenses, err := a.expenses.ListWithSplitsForTrip(c.Context(), tripID)
	if err != nil {
		return err
	}
	payments, err := a.payments.ListForTrip(c.Context(), tripID)
	if err != nil {
		return err
	}
	balances, err := a.balances.ForTrip(c.Context(), tripID)
	if err != nil {
		return err
	}

	return c.JSON(tripDetailResponse{
		Trip:     t,
		Expenses: expenses,
		Payments: payments,
		Balances: balances,
	})
}

type memberBalance struct {
	UserID  string      `json:"userId"`
	Balance money.Cents `json:"balance"`
}

type tripBalancesResponse struct {
	UserBalance  money.Cents          `json:"userBalance"`
	Balances     []memberBalance      `json:"balances"`
	Settlements  []settlement.Transfer `json:"settlements"`
	TotalSettled money.Cents          `json:"totalSettled"`
	PaymentCount int                  `json:"paymentCount"`
}

func (a *aggregates) tripBalances(c *fiber.Ctx) error {
	tripID := c.Params("id")
	callerID, _ := c.Locals("user_id").(string)

	members, err := a.trips.Members(c.Context(), tripID)
	if err != nil {
		return err
	}
	order := make([]string, len(members))
	for i, m := range members {
		order[i] = m.UserID
	}

	balances, err := a.balances.ForTrip(c.Context(), tripID)
	if err != nil {
		return err
	}
	transfers := settlement.Plan(balances, order)

	confirmed, err := a.payments.ConfirmedForTrip(c.Context(), tripID)
	if err != nil {
		return err
	}
	var totalSettled money.Cents
	for _, p := range confirmed {
		totalSettled += money.Cents(p.Amount)
	}

	out := make([]memberBalance, len(order))
	for i, uid := range order {
		out[i] = memberBalance{UserID: uid, Balance: balances[uid]}
	}

	return c.JSON(tripBalancesResponse{
		UserBalance:  balances[callerID],
		Balances:     out,
		Settlements:  transfers,
		TotalSettled: totalSettled,
		PaymentCount: len(confirmed),
	})
}

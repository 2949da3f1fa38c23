package balance

import "tripledger/internal/money"

// ExpenseLine is the minimal expense shape the calculator needs: who
// paid, the total, and each member's share.
type ExpenseLine struct {
	PaidByID string
	Total    money.Cents
	Splits   map[string]money.Cents
}

// PaymentLine is the minimal confirmed-payment shape the calculator
// needs. Callers must pre-filter to status=confirmed; the calculator
// has no notion of pending/declined.
type PaymentLine struct {
	FromUserID string
	ToUserID   string
	Amount     money.Cents
}

// Compute folds a trip's expenses and confirmed payments into a
// per-member balance map. balance[u] > 0 means others owe u; < 0 means
// u owes others. Every member is present in the output even if zero.
func Compute(members []string, expenses []ExpenseLine, confirmedPayments []PaymentLine) map[string]money.Cents {
	balances := make(map[string]money.Cents, len(members))
	for _, m := range members {
		balances[m] = 0
	}

	for _, e := range expenses {
		balances[e.PaidByID] += e.Total
		for uid, share := range e.Splits {
			balances[uid] -= share
		}
	}

	for _, p := range confirmedPayments {
		balances[p.FromUserID] += p.Amount
		balances[p.ToUserID] -= p.Amount
	}

	return balances
}

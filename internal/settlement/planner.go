package settlement

import (
	"sort"

	"tripledger/internal/money"
)

// Transfer is one suggested payment that reduces outstanding balances.
type Transfer struct {
	FromUserID string      `json:"fromUserId"`
	ToUserID   string      `json:"toUserId"`
	Amount     money.Cents `json:"amount"`
}

type party struct {
	userID string
	amount money.Cents // always positive; debtors and creditors tracked separately
	order  int
}

// Plan produces a minimal-effort (not minimal-cardinality) list of
// transfers that clears balances within a cent, by repeatedly matching
// the largest debtor against the largest creditor. Bounded by
// len(balances)-1 transfers.
//
// order fixes the tie-break order for equal-magnitude parties (pass the
// trip's member order) since map iteration order is not deterministic.
func Plan(balances map[string]money.Cents, order []string) []Transfer {
	var creditors, debtors []party
	for i, uid := range order {
		b, ok := balances[uid]
		if !ok {
			continue
		}
		switch {
		case b >= money.EqualTolerance:
			creditors = append(creditors, party{userID: uid, amount: b, order: i})
		case b <= -money.EqualTolerance:
			debtors = append(debtors, party{userID: uid, amount: -b, order: i})
		}
	}

	sortDesc := func(parties []party) {
		sort.SliceStable(parties, func(i, j int) bool {
			if parties[i].amount != parties[j].amount {
				return parties[i].amount > parties[j].amount
			}
			return parties[i].order < parties[j].order
		})
	}
	sortDesc(creditors)
	sortDesc(debtors)

	var transfers []Transfer
	ci, di := 0, 0
	for ci < len(creditors) && di < len(debtors) {
		c := &creditors[ci]
		d := &debtors[di]

		amount := d.amount
		if c.amount < amount {
			amount = c.amount
		}

		transfers = append(transfers, Transfer{FromUserID: d.userID, ToUserID: c.userID, Amount: amount})

		c.amount -= amount
		d.amount -= amount

		if c.amount < money.EqualTolerance {
			ci++
		}
		if d.amount < money.EqualTolerance {
			di++
		}
	}

	return transfers
}

package expense

import (
	"tripledger/internal/allocator"
	"tripledger/internal/apperr"
	"tripledger/internal/money"
)

// computedSimple is the result of validating and folding a simple
// split payload, ready to persist.
type computedSimple struct {
	total  money.Cents
	splits map[string]money.Cents
	order  []string
}

func computeSimpleSplit(in SimpleSplitInput) (computedSimple, error) {
	if in.Title == "" {
		return computedSimple{}, apperr.Validation("title is required")
	}
	if in.Amount <= 0 {
		return computedSimple{}, apperr.Validation("amount must be positive")
	}
	if len(in.Splits) == 0 {
		return computedSimple{}, apperr.Validation("splits must not be empty")
	}

	amount := money.ToCents(in.Amount)
	splits := make(map[string]money.Cents, len(in.Splits))
	order := make([]string, 0, len(in.Splits))
	var sum money.Cents
	for _, entry := range in.Splits {
		if entry.UserID == "" || entry.Share <= 0 {
			return computedSimple{}, apperr.Validation("every split needs a positive share")
		}
		share := money.ToCents(entry.Share)
		splits[entry.UserID] = share
		order = append(order, entry.UserID)
		sum += share
	}

	if diff := sum - amount; diff > money.EqualTolerance || diff < -money.EqualTolerance {
		return computedSimple{}, apperr.Validation("splits must sum to the expense amount within a cent")
	}

	return computedSimple{total: amount, splits: splits, order: order}, nil
}

// computedItemized is the result of running the itemized-expense
// pipeline: per-item per-user allocation, tax/tip distribution and
// the final per-user shares.
type computedItemized struct {
	subtotal money.Cents
	tax      money.Cents
	tip      money.Cents
	total    money.Cents
	items    []computedItem
	shares   map[string]money.Cents
	order    []string
}

type computedItem struct {
	name            string
	price           money.Cents
	assignedUserIDs []string
	perUser         map[string]money.Cents
}

func computeItemized(in ItemizedInput, members map[string]bool) (computedItemized, error) {
	if in.Title == "" {
		return computedItemized{}, apperr.Validation("title is required")
	}
	if len(in.Items) == 0 {
		return computedItemized{}, apperr.Validation("items must not be empty")
	}
	if in.Tax < 0 {
		return computedItemized{}, apperr.Validation("tax must not be negative")
	}

	perUserSubtotal := map[string]money.Cents{}
	var order []string
	seen := map[string]bool{}
	items := make([]computedItem, 0, len(in.Items))

	for _, itemIn := range in.Items {
		if itemIn.Name == "" {
			return computedItemized{}, apperr.Validation("item name is required")
		}
		if itemIn.Price <= 0 {
			return computedItemized{}, apperr.Validation("item price must be positive")
		}
		if len(itemIn.AssignedUserIDs) == 0 {
			return computedItemized{}, apperr.Validation("item %q has no assignees", itemIn.Name)
		}
		for _, uid := range itemIn.AssignedUserIDs {
			if !members[uid] {
				return computedItemized{}, apperr.Validation("user %q is not a trip member", uid)
			}
		}

		priceC := money.ToCents(itemIn.Price)
		n := int64(len(itemIn.AssignedUserIDs))
		base := int64(priceC) / n
		remainder := int64(priceC) - base*n

		perUser := make(map[string]money.Cents, n)
		for i, uid := range itemIn.AssignedUserIDs {
			share := money.Cents(base)
			if int64(i) < remainder {
				share++
			}
			perUser[uid] += share
			perUserSubtotal[uid] += share
			if !seen[uid] {
				seen[uid] = true
				order = append(order, uid)
			}
		}
		items = append(items, computedItem{name: itemIn.Name, price: priceC, assignedUserIDs: itemIn.AssignedUserIDs, perUser: perUser})
	}

	var subtotal money.Cents
	for _, v := range perUserSubtotal {
		subtotal += v
	}

	taxC := money.ToCents(in.Tax)

	var tipC money.Cents
	if in.Tip != nil {
		switch in.Tip.Type {
		case "amount":
			tipC = money.ToCents(in.Tip.Value)
		case "percent":
			tipDollars := (in.Tip.Value / 100) * money.FromCents(subtotal)
			tipC = money.ToCents(tipDollars)
		default:
			return computedItemized{}, apperr.Validation("tip.type must be \"percent\" or \"amount\"")
		}
		if in.Tip.Value < 0 {
			return computedItemized{}, apperr.Validation("tip value must not be negative")
		}
	}

	shares := map[string]money.Cents{}
	for uid, sub := range perUserSubtotal {
		shares[uid] = sub
	}
	addAllocation(shares, allocator.AllocateProportionally(perUserSubtotal, taxC, order))
	addAllocation(shares, allocator.AllocateProportionally(perUserSubtotal, tipC, order))

	total := subtotal + taxC + tipC

	var shareSum money.Cents
	for _, v := range shares {
		shareSum += v
	}
	if delta := total - shareSum; delta != 0 {
		largest := order[0]
		var max money.Cents = -1
		for _, uid := range order {
			if perUserSubtotal[uid] > max {
				max = perUserSubtotal[uid]
				largest = uid
			}
		}
		shares[largest] += delta
	}

	return computedItemized{
		subtotal: subtotal, tax: taxC, tip: tipC, total: total,
		items: items, shares: shares, order: order,
	}, nil
}

func addAllocation(into map[string]money.Cents, alloc map[string]money.Cents) {
	for k, v := range alloc {
		into[k] += v
	}
}

// Package allocator distributes a pool of cents across a set of users
// in proportion to weights, preserving the pool exactly (§4.B). The
// proportional-tax idea is the same one split.go in the reference
// splitwise-style service applies to tax; this generalizes it to an
// exact largest-remainder allocation instead of a float approximation.
package allocator

import (
	"sort"

	"tripledger/internal/money"
)

// UserID identifies the key type used by the allocator; callers
// typically instantiate this with a string user id.
type UserID = string

// remainder pairs a user with its fractional remainder, kept around
// only long enough to rank by it while preserving input order for ties.
type remainder struct {
	user  UserID
	value int64 // remainder numerator scaled, compared at equal denominator
	order int
}

// AllocateProportionally distributes pool cents across shares in
// proportion to each share's weight. If pool is zero or every weight is
// zero, every key gets zero. The sum of the output always equals pool
// exactly; every input key is present in the output; every amount is
// non-negative.
//
// order fixes tie-break order for equal remainders (input order); pass
// the iteration order the caller wants ties resolved in.
func AllocateProportionally(shares map[UserID]money.Cents, pool money.Cents, order []UserID) map[UserID]money.Cents {
	out := make(map[UserID]money.Cents, len(shares))

	var total money.Cents
	for _, s := range shares {
		total += s
	}

	if pool == 0 || total == 0 {
		for u := range shares {
			out[u] = 0
		}
		return out
	}

	// exact_i = pool * shares_i / total, computed in integer rational
	// arithmetic: floor_i = (pool*shares_i) / total, remainder tracked
	// as the numerator of (pool*shares_i mod total) / total.
	var floorSum money.Cents
	remainders := make([]remainder, 0, len(order))
	for i, u := range order {
		w := shares[u]
		num := int64(pool) * int64(w)
		den := int64(total)
		floor := num / den
		rem := num % den
		out[u] = money.Cents(floor)
		floorSum += money.Cents(floor)
		remainders = append(remainders, remainder{user: u, value: rem, order: i})
	}

	deficit := int(pool - floorSum)

	sort.SliceStable(remainders, func(i, j int) bool {
		if remainders[i].value != remainders[j].value {
			return remainders[i].value > remainders[j].value
		}
		return remainders[i].order < remainders[j].order
	})

	for i := 0; i < deficit && i < len(remainders); i++ {
		out[remainders[i].user]++
	}

	// Residual slack from integer division imprecision (should not
	// occur under exact arithmetic) is pushed onto the first user in
	// input order.
	var sum money.Cents
	for _, v := range out {
		sum += v
	}
	if slack := pool - sum; slack != 0 && len(order) > 0 {
		out[order[0]] += slack
	}

	return out
}

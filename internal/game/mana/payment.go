package mana

import (
	"errors"
	"fmt"
)

// ErrInvalidOperation is returned when a payment step is attempted in a state
// that does not allow it: paying while no cast is pending, paying a colour the
// pool does not hold, or paying life when no Phyrexian symbol remains.
var ErrInvalidOperation = errors.New("mana: invalid operation")

// ErrMidCastPending is returned when a second cast tries to start paying while
// another one is still outstanding.
var ErrMidCastPending = errors.New("mana: a cast is already being paid")

// LifePerPhyrexian is the life substituted for one Phyrexian symbol.
const LifePerPhyrexian = 2

// HasColored reports whether the pool covers every strictly coloured symbol.
func HasColored(pool *Pool, cost Cost) bool {
	for col, n := range cost.Colored {
		if pool.Amount(col) < n {
			return false
		}
	}
	return true
}

// PayColored deducts the strictly coloured part of cost from the pool. It is
// all-or-nothing: on failure the pool is unchanged.
func PayColored(pool *Pool, cost Cost) error {
	if !HasColored(pool, cost) {
		return fmt.Errorf("%w: insufficient colored mana for %s (pool %s)", ErrInvalidOperation, cost, pool)
	}
	for _, col := range Colors {
		pool.Spend(col, cost.Colored[col])
	}
	return nil
}

// CanPay reports whether the pool alone covers the whole cost, with Phyrexian
// symbols paid in mana.
func CanPay(pool *Pool, cost Cost) bool {
	test := pool.Copy()
	if PayColored(test, cost) != nil {
		return false
	}
	for col, n := range cost.Phyrexian {
		if !test.Spend(col, n) {
			return false
		}
	}
	return test.Total() >= cost.Generic
}

// AllocateGeneric proposes how to pay amount generic mana from the pool.
// The allocation is unambiguous when nothing is owed, when a single kind of
// mana is floating, or when the pool holds exactly amount mana. ok is false if
// the pool is too small or the choice needs the player.
func AllocateGeneric(pool *Pool, amount int) (alloc map[Color]int, ok bool) {
	alloc = make(map[Color]int)
	if amount <= 0 {
		return alloc, true
	}
	if pool.Total() < amount {
		return nil, false
	}
	avail := pool.ColorsAvailable()
	if len(avail) == 1 {
		alloc[avail[0]] = amount
		return alloc, true
	}
	if pool.Total() == amount {
		return pool.Available(), true
	}
	return nil, false
}

// ValidateAllocation checks that alloc sums to amount and is covered by pool.
func ValidateAllocation(pool *Pool, amount int, alloc map[Color]int) error {
	sum := 0
	for col, n := range alloc {
		if n < 0 || !col.Valid() {
			return fmt.Errorf("%w: bad allocation %v", ErrInvalidOperation, alloc)
		}
		if pool.Amount(col) < n {
			return fmt.Errorf("%w: pool has %d %s, allocation wants %d", ErrInvalidOperation, pool.Amount(col), col.Name(), n)
		}
		sum += n
	}
	if sum != amount {
		return fmt.Errorf("%w: allocation pays %d, need %d", ErrInvalidOperation, sum, amount)
	}
	return nil
}

// SpendAllocation validates alloc and removes it from the pool.
func SpendAllocation(pool *Pool, amount int, alloc map[Color]int) error {
	if err := ValidateAllocation(pool, amount, alloc); err != nil {
		return err
	}
	for _, col := range Colors {
		pool.Spend(col, alloc[col])
	}
	return nil
}

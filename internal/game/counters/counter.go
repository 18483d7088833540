package counters

import (
	"sort"
	"strconv"
	"strings"
)

// Counters is the per-object multiset of counters keyed by type.
// The zero value is not usable; create one with New.
type Counters struct {
	counts map[Type]int
}

// New creates an empty counter set.
func New() *Counters {
	return &Counters{counts: make(map[Type]int)}
}

// Add places amount counters of type t. Non-positive amounts are ignored.
func (cs *Counters) Add(t Type, amount int) {
	if amount <= 0 || !t.Valid() {
		return
	}
	cs.counts[t] += amount
}

// Remove takes up to amount counters of type t off and returns how many were
// actually removed. The count never goes below zero.
func (cs *Counters) Remove(t Type, amount int) int {
	if amount <= 0 {
		return 0
	}
	have := cs.counts[t]
	if have == 0 {
		return 0
	}
	if amount > have {
		amount = have
	}
	if have-amount == 0 {
		delete(cs.counts, t)
	} else {
		cs.counts[t] = have - amount
	}
	return amount
}

// Set forces the count of t, removing the entry when n <= 0.
func (cs *Counters) Set(t Type, n int) {
	if n <= 0 {
		delete(cs.counts, t)
		return
	}
	cs.counts[t] = n
}

// Count returns the number of counters of type t.
func (cs *Counters) Count(t Type) int {
	return cs.counts[t]
}

// Has reports whether at least one counter of type t is present.
func (cs *Counters) Has(t Type) bool {
	return cs.counts[t] > 0
}

// Total returns the number of counters of every type.
func (cs *Counters) Total() int {
	total := 0
	for _, n := range cs.counts {
		total += n
	}
	return total
}

// Boost sums the power/toughness delta of every boost counter present.
func (cs *Counters) Boost() (power, toughness int) {
	for t, n := range cs.counts {
		if p, tg, ok := t.Boost(); ok {
			power += p * n
			toughness += tg * n
		}
	}
	return power, toughness
}

// Clear removes every counter.
func (cs *Counters) Clear() {
	clear(cs.counts)
}

// Types returns the present counter types in name order.
func (cs *Counters) Types() []Type {
	out := make([]Type, 0, len(cs.counts))
	for t := range cs.counts {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Copy returns an independent copy.
func (cs *Counters) Copy() *Counters {
	out := New()
	for t, n := range cs.counts {
		out.counts[t] = n
	}
	return out
}

// String renders the set deterministically, e.g. "+1/+1:2,stun:1".
func (cs *Counters) String() string {
	parts := make([]string, 0, len(cs.counts))
	for _, t := range cs.Types() {
		parts = append(parts, string(t)+":"+strconv.Itoa(cs.counts[t]))
	}
	return strings.Join(parts, ",")
}

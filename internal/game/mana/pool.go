package mana

import (
	"fmt"
	"strings"
)

// Color is a single kind of mana. Colorless is included so pools and costs
// can treat {C} uniformly with the five colours.
type Color string

const (
	White     Color = "W"
	Blue      Color = "U"
	Black     Color = "B"
	Red       Color = "R"
	Green     Color = "G"
	Colorless Color = "C"
)

// Colors lists every mana kind in WUBRGC order. Iteration over pools and
// costs always follows this order so results are deterministic.
var Colors = []Color{White, Blue, Black, Red, Green, Colorless}

var colorNames = map[Color]string{
	White:     "white",
	Blue:      "blue",
	Black:     "black",
	Red:       "red",
	Green:     "green",
	Colorless: "colorless",
}

// ParseColor accepts a mana symbol letter ("R") or a colour name ("red").
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	up := Color(strings.ToUpper(s))
	if _, ok := colorNames[up]; ok {
		return up, nil
	}
	for c, name := range colorNames {
		if strings.EqualFold(name, s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown mana color %q", s)
}

// Valid reports whether c is one of the six mana kinds.
func (c Color) Valid() bool {
	_, ok := colorNames[c]
	return ok
}

// Name returns the lower-case English name of the colour.
func (c Color) Name() string {
	return colorNames[c]
}

func (c Color) String() string {
	return string(c)
}

// Pool is a player's mana pool: a multiset of mana kinds.
type Pool struct {
	amounts map[Color]int
}

// NewPool creates an empty mana pool.
func NewPool() *Pool {
	return &Pool{amounts: make(map[Color]int)}
}

// Add puts amount mana of colour c into the pool.
func (p *Pool) Add(c Color, amount int) {
	if amount <= 0 || !c.Valid() {
		return
	}
	p.amounts[c] += amount
}

// Spend removes amount mana of colour c. It returns false, leaving the pool
// untouched, when not enough is available.
func (p *Pool) Spend(c Color, amount int) bool {
	if amount < 0 {
		return false
	}
	if amount == 0 {
		return true
	}
	if p.amounts[c] < amount {
		return false
	}
	p.amounts[c] -= amount
	if p.amounts[c] == 0 {
		delete(p.amounts, c)
	}
	return true
}

// Amount returns how much mana of colour c is floating.
func (p *Pool) Amount(c Color) int {
	return p.amounts[c]
}

// Total returns the amount of mana of every kind.
func (p *Pool) Total() int {
	total := 0
	for _, n := range p.amounts {
		total += n
	}
	return total
}

// Available returns a copy of the non-zero amounts.
func (p *Pool) Available() map[Color]int {
	out := make(map[Color]int, len(p.amounts))
	for c, n := range p.amounts {
		if n > 0 {
			out[c] = n
		}
	}
	return out
}

// ColorsAvailable lists the kinds with mana floating, in WUBRGC order.
func (p *Pool) ColorsAvailable() []Color {
	var out []Color
	for _, c := range Colors {
		if p.amounts[c] > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Empty drains the pool.
func (p *Pool) Empty() {
	clear(p.amounts)
}

// Copy returns an independent copy of the pool.
func (p *Pool) Copy() *Pool {
	out := NewPool()
	for c, n := range p.amounts {
		out.amounts[c] = n
	}
	return out
}

// String renders the pool as mana symbols, e.g. "{U}{U}{R}".
func (p *Pool) String() string {
	var sb strings.Builder
	for _, c := range Colors {
		for i := 0; i < p.amounts[c]; i++ {
			sb.WriteString("{" + string(c) + "}")
		}
	}
	return sb.String()
}

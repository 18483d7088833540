package mana

import "fmt"

// MidCast records a spell whose cost is being paid across several player
// actions.
type MidCast struct {
	CardID             string
	PlayerID           string
	RemainingGeneric   int
	RemainingPhyrexian map[Color]int
}

// IsFullyPaid reports whether nothing remains owed.
func (m *MidCast) IsFullyPaid() bool {
	return m.RemainingGeneric <= 0 && sumCounts(m.RemainingPhyrexian) == 0
}

// Remaining renders what is still owed as a cost.
func (m *MidCast) Remaining() Cost {
	c := Cost{Generic: m.RemainingGeneric}
	for col, n := range m.RemainingPhyrexian {
		if n > 0 {
			c.addPhyrexian(col, n)
		}
	}
	return c
}

// Payment is the Idle/MidCast state machine. The zero value is Idle.
type Payment struct {
	pending *MidCast
}

// IsMidCast reports whether a cast is awaiting payment.
func (p *Payment) IsMidCast() bool {
	return p.pending != nil
}

// Pending returns the outstanding record, or nil when Idle.
func (p *Payment) Pending() *MidCast {
	return p.pending
}

// Begin enters MidCast for the given card. Only one cast may be pending.
func (p *Payment) Begin(cardID, playerID string, generic int, phyrexian map[Color]int) error {
	if p.pending != nil {
		return fmt.Errorf("%w: card %s", ErrMidCastPending, p.pending.CardID)
	}
	rem := make(map[Color]int, len(phyrexian))
	for col, n := range phyrexian {
		if n > 0 {
			rem[col] = n
		}
	}
	if generic < 0 {
		generic = 0
	}
	p.pending = &MidCast{
		CardID:             cardID,
		PlayerID:           playerID,
		RemainingGeneric:   generic,
		RemainingPhyrexian: rem,
	}
	return nil
}

// ApplyManaPayment spends one mana of colour c from pool towards the pending
// cost. A matching Phyrexian symbol is paid first, otherwise one generic.
func (p *Payment) ApplyManaPayment(pool *Pool, c Color) error {
	if p.pending == nil {
		return fmt.Errorf("%w: no cast is being paid", ErrInvalidOperation)
	}
	if pool.Amount(c) < 1 {
		return fmt.Errorf("%w: no %s mana in pool", ErrInvalidOperation, c.Name())
	}
	m := p.pending
	switch {
	case m.RemainingPhyrexian[c] > 0:
		m.RemainingPhyrexian[c]--
		if m.RemainingPhyrexian[c] == 0 {
			delete(m.RemainingPhyrexian, c)
		}
	case m.RemainingGeneric > 0:
		m.RemainingGeneric--
	default:
		return fmt.Errorf("%w: %s mana does not pay anything owed (%s)", ErrInvalidOperation, c.Name(), m.Remaining())
	}
	pool.Spend(c, 1)
	return nil
}

// ApplyLifePayment pays one Phyrexian symbol with life and returns the colour
// paid for. The caller deducts LifePerPhyrexian life.
func (p *Payment) ApplyLifePayment() (Color, error) {
	if p.pending == nil {
		return "", fmt.Errorf("%w: no cast is being paid", ErrInvalidOperation)
	}
	m := p.pending
	for _, col := range Colors {
		if m.RemainingPhyrexian[col] > 0 {
			m.RemainingPhyrexian[col]--
			if m.RemainingPhyrexian[col] == 0 {
				delete(m.RemainingPhyrexian, col)
			}
			return col, nil
		}
	}
	return "", fmt.Errorf("%w: no phyrexian mana remains", ErrInvalidOperation)
}

// IsFullyPaid reports whether the pending cast is paid. It is false when Idle.
func (p *Payment) IsFullyPaid() bool {
	return p.pending != nil && p.pending.IsFullyPaid()
}

// Complete returns to Idle once the pending cost is fully paid and returns the
// finished record.
func (p *Payment) Complete() (*MidCast, error) {
	if p.pending == nil {
		return nil, fmt.Errorf("%w: no cast is being paid", ErrInvalidOperation)
	}
	if !p.pending.IsFullyPaid() {
		return nil, fmt.Errorf("%w: %s still owed", ErrInvalidOperation, p.pending.Remaining())
	}
	m := p.pending
	p.pending = nil
	return m, nil
}

// Cancel abandons the pending cast. Mana already spent is not refunded.
func (p *Payment) Cancel() *MidCast {
	m := p.pending
	p.pending = nil
	return m
}

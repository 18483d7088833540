package mana

// WithGenericDelta returns a copy of the cost whose generic part is changed by
// delta. Reductions never take the generic part below zero and never touch
// coloured or Phyrexian symbols.
func (c Cost) WithGenericDelta(delta int) Cost {
	out := c.Clone()
	out.Generic += delta
	if out.Generic < 0 {
		out.Generic = 0
	}
	return out
}

// WithX returns a copy with every X symbol fixed to x generic mana.
func (c Cost) WithX(x int) Cost {
	out := c.Clone()
	if out.X > 0 && x > 0 {
		out.Generic += out.X * x
	}
	out.X = 0
	return out
}

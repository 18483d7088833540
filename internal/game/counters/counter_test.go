package counters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAddRemove(t *testing.T) {
	cs := New()
	cs.Add(Stun, 2)
	cs.Add(Stun, 1)
	cs.Add(Loyalty, 0)

	assert.Equal(t, 3, cs.Count(Stun))
	assert.False(t, cs.Has(Loyalty))

	removed := cs.Remove(Stun, 5)
	assert.Equal(t, 3, removed)
	assert.False(t, cs.Has(Stun))
	assert.Equal(t, 0, cs.Remove(Stun, 1))
}

func TestCountersBoost(t *testing.T) {
	cs := New()
	cs.Add(PlusOnePlusOne, 3)
	cs.Add(MinusOneMinusOne, 1)
	cs.Add(Fade, 4)

	p, tg := cs.Boost()
	assert.Equal(t, 2, p)
	assert.Equal(t, 2, tg)
	assert.Equal(t, 8, cs.Total())
}

func TestCountersCopyIsIndependent(t *testing.T) {
	cs := New()
	cs.Add(Loyalty, 3)
	cp := cs.Copy()
	cp.Remove(Loyalty, 1)

	require.Equal(t, 3, cs.Count(Loyalty))
	require.Equal(t, 2, cp.Count(Loyalty))
}

func TestCountersStringIsSorted(t *testing.T) {
	cs := New()
	cs.Add(Stun, 1)
	cs.Add(PlusOnePlusOne, 2)
	cs.Set(Age, 0)

	assert.Equal(t, "+1/+1:2,stun:1", cs.String())
}

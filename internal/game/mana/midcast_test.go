package mana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayment_ExactPaymentCompletes(t *testing.T) {
	var p Payment
	pool := NewPool()
	pool.Add(Red, 2)
	pool.Add(Black, 1)

	require.NoError(t, p.Begin("card-1", "alice", 2, map[Color]int{Black: 1}))
	require.True(t, p.IsMidCast())
	assert.False(t, p.IsFullyPaid())

	require.NoError(t, p.ApplyManaPayment(pool, Black))
	assert.Equal(t, 0, p.Pending().RemainingPhyrexian[Black], "phyrexian is paid before generic")
	assert.Equal(t, 2, p.Pending().RemainingGeneric)

	require.NoError(t, p.ApplyManaPayment(pool, Red))
	require.NoError(t, p.ApplyManaPayment(pool, Red))
	assert.True(t, p.IsFullyPaid())

	done, err := p.Complete()
	require.NoError(t, err)
	assert.Equal(t, "card-1", done.CardID)
	assert.False(t, p.IsMidCast())
	assert.False(t, p.IsFullyPaid())
	assert.Equal(t, 0, pool.Total())
}

func TestPayment_FailsWhenIdle(t *testing.T) {
	var p Payment
	pool := NewPool()
	pool.Add(Green, 1)

	assert.ErrorIs(t, p.ApplyManaPayment(pool, Green), ErrInvalidOperation)
	_, err := p.ApplyLifePayment()
	assert.ErrorIs(t, err, ErrInvalidOperation)
	_, err = p.Complete()
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Equal(t, 1, pool.Amount(Green), "failed payment must not spend")
}

func TestPayment_OnlyOnePending(t *testing.T) {
	var p Payment
	require.NoError(t, p.Begin("a", "alice", 1, nil))
	assert.ErrorIs(t, p.Begin("b", "alice", 1, nil), ErrMidCastPending)
	assert.Equal(t, "a", p.Pending().CardID)
}

func TestPayment_UnavailableColorFails(t *testing.T) {
	var p Payment
	pool := NewPool()
	pool.Add(White, 1)
	require.NoError(t, p.Begin("a", "alice", 1, nil))

	assert.ErrorIs(t, p.ApplyManaPayment(pool, Blue), ErrInvalidOperation)
	assert.Equal(t, 1, p.Pending().RemainingGeneric)
}

func TestPayment_LifeAndCancel(t *testing.T) {
	var p Payment
	require.NoError(t, p.Begin("a", "alice", 0, map[Color]int{Red: 1}))

	col, err := p.ApplyLifePayment()
	require.NoError(t, err)
	assert.Equal(t, Red, col)
	assert.True(t, p.IsFullyPaid())

	_, err = p.ApplyLifePayment()
	assert.ErrorIs(t, err, ErrInvalidOperation)

	m := p.Cancel()
	require.NotNil(t, m)
	assert.False(t, p.IsMidCast())
}

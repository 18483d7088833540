package mana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		input    string
		expected Cost
		err      bool
	}{
		{"", Cost{}, false},
		{"{1}", Cost{Generic: 1}, false},
		{"{1}{R}", Cost{Generic: 1, Colored: map[Color]int{Red: 1}}, false},
		{"{2}{U}{U}", Cost{Generic: 2, Colored: map[Color]int{Blue: 2}}, false},
		{"{X}{R}", Cost{X: 1, Colored: map[Color]int{Red: 1}}, false},
		{"{1}{G/P}{g/p}", Cost{Generic: 1, Phyrexian: map[Color]int{Green: 2}}, false},
		{"{C}", Cost{Colored: map[Color]int{Colorless: 1}}, false},
		{"{Q}", Cost{}, true},
		{"{C/P}", Cost{}, true},
		{"two red", Cost{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCost(tt.input)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected.Generic, got.Generic)
			assert.Equal(t, tt.expected.X, got.X)
			assert.Equal(t, sumCounts(tt.expected.Colored), got.ColoredTotal())
			for col, n := range tt.expected.Colored {
				assert.Equal(t, n, got.Colored[col], "colored %s", col)
			}
			for col, n := range tt.expected.Phyrexian {
				assert.Equal(t, n, got.Phyrexian[col], "phyrexian %s", col)
			}
		})
	}
}

func TestCostStringIsCanonical(t *testing.T) {
	c := MustParseCost("{U}{2}{U}{B/P}")
	assert.Equal(t, "{2}{U}{U}{B/P}", c.String())
	assert.Equal(t, 5, c.ManaValue())
	assert.Equal(t, "{0}", Cost{}.String())
}

func TestCostGenericDelta(t *testing.T) {
	c := MustParseCost("{1}{R}")
	reduced := c.WithGenericDelta(-1)
	assert.Equal(t, 0, reduced.Generic)
	assert.Equal(t, 1, reduced.Colored[Red])
	assert.Equal(t, 1, c.Generic, "original must not change")

	assert.Equal(t, 0, c.WithGenericDelta(-5).Generic)
	assert.Equal(t, 3, c.WithGenericDelta(2).Generic)
	assert.Equal(t, 6, MustParseCost("{X}{X}").WithX(3).Generic)
}

func TestCostYAMLRoundTrip(t *testing.T) {
	type wrapper struct {
		Cost Cost `yaml:"cost"`
	}
	var w wrapper
	require.NoError(t, yaml.Unmarshal([]byte("cost: \"{2}{U}{U}\"\n"), &w))
	assert.Equal(t, 2, w.Cost.Generic)
	assert.Equal(t, 2, w.Cost.Colored[Blue])

	out, err := yaml.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(out), "{2}{U}{U}")
}

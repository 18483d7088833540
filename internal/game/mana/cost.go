package mana

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var symbolPattern = regexp.MustCompile(`\{([^}]+)\}`)

// Cost is a parsed mana cost. Colored holds the strictly coloured symbols,
// Phyrexian the {C/P} symbols that may be paid with that colour or 2 life.
type Cost struct {
	Generic   int
	Colored   map[Color]int
	Phyrexian map[Color]int
	X         int
}

// ParseCost parses a cost string such as "{2}{U}{U}", "{X}{R}" or "{1}{G/P}".
func ParseCost(s string) (Cost, error) {
	var cost Cost
	s = strings.TrimSpace(s)
	if s == "" {
		return cost, nil
	}
	matches := symbolPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return Cost{}, fmt.Errorf("invalid mana cost %q", s)
	}
	for _, match := range matches {
		symbol := strings.ToUpper(strings.TrimSpace(match[1]))
		switch {
		case symbol == "X":
			cost.X++
		case strings.HasSuffix(symbol, "/P"):
			c, err := ParseColor(strings.TrimSuffix(symbol, "/P"))
			if err != nil || c == Colorless {
				return Cost{}, fmt.Errorf("unknown phyrexian symbol {%s}", symbol)
			}
			cost.addPhyrexian(c, 1)
		default:
			if n, err := strconv.Atoi(symbol); err == nil {
				if n < 0 {
					return Cost{}, fmt.Errorf("negative generic symbol {%s}", symbol)
				}
				cost.Generic += n
				continue
			}
			c := Color(symbol)
			if !c.Valid() {
				return Cost{}, fmt.Errorf("unknown mana symbol {%s}", symbol)
			}
			cost.addColored(c, 1)
		}
	}
	return cost, nil
}

// MustParseCost is ParseCost for static tables; it panics on malformed input.
func MustParseCost(s string) Cost {
	c, err := ParseCost(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Cost) addColored(col Color, n int) {
	if c.Colored == nil {
		c.Colored = make(map[Color]int)
	}
	c.Colored[col] += n
}

func (c *Cost) addPhyrexian(col Color, n int) {
	if c.Phyrexian == nil {
		c.Phyrexian = make(map[Color]int)
	}
	c.Phyrexian[col] += n
}

// ColoredTotal is the number of strictly coloured symbols.
func (c Cost) ColoredTotal() int {
	return sumCounts(c.Colored)
}

// PhyrexianTotal is the number of Phyrexian symbols.
func (c Cost) PhyrexianTotal() int {
	return sumCounts(c.Phyrexian)
}

// ManaValue is the converted cost with X counted as zero.
func (c Cost) ManaValue() int {
	return c.Generic + c.ColoredTotal() + c.PhyrexianTotal()
}

// IsZero reports whether nothing needs to be paid.
func (c Cost) IsZero() bool {
	return c.ManaValue() == 0 && c.X == 0
}

// Clone returns a deep copy.
func (c Cost) Clone() Cost {
	out := Cost{Generic: c.Generic, X: c.X}
	for col, n := range c.Colored {
		out.addColored(col, n)
	}
	for col, n := range c.Phyrexian {
		out.addPhyrexian(col, n)
	}
	return out
}

// String renders the cost in canonical symbol order.
func (c Cost) String() string {
	var sb strings.Builder
	for i := 0; i < c.X; i++ {
		sb.WriteString("{X}")
	}
	if c.Generic > 0 {
		sb.WriteString("{" + strconv.Itoa(c.Generic) + "}")
	}
	for _, col := range Colors {
		for i := 0; i < c.Colored[col]; i++ {
			sb.WriteString("{" + string(col) + "}")
		}
	}
	for _, col := range Colors {
		for i := 0; i < c.Phyrexian[col]; i++ {
			sb.WriteString("{" + string(col) + "/P}")
		}
	}
	if sb.Len() == 0 {
		return "{0}"
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler so costs round-trip through
// YAML and JSON as symbol strings.
func (c Cost) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cost) UnmarshalText(text []byte) error {
	parsed, err := ParseCost(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func sumCounts(m map[Color]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

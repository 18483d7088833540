package counters

// Type names a kind of counter that can sit on a permanent or a player.
type Type string

const (
	// Power/toughness counters.
	PlusOnePlusOne   Type = "+1/+1"
	MinusOneMinusOne Type = "-1/-1"

	// Counters with rules meaning handled by the engine.
	Stun    Type = "stun"
	Loyalty Type = "loyalty"
	Fade    Type = "fade"
	Time    Type = "time"
	Charge  Type = "charge"
	Poison  Type = "poison"

	// Flavour counters that only matter to the cards that read them.
	Age    Type = "age"
	Doom   Type = "doom"
	Growth Type = "growth"
	Lore   Type = "lore"
	Level  Type = "level"
)

var boostTypes = map[Type][2]int{
	PlusOnePlusOne:   {1, 1},
	MinusOneMinusOne: {-1, -1},
}

// Boost returns the power and toughness delta a single counter of this type
// grants, and whether the type modifies power/toughness at all.
func (t Type) Boost() (power, toughness int, ok bool) {
	b, ok := boostTypes[t]
	return b[0], b[1], ok
}

// Valid reports whether t is a non-empty counter name.
func (t Type) Valid() bool {
	return t != ""
}

func (t Type) String() string {
	return string(t)
}

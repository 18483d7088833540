package effects

// CountScope selects whose objects a dynamic count looks at.
type CountScope string

const (
	ScopeController CountScope = "controller"
	ScopeOpponents  CountScope = "opponents"
	ScopeAll        CountScope = "all"
)

// CountZone selects the zone a dynamic count looks at.
type CountZone string

const (
	ZoneBattlefield CountZone = "battlefield"
	ZoneGraveyard   CountZone = "graveyard"
	ZoneHand        CountZone = "hand"
)

// CountSpec describes a number computed from the board, such as "the number
// of Goblins on the battlefield" or "cards in all graveyards". It is plain
// data so effects stay inspectable; the engine evaluates it through Board.
type CountSpec struct {
	Zone     CountZone  `yaml:"zone" json:"zone"`
	Scope    CountScope `yaml:"scope" json:"scope"`
	CardType string     `yaml:"card_type,omitempty" json:"card_type,omitempty"`
	Subtype  string     `yaml:"subtype,omitempty" json:"subtype,omitempty"`
	// Multiplier defaults to 1 when zero.
	Multiplier int `yaml:"multiplier,omitempty" json:"multiplier,omitempty"`
	Offset     int `yaml:"offset,omitempty" json:"offset,omitempty"`
}

// Board is the read-only view of the game a recompute pass needs.
type Board interface {
	// SourcePresent reports whether an effect source still exists: a
	// permanent on the battlefield or an emblem.
	SourcePresent(sourceID string) bool
	// CountMatching counts objects in zone owned or controlled by the players
	// selected by scope relative to controllerID, filtered by card type and
	// subtype when those are set.
	CountMatching(zone CountZone, scope CountScope, controllerID, cardType, subtype string) int
}

// Evaluate computes the count for an effect controlled by controllerID.
func (c CountSpec) Evaluate(board Board, controllerID string) int {
	zone := c.Zone
	if zone == "" {
		zone = ZoneBattlefield
	}
	scope := c.Scope
	if scope == "" {
		scope = ScopeController
	}
	mult := c.Multiplier
	if mult == 0 {
		mult = 1
	}
	return board.CountMatching(zone, scope, controllerID, c.CardType, c.Subtype)*mult + c.Offset
}

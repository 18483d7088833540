package effects

import "slices"

// ControllerScope restricts a filter to objects controlled relative to the
// effect's controller.
type ControllerScope string

const (
	AnyController ControllerScope = ""
	You           ControllerScope = "you"
	Opponents     ControllerScope = "opponents"
)

// Filter is a serialisable predicate over objects. All set fields must match.
type Filter struct {
	Self        bool            `yaml:"self,omitempty" json:"self,omitempty"`
	ExcludeSelf bool            `yaml:"exclude_self,omitempty" json:"exclude_self,omitempty"`
	CardIDs     []string        `yaml:"card_ids,omitempty" json:"card_ids,omitempty"`
	CardType    string          `yaml:"card_type,omitempty" json:"card_type,omitempty"`
	Subtype     string          `yaml:"subtype,omitempty" json:"subtype,omitempty"`
	Controller  ControllerScope `yaml:"controller,omitempty" json:"controller,omitempty"`
}

// Matches reports whether obj is affected by e under this filter.
func (f Filter) Matches(obj *Object, e *Effect) bool {
	if f.Self && obj.CardID != e.SourceID {
		return false
	}
	if f.ExcludeSelf && obj.CardID == e.SourceID {
		return false
	}
	if len(f.CardIDs) > 0 && !slices.Contains(f.CardIDs, obj.CardID) {
		return false
	}
	if f.CardType != "" && !obj.HasType(f.CardType) {
		return false
	}
	if f.Subtype != "" && !obj.HasSubtype(f.Subtype) {
		return false
	}
	return matchController(f.scope(e), obj.ControllerID, e.ControllerID)
}

// MatchesPlayer reports whether a player-level effect applies to playerID.
func (f Filter) MatchesPlayer(playerID string, e *Effect) bool {
	return matchController(f.scope(e), playerID, e.ControllerID)
}

func (f Filter) scope(e *Effect) ControllerScope {
	if e.ControllerOnly && f.Controller == AnyController {
		return You
	}
	return f.Controller
}

func matchController(scope ControllerScope, subject, controller string) bool {
	switch scope {
	case You:
		return subject == controller
	case Opponents:
		return subject != controller
	default:
		return true
	}
}

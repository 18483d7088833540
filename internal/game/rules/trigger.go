package rules

import (
	"github.com/google/uuid"
)

// TriggerCondition tags when a triggered ability fires.
type TriggerCondition string

const (
	// Self conditions fire for the card the event is about.
	SelfEntersBattlefield         TriggerCondition = "SelfEntersBattlefield"
	SelfLeavesBattlefield         TriggerCondition = "SelfLeavesBattlefield"
	SelfDies                      TriggerCondition = "SelfDies"
	SelfCast                      TriggerCondition = "SelfCast"
	SelfAttacks                   TriggerCondition = "SelfAttacks"
	SelfDealsCombatDamageToPlayer TriggerCondition = "SelfDealsCombatDamageToPlayer"
	SelfCycled                    TriggerCondition = "SelfCycled"
	SelfDiscardedByOpponent       TriggerCondition = "SelfDiscardedByOpponent"

	// Board conditions fire for permanents on either battlefield.
	AnyCreatureEntersBattlefield   TriggerCondition = "AnyCreatureEntersBattlefield"
	OtherCreatureEntersBattlefield TriggerCondition = "OtherCreatureEntersBattlefield"
	AnyCreatureDies                TriggerCondition = "AnyCreatureDies"
	AnySpellCast                   TriggerCondition = "AnySpellCast"
	ControllerCastsSpell           TriggerCondition = "ControllerCastsSpell"
	OpponentCastsSpell             TriggerCondition = "OpponentCastsSpell"
	ControllerUpkeep               TriggerCondition = "ControllerUpkeep"
	EachUpkeep                     TriggerCondition = "EachUpkeep"
	ControllerDraws                TriggerCondition = "ControllerDraws"
	OpponentDraws                  TriggerCondition = "OpponentDraws"
	ControllerPlaysLand            TriggerCondition = "ControllerPlaysLand"
	OpponentPlaysLand              TriggerCondition = "OpponentPlaysLand"
	OpponentDestroysControllerLand TriggerCondition = "OpponentDestroysControllerLand"
	ControllerEndStep              TriggerCondition = "ControllerEndStep"
	ControllerGainsLife            TriggerCondition = "ControllerGainsLife"

	// Graveyard conditions fire while the card rests in its owner's graveyard.
	UpkeepInGraveyard TriggerCondition = "UpkeepInGraveyard"
)

// TriggerScope says which scan looks at a condition.
type TriggerScope int

const (
	ScopeSelf TriggerScope = iota
	ScopeBoard
	ScopeGraveyard
)

var conditionScopes = map[TriggerCondition]TriggerScope{
	SelfEntersBattlefield:          ScopeSelf,
	SelfLeavesBattlefield:          ScopeSelf,
	SelfDies:                       ScopeSelf,
	SelfCast:                       ScopeSelf,
	SelfAttacks:                    ScopeSelf,
	SelfDealsCombatDamageToPlayer:  ScopeSelf,
	SelfCycled:                     ScopeSelf,
	SelfDiscardedByOpponent:        ScopeSelf,
	AnyCreatureEntersBattlefield:   ScopeBoard,
	OtherCreatureEntersBattlefield: ScopeBoard,
	AnyCreatureDies:                ScopeBoard,
	AnySpellCast:                   ScopeBoard,
	ControllerCastsSpell:           ScopeBoard,
	OpponentCastsSpell:             ScopeBoard,
	ControllerUpkeep:               ScopeBoard,
	EachUpkeep:                     ScopeBoard,
	ControllerDraws:                ScopeBoard,
	OpponentDraws:                  ScopeBoard,
	ControllerPlaysLand:            ScopeBoard,
	OpponentPlaysLand:              ScopeBoard,
	OpponentDestroysControllerLand: ScopeBoard,
	ControllerEndStep:              ScopeBoard,
	ControllerGainsLife:            ScopeBoard,
	UpkeepInGraveyard:              ScopeGraveyard,
}

// Scope returns the scan that evaluates the condition.
func (c TriggerCondition) Scope() TriggerScope {
	return conditionScopes[c]
}

// Valid reports whether c is a known condition.
func (c TriggerCondition) Valid() bool {
	_, ok := conditionScopes[c]
	return ok
}

// Matches reports whether ev fires a trigger with this condition on the card
// cardID controlled by controllerID.
func (c TriggerCondition) Matches(ev Event, cardID, controllerID string) bool {
	switch c {
	case SelfEntersBattlefield:
		return ev.Type == EventEntersBattlefield && ev.SourceID == cardID
	case SelfLeavesBattlefield:
		return ev.Type == EventLeavesBattlefield && ev.SourceID == cardID
	case SelfDies:
		return ev.Type == EventDies && ev.SourceID == cardID
	case SelfCast:
		return ev.Type == EventSpellCast && ev.SourceID == cardID
	case SelfAttacks:
		return ev.Type == EventAttackerDeclared && ev.SourceID == cardID
	case SelfDealsCombatDamageToPlayer:
		return ev.Type == EventCombatDamageToPlayer && ev.SourceID == cardID
	case SelfCycled:
		return ev.Type == EventCycled && ev.SourceID == cardID
	case SelfDiscardedByOpponent:
		return ev.Type == EventDiscard && ev.SourceID == cardID && causedByOpponent(ev, controllerID)
	case AnyCreatureEntersBattlefield:
		return ev.Type == EventEntersBattlefield && ev.HasType("Creature")
	case OtherCreatureEntersBattlefield:
		return ev.Type == EventEntersBattlefield && ev.HasType("Creature") && ev.SourceID != cardID
	case AnyCreatureDies:
		return ev.Type == EventDies && ev.HasType("Creature")
	case AnySpellCast:
		return ev.Type == EventSpellCast
	case ControllerCastsSpell:
		return ev.Type == EventSpellCast && ev.PlayerID == controllerID
	case OpponentCastsSpell:
		return ev.Type == EventSpellCast && ev.PlayerID != controllerID
	case ControllerUpkeep, UpkeepInGraveyard:
		return ev.Type == EventUpkeep && ev.PlayerID == controllerID
	case EachUpkeep:
		return ev.Type == EventUpkeep
	case ControllerDraws:
		return ev.Type == EventDrawCard && ev.PlayerID == controllerID
	case OpponentDraws:
		return ev.Type == EventDrawCard && ev.PlayerID != controllerID
	case ControllerPlaysLand:
		return ev.Type == EventLandPlayed && ev.PlayerID == controllerID
	case OpponentPlaysLand:
		return ev.Type == EventLandPlayed && ev.PlayerID != controllerID
	case OpponentDestroysControllerLand:
		return ev.Type == EventLeavesBattlefield && ev.ToZone == ZoneGraveyard &&
			ev.HasType("Land") && ev.PlayerID == controllerID && causedByOpponent(ev, controllerID)
	case ControllerEndStep:
		return ev.Type == EventEndStep && ev.PlayerID == controllerID
	case ControllerGainsLife:
		return ev.Type == EventLifeGained && ev.PlayerID == controllerID
	}
	return false
}

// causedByOpponent consults the recorded cause only; an unknown cause never
// counts as an opponent.
func causedByOpponent(ev Event, controllerID string) bool {
	return ev.CausedBy != "" && ev.CausedBy != controllerID
}

// DelayedTrigger fires once on the next event of type FireOn, optionally only
// for events happening to PlayerID. Payload is the effect to put on the stack.
type DelayedTrigger struct {
	ID           string
	FireOn       EventType
	PlayerID     string
	ControllerID string
	SourceID     string
	Payload      any
}

// DelayedTriggerQueue holds registered delayed triggers in registration order.
type DelayedTriggerQueue struct {
	pending []DelayedTrigger
}

// NewDelayedTriggerQueue creates an empty queue.
func NewDelayedTriggerQueue() *DelayedTriggerQueue {
	return &DelayedTriggerQueue{}
}

// Add registers a delayed trigger and returns its ID.
func (q *DelayedTriggerQueue) Add(dt DelayedTrigger) string {
	if dt.ID == "" {
		dt.ID = uuid.NewString()
	}
	q.pending = append(q.pending, dt)
	return dt.ID
}

// Collect removes and returns every trigger matching ev. Unmatched triggers
// stay queued.
func (q *DelayedTriggerQueue) Collect(ev Event) []DelayedTrigger {
	var fired []DelayedTrigger
	kept := q.pending[:0]
	for _, dt := range q.pending {
		if dt.FireOn == ev.Type && (dt.PlayerID == "" || dt.PlayerID == ev.PlayerID) {
			fired = append(fired, dt)
			continue
		}
		kept = append(kept, dt)
	}
	q.pending = kept
	return fired
}

// Len returns the number of queued triggers.
func (q *DelayedTriggerQueue) Len() int {
	return len(q.pending)
}

// List returns a copy of the queued triggers.
func (q *DelayedTriggerQueue) List() []DelayedTrigger {
	return append([]DelayedTrigger(nil), q.pending...)
}

// OrderAPNAP returns items with every entry controlled by the active player
// first, then the rest. Relative order inside each group is preserved.
func OrderAPNAP[T any](items []T, controller func(T) string, activePlayer string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if controller(it) == activePlayer {
			out = append(out, it)
		}
	}
	for _, it := range items {
		if controller(it) != activePlayer {
			out = append(out, it)
		}
	}
	return out
}

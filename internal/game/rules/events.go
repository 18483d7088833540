package rules

import (
	"slices"
	"strings"
)

// Zone names a place a card can be.
type Zone string

const (
	ZoneLibrary     Zone = "library"
	ZoneHand        Zone = "hand"
	ZoneBattlefield Zone = "battlefield"
	ZoneGraveyard   Zone = "graveyard"
	ZoneExile       Zone = "exile"
	ZoneStack       Zone = "stack"
)

// EventType indicates the category of a game event.
type EventType string

const (
	EventBeginTurn            EventType = "BEGIN_TURN"
	EventUpkeep               EventType = "UPKEEP"
	EventDrawCard             EventType = "DRAW_CARD"
	EventEndStep              EventType = "END_STEP"
	EventLandPlayed           EventType = "LAND_PLAYED"
	EventSpellCast            EventType = "SPELL_CAST"
	EventEntersBattlefield    EventType = "ENTERS_BATTLEFIELD"
	EventLeavesBattlefield    EventType = "LEAVES_BATTLEFIELD"
	EventDies                 EventType = "DIES"
	EventDiscard              EventType = "DISCARD"
	EventCycled               EventType = "CYCLED"
	EventAttackerDeclared     EventType = "ATTACKER_DECLARED"
	EventBlockerDeclared      EventType = "BLOCKER_DECLARED"
	EventCombatDamageToPlayer EventType = "COMBAT_DAMAGE_TO_PLAYER"
	EventDamageDealt          EventType = "DAMAGE_DEALT"
	EventLifeGained           EventType = "LIFE_GAINED"
	EventLifeLost             EventType = "LIFE_LOST"
	EventCounterAdded         EventType = "COUNTER_ADDED"
	EventZoneChange           EventType = "ZONE_CHANGE"
)

// Event describes something that happened in the game. SourceID is the card
// the event is about, PlayerID the player it happened to, and CausedBy the
// player whose spell or action made it happen, when known.
type Event struct {
	Type      EventType
	SourceID  string
	PlayerID  string
	CausedBy  string
	TargetID  string
	FromZone  Zone
	ToZone    Zone
	Amount    int
	CardTypes []string
}

// NewEvent constructs an event about sourceID happening to playerID.
func NewEvent(eventType EventType, sourceID, playerID string) Event {
	return Event{
		Type:     eventType,
		SourceID: sourceID,
		PlayerID: playerID,
	}
}

// HasType reports whether the card the event is about had the given type.
func (e Event) HasType(t string) bool {
	return slices.ContainsFunc(e.CardTypes, func(s string) bool { return strings.EqualFold(s, t) })
}

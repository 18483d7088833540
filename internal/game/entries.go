package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

var (
	_ rules.StackEntry = (*SpellEntry)(nil)
	_ rules.StackEntry = (*AbilityEntry)(nil)
)

// SpellEntry is a cast spell waiting on the stack.
type SpellEntry struct {
	ID           string
	Card         *GameCard
	ControllerID string
	Target       *TargetInfo
	Paid         map[mana.Color]int
}

func (s *SpellEntry) EntryID() string    { return s.ID }
func (s *SpellEntry) Controller() string { return s.ControllerID }

func (s *SpellEntry) Describe() string {
	if s.Target == nil {
		return s.Card.Name()
	}
	return fmt.Sprintf("%s targeting %s", s.Card.Name(), s.Target)
}

// AbilityKind distinguishes where an ability on the stack came from.
type AbilityKind string

const (
	AbilityTriggered AbilityKind = "triggered"
	AbilityActivated AbilityKind = "activated"
	AbilityLoyalty   AbilityKind = "loyalty"
	AbilityDelayed   AbilityKind = "delayed"
)

// AbilityEntry is a triggered or activated ability on the stack. The source
// may have left the battlefield by the time it resolves.
type AbilityEntry struct {
	ID           string
	Kind         AbilityKind
	SourceID     string
	SourceName   string
	ControllerID string
	Effect       card.Effect
	Spec         *card.TargetSpec
	Target       *TargetInfo
}

func newAbilityEntry(kind AbilityKind, sourceID, sourceName, controllerID string, eff card.Effect, spec *card.TargetSpec, target *TargetInfo) *AbilityEntry {
	return &AbilityEntry{
		ID:           uuid.NewString(),
		Kind:         kind,
		SourceID:     sourceID,
		SourceName:   sourceName,
		ControllerID: controllerID,
		Effect:       eff,
		Spec:         spec,
		Target:       target,
	}
}

func (a *AbilityEntry) EntryID() string    { return a.ID }
func (a *AbilityEntry) Controller() string { return a.ControllerID }

func (a *AbilityEntry) Describe() string {
	desc := fmt.Sprintf("%s ability of %s: %s", a.Kind, a.SourceName, a.Effect.Describe())
	if a.Target != nil {
		desc += " targeting " + a.Target.String()
	}
	return desc
}

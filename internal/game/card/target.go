package card

import (
	"fmt"

	"github.com/magefree/mage-rules-go/internal/game/effects"
)

// TargetKind is what a target may be.
type TargetKind string

const (
	TargetCreature         TargetKind = "creature"
	TargetPermanent        TargetKind = "permanent"
	TargetPlayer           TargetKind = "player"
	TargetCreatureOrPlayer TargetKind = "creature_or_player"
	TargetSpell            TargetKind = "spell"
	TargetGraveyardCard    TargetKind = "graveyard_card"
)

// TargetSpec restricts what can be chosen as a target.
type TargetSpec struct {
	Kind       TargetKind              `yaml:"kind" json:"kind"`
	CardType   string                  `yaml:"card_type,omitempty" json:"card_type,omitempty"`
	Subtype    string                  `yaml:"subtype,omitempty" json:"subtype,omitempty"`
	Controller effects.ControllerScope `yaml:"controller,omitempty" json:"controller,omitempty"`
}

// AllowsPlayers reports whether a player is a legal kind of target.
func (t TargetSpec) AllowsPlayers() bool {
	return t.Kind == TargetPlayer || t.Kind == TargetCreatureOrPlayer
}

// AllowsCards reports whether a card or permanent is a legal kind of target.
func (t TargetSpec) AllowsCards() bool {
	return t.Kind != TargetPlayer
}

// Validate checks the kind is known.
func (t TargetSpec) Validate() error {
	switch t.Kind {
	case TargetCreature, TargetPermanent, TargetPlayer, TargetCreatureOrPlayer, TargetSpell, TargetGraveyardCard:
		return nil
	}
	return fmt.Errorf("unknown target kind %q", t.Kind)
}

package card

import (
	"errors"
	"fmt"

	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// EffectKind is the closed set of one-shot effects a card can have.
type EffectKind string

const (
	DealDamage             EffectKind = "DealDamage"
	GainLife               EffectKind = "GainLife"
	LoseLife               EffectKind = "LoseLife"
	DrawCards              EffectKind = "DrawCards"
	Discard                EffectKind = "Discard"
	Destroy                EffectKind = "Destroy"
	Exile                  EffectKind = "Exile"
	ReturnToHand           EffectKind = "ReturnToHand"
	AddCounters            EffectKind = "AddCounters"
	RemoveCounters         EffectKind = "RemoveCounters"
	ApplyContinuous        EffectKind = "ApplyContinuous"
	AddMana                EffectKind = "AddMana"
	Sacrifice              EffectKind = "Sacrifice"
	Mill                   EffectKind = "Mill"
	Tap                    EffectKind = "Tap"
	Untap                  EffectKind = "Untap"
	CounterSpell           EffectKind = "CounterSpell"
	RegisterDelayedTrigger EffectKind = "RegisterDelayedTrigger"
	ExtraTurn              EffectKind = "ExtraTurn"
	CreateEmblem           EffectKind = "CreateEmblem"
	Transform              EffectKind = "Transform"
	SearchLibrary          EffectKind = "SearchLibrary"
	Sequence               EffectKind = "Sequence"
)

// Recipient says who or what an effect acts on.
type Recipient string

const (
	// RecipientTarget uses the target chosen when the spell or ability was
	// put on the stack.
	RecipientTarget     Recipient = "target"
	RecipientSelf       Recipient = "self"
	RecipientController Recipient = "controller"
	RecipientOpponent   Recipient = "opponent"
	RecipientEachPlayer Recipient = "each_player"
)

// Effect is one entry of the closed effect variant. Which fields matter
// depends on Kind; Validate enforces the combinations.
type Effect struct {
	Kind      EffectKind `yaml:"kind" json:"kind"`
	Recipient Recipient  `yaml:"to,omitempty" json:"to,omitempty"`
	Amount    int        `yaml:"amount,omitempty" json:"amount,omitempty"`
	// AmountCount replaces Amount with a value computed when the effect
	// resolves.
	AmountCount *effects.CountSpec `yaml:"amount_count,omitempty" json:"amount_count,omitempty"`
	Counter     counters.Type      `yaml:"counter,omitempty" json:"counter,omitempty"`
	Color       mana.Color         `yaml:"color,omitempty" json:"color,omitempty"`
	Continuous  *effects.Effect    `yaml:"continuous,omitempty" json:"continuous,omitempty"`
	FireOn      rules.EventType    `yaml:"fire_on,omitempty" json:"fire_on,omitempty"`
	Delayed     *Effect            `yaml:"delayed,omitempty" json:"delayed,omitempty"`
	Steps       []Effect           `yaml:"steps,omitempty" json:"steps,omitempty"`
	// Subtypes lists what SearchLibrary may find.
	Subtypes []string `yaml:"subtypes,omitempty" json:"subtypes,omitempty"`
}

var errNoKind = errors.New("effect kind is required")

// Validate checks that the fields required by Kind are present.
func (e Effect) Validate() error {
	switch e.Kind {
	case "":
		return errNoKind
	case DealDamage, GainLife, LoseLife, DrawCards, Discard, Mill:
		if e.Amount <= 0 && e.AmountCount == nil {
			return fmt.Errorf("%s needs a positive amount", e.Kind)
		}
	case AddCounters, RemoveCounters:
		if !e.Counter.Valid() {
			return fmt.Errorf("%s needs a counter type", e.Kind)
		}
	case AddMana:
		if !e.Color.Valid() {
			return fmt.Errorf("%s needs a mana color", e.Kind)
		}
	case ApplyContinuous, CreateEmblem:
		if e.Continuous == nil || !e.Continuous.Type.Valid() {
			return fmt.Errorf("%s needs a continuous effect", e.Kind)
		}
	case RegisterDelayedTrigger:
		if e.FireOn == "" || e.Delayed == nil {
			return fmt.Errorf("%s needs fire_on and a delayed effect", e.Kind)
		}
		return e.Delayed.Validate()
	case Sequence:
		if len(e.Steps) == 0 {
			return fmt.Errorf("%s needs steps", e.Kind)
		}
		for i, s := range e.Steps {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
		}
	case SearchLibrary:
		if len(e.Subtypes) == 0 {
			return fmt.Errorf("%s needs subtypes", e.Kind)
		}
	case Destroy, Exile, ReturnToHand, Sacrifice, Tap, Untap, CounterSpell, ExtraTurn, Transform:
	default:
		return fmt.Errorf("unknown effect kind %q", e.Kind)
	}
	return nil
}

// targetsByDefault lists the kinds that act on the chosen target when no
// recipient is named.
var targetsByDefault = map[EffectKind]bool{
	DealDamage:     true,
	Destroy:        true,
	Sacrifice:      true,
	Exile:          true,
	ReturnToHand:   true,
	AddCounters:    true,
	RemoveCounters: true,
	Tap:            true,
	Untap:          true,
	Transform:      true,
	CounterSpell:   true,
}

// UsesTarget reports whether the effect, or any step of it, acts on the
// chosen target.
func (e Effect) UsesTarget() bool {
	if e.Recipient == RecipientTarget || (e.Recipient == "" && targetsByDefault[e.Kind]) {
		return true
	}
	for _, s := range e.Steps {
		if s.UsesTarget() {
			return true
		}
	}
	return false
}

// Describe renders a short human-readable summary for the game log.
func (e Effect) Describe() string {
	switch e.Kind {
	case DealDamage, GainLife, LoseLife, DrawCards, Discard, Mill:
		if e.AmountCount != nil {
			return fmt.Sprintf("%s X", e.Kind)
		}
		return fmt.Sprintf("%s %d", e.Kind, e.Amount)
	case AddCounters, RemoveCounters:
		return fmt.Sprintf("%s %d %s", e.Kind, max(e.Amount, 1), e.Counter)
	case AddMana:
		return fmt.Sprintf("%s {%s}", e.Kind, e.Color)
	case Sequence:
		return fmt.Sprintf("%s of %d", e.Kind, len(e.Steps))
	}
	return string(e.Kind)
}

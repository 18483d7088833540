// Package card holds the catalogue data model: static card definitions the
// engine reads when it creates game cards. Nothing here has behaviour beyond
// validation and simple queries.
package card

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// Definition is the printed data of one card.
type Definition struct {
	Name      string            `yaml:"name" json:"name"`
	Cost      mana.Cost         `yaml:"cost,omitempty" json:"cost,omitempty"`
	Types     []string          `yaml:"types" json:"types"`
	Subtypes  []string          `yaml:"subtypes,omitempty" json:"subtypes,omitempty"`
	Power     int               `yaml:"power,omitempty" json:"power,omitempty"`
	Toughness int               `yaml:"toughness,omitempty" json:"toughness,omitempty"`
	Loyalty   int               `yaml:"loyalty,omitempty" json:"loyalty,omitempty"`
	Keywords  []effects.Keyword `yaml:"keywords,omitempty" json:"keywords,omitempty"`

	// Landwalk makes the creature unblockable while the defending player
	// controls a land with this subtype.
	Landwalk string `yaml:"landwalk,omitempty" json:"landwalk,omitempty"`
	// BlockableOnlyBy restricts blockers to creatures with this subtype.
	BlockableOnlyBy string `yaml:"blockable_only_by,omitempty" json:"blockable_only_by,omitempty"`

	// Spell is what an instant or sorcery does when it resolves, or the
	// effect of a permanent spell on entering (rarely used).
	Spell  *Effect     `yaml:"spell,omitempty" json:"spell,omitempty"`
	Target *TargetSpec `yaml:"target,omitempty" json:"target,omitempty"`

	Triggers      []Trigger          `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Activated     []ActivatedAbility `yaml:"activated,omitempty" json:"activated,omitempty"`
	LoyaltyAbils  []LoyaltyAbility   `yaml:"loyalty_abilities,omitempty" json:"loyalty_abilities,omitempty"`
	ManaAbilities []ManaAbility      `yaml:"mana_abilities,omitempty" json:"mana_abilities,omitempty"`
	// Statics are continuous effects the permanent generates while it is on
	// the battlefield.
	Statics []effects.Effect `yaml:"statics,omitempty" json:"statics,omitempty"`

	AlternateCost *AlternateCost `yaml:"alternate_cost,omitempty" json:"alternate_cost,omitempty"`
	CyclingCost   *mana.Cost     `yaml:"cycling_cost,omitempty" json:"cycling_cost,omitempty"`
	Fetch         *Fetch         `yaml:"fetch,omitempty" json:"fetch,omitempty"`
	TransformInto string         `yaml:"transform_into,omitempty" json:"transform_into,omitempty"`
}

// Trigger binds a condition to the effect put on the stack when it fires.
type Trigger struct {
	Condition rules.TriggerCondition `yaml:"when" json:"when"`
	Effect    Effect                 `yaml:"effect" json:"effect"`
	Target    *TargetSpec            `yaml:"target,omitempty" json:"target,omitempty"`
}

// ActivatedAbility is a non-mana, non-loyalty activated ability.
type ActivatedAbility struct {
	Cost          mana.Cost   `yaml:"cost,omitempty" json:"cost,omitempty"`
	TapCost       bool        `yaml:"tap,omitempty" json:"tap,omitempty"`
	LifeCost      int         `yaml:"life,omitempty" json:"life,omitempty"`
	SacrificeSelf bool        `yaml:"sacrifice,omitempty" json:"sacrifice,omitempty"`
	OncePerTurn   bool        `yaml:"once_per_turn,omitempty" json:"once_per_turn,omitempty"`
	SorcerySpeed  bool        `yaml:"sorcery_speed,omitempty" json:"sorcery_speed,omitempty"`
	Effect        Effect      `yaml:"effect" json:"effect"`
	Target        *TargetSpec `yaml:"target,omitempty" json:"target,omitempty"`
}

// LoyaltyAbility is a planeswalker ability. Loyalty is the counter change,
// positive or negative.
type LoyaltyAbility struct {
	Loyalty int         `yaml:"loyalty" json:"loyalty"`
	Effect  Effect      `yaml:"effect" json:"effect"`
	Target  *TargetSpec `yaml:"target,omitempty" json:"target,omitempty"`
}

// ManaAbilityKind selects how a mana ability produces mana.
type ManaAbilityKind string

const (
	// ManaFixed adds Amount mana of the single colour listed.
	ManaFixed ManaAbilityKind = "fixed"
	// ManaChoice adds Amount mana of one colour the player picks from Produces.
	ManaChoice ManaAbilityKind = "choice"
	// ManaDynamic adds mana of the first colour, as much as Count evaluates to.
	ManaDynamic ManaAbilityKind = "dynamic"
	// ManaMultiple adds one mana of each colour listed.
	ManaMultiple ManaAbilityKind = "multiple"
)

// ManaAbility is a tap-for-mana ability.
type ManaAbility struct {
	Kind     ManaAbilityKind    `yaml:"kind" json:"kind"`
	Produces []mana.Color       `yaml:"produces" json:"produces"`
	Amount   int                `yaml:"amount,omitempty" json:"amount,omitempty"`
	Count    *effects.CountSpec `yaml:"count,omitempty" json:"count,omitempty"`
}

// AlternateCostKind names a way to cast a spell without paying its mana cost.
type AlternateCostKind string

const (
	AltReturnPermanent     AlternateCostKind = "return_permanent"
	AltExileTopOfGraveyard AlternateCostKind = "exile_top_of_graveyard"
	AltPayLife             AlternateCostKind = "pay_life"
)

// AlternateCost replaces the mana cost entirely.
type AlternateCost struct {
	Kind     AlternateCostKind `yaml:"kind" json:"kind"`
	Subtype  string            `yaml:"subtype,omitempty" json:"subtype,omitempty"`
	CardType string            `yaml:"card_type,omitempty" json:"card_type,omitempty"`
	Life     int               `yaml:"life,omitempty" json:"life,omitempty"`
}

// Fetch is a "pay life, sacrifice: search for a land" ability.
type Fetch struct {
	LifeCost int      `yaml:"life" json:"life"`
	Subtypes []string `yaml:"subtypes" json:"subtypes"`
}

// Catalogue looks definitions up by card name. Implementations are read-only.
type Catalogue interface {
	Lookup(name string) (*Definition, bool)
}

// HasType reports whether the card has the card type, case-insensitively.
func (d *Definition) HasType(t string) bool {
	return slices.ContainsFunc(d.Types, func(s string) bool { return strings.EqualFold(s, t) })
}

// HasSubtype reports whether the card has the subtype, case-insensitively.
func (d *Definition) HasSubtype(t string) bool {
	return slices.ContainsFunc(d.Subtypes, func(s string) bool { return strings.EqualFold(s, t) })
}

// HasKeyword reports whether the card is printed with keyword k.
func (d *Definition) HasKeyword(k effects.Keyword) bool {
	return slices.Contains(d.Keywords, k)
}

func (d *Definition) IsCreature() bool     { return d.HasType("Creature") }
func (d *Definition) IsLand() bool         { return d.HasType("Land") }
func (d *Definition) IsPlaneswalker() bool { return d.HasType("Planeswalker") }

// IsInstantSpeed reports whether the card can be cast any time its caster
// has priority.
func (d *Definition) IsInstantSpeed() bool {
	return d.HasType("Instant") || d.HasKeyword(effects.Flash)
}

// IsPermanent reports whether the card stays on the battlefield on resolution.
func (d *Definition) IsPermanent() bool {
	return !d.HasType("Instant") && !d.HasType("Sorcery")
}

// Validate checks the definition is usable by the engine.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("card name is required")
	}
	if len(d.Types) == 0 {
		return fmt.Errorf("%s: at least one card type is required", d.Name)
	}
	var errs []error
	if d.Spell != nil {
		errs = append(errs, wrap("spell", d.Spell.Validate()))
	}
	if d.Target != nil {
		errs = append(errs, wrap("target", d.Target.Validate()))
		if d.Spell == nil || !d.Spell.UsesTarget() {
			errs = append(errs, errUnusedTarget("spell"))
		}
	}
	for i, t := range d.Triggers {
		what := fmt.Sprintf("trigger %d", i)
		if !t.Condition.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown condition %q", what, t.Condition))
		}
		errs = append(errs, wrap(what, t.Effect.Validate()))
		if t.Target != nil && !t.Effect.UsesTarget() {
			errs = append(errs, errUnusedTarget(what))
		}
	}
	for i, a := range d.Activated {
		what := fmt.Sprintf("ability %d", i)
		errs = append(errs, wrap(what, a.Effect.Validate()))
		if a.Target != nil && !a.Effect.UsesTarget() {
			errs = append(errs, errUnusedTarget(what))
		}
	}
	for i, a := range d.LoyaltyAbils {
		what := fmt.Sprintf("loyalty ability %d", i)
		errs = append(errs, wrap(what, a.Effect.Validate()))
		if a.Target != nil && !a.Effect.UsesTarget() {
			errs = append(errs, errUnusedTarget(what))
		}
	}
	for i, m := range d.ManaAbilities {
		errs = append(errs, wrap(fmt.Sprintf("mana ability %d", i), m.Validate()))
	}
	for i, s := range d.Statics {
		if !s.Type.Valid() {
			errs = append(errs, fmt.Errorf("static %d: unknown effect type %q", i, s.Type))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}
	return nil
}

// Validate checks a mana ability's shape.
func (m ManaAbility) Validate() error {
	if len(m.Produces) == 0 {
		return errors.New("mana ability produces nothing")
	}
	for _, c := range m.Produces {
		if !c.Valid() {
			return fmt.Errorf("unknown mana color %q", c)
		}
	}
	switch m.Kind {
	case ManaFixed, ManaChoice, ManaMultiple:
	case ManaDynamic:
		if m.Count == nil {
			return errors.New("dynamic mana ability needs a count")
		}
	default:
		return fmt.Errorf("unknown mana ability kind %q", m.Kind)
	}
	return nil
}

// errUnusedTarget reports a target spec whose effect never acts on the target.
func errUnusedTarget(what string) error {
	return fmt.Errorf("%s: has a target but no effect uses it (set to: target)", what)
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}

package effects

import (
	"fmt"

	"github.com/google/uuid"
)

// Type tags what a continuous effect does.
type Type string

const (
	ModifyPowerToughness     Type = "ModifyPowerToughness"
	SetBasePowerToughness    Type = "SetBasePowerToughness"
	SetPowerToughness        Type = "SetPowerToughness"
	DefinePowerToughness     Type = "DefinePowerToughness"
	GrantKeyword             Type = "GrantKeyword"
	RemoveKeyword            Type = "RemoveKeyword"
	ModifyCost               Type = "ModifyCost"
	ExtraLandDrop            Type = "ExtraLandDrop"
	SkipDraw                 Type = "SkipDraw"
	GrantPlayerShroud        Type = "GrantPlayerShroud"
	PreventDamageToPlayer    Type = "PreventDamageToPlayer"
	BecomeCreature           Type = "BecomeCreature"
	RemoveAbilities          Type = "RemoveAbilities"
	AttackPowerCapByHandSize Type = "AttackPowerCapByHandSize"
)

var defaultLayers = map[Type]Layer{
	BecomeCreature:           LayerType,
	GrantKeyword:             LayerAbility,
	RemoveKeyword:            LayerAbility,
	RemoveAbilities:          LayerAbility,
	DefinePowerToughness:     LayerPTDefining,
	SetBasePowerToughness:    LayerPTSet,
	SetPowerToughness:        LayerPTSet,
	ModifyPowerToughness:     LayerPTModify,
	ModifyCost:               LayerRules,
	ExtraLandDrop:            LayerRules,
	SkipDraw:                 LayerRules,
	GrantPlayerShroud:        LayerRules,
	PreventDamageToPlayer:    LayerRules,
	AttackPowerCapByHandSize: LayerRules,
}

// DefaultLayer returns the layer an effect of type t is applied in.
func (t Type) DefaultLayer() Layer {
	if l, ok := defaultLayers[t]; ok {
		return l
	}
	return LayerRules
}

// Valid reports whether t is a known effect type.
func (t Type) Valid() bool {
	_, ok := defaultLayers[t]
	return ok
}

// Duration says how long an effect stays active.
type Duration string

const (
	// DurationWhileOnBattlefield lasts while the source is on the battlefield.
	// It is the default for static abilities.
	DurationWhileOnBattlefield Duration = "WhileOnBattlefield"
	DurationEndOfTurn          Duration = "EndOfTurn"
	DurationEndOfCombat        Duration = "EndOfCombat"
	DurationPermanent          Duration = "Permanent"
)

// Effect is a continuous effect. Catalogue entries hold unbound templates;
// Bind produces the instance stored on the game.
type Effect struct {
	ID           string   `yaml:"-" json:"id,omitempty"`
	SourceID     string   `yaml:"-" json:"source_id,omitempty"`
	ControllerID string   `yaml:"-" json:"controller_id,omitempty"`
	Type         Type     `yaml:"type" json:"type"`
	Layer        Layer    `yaml:"layer,omitempty" json:"layer,omitempty"`
	Timestamp    int64    `yaml:"-" json:"timestamp,omitempty"`
	Filter       Filter   `yaml:"filter,omitempty" json:"filter,omitempty"`
	Duration     Duration `yaml:"duration,omitempty" json:"duration,omitempty"`

	PowerMod        int      `yaml:"power_mod,omitempty" json:"power_mod,omitempty"`
	ToughnessMod    int      `yaml:"toughness_mod,omitempty" json:"toughness_mod,omitempty"`
	SetPower        int      `yaml:"set_power,omitempty" json:"set_power,omitempty"`
	SetToughness    int      `yaml:"set_toughness,omitempty" json:"set_toughness,omitempty"`
	Keyword         Keyword  `yaml:"keyword,omitempty" json:"keyword,omitempty"`
	CostMod         int      `yaml:"cost_mod,omitempty" json:"cost_mod,omitempty"`
	ExtraLandDrops  int      `yaml:"extra_land_drops,omitempty" json:"extra_land_drops,omitempty"`
	ProtectionColor string   `yaml:"protection_color,omitempty" json:"protection_color,omitempty"`
	AddTypes        []string `yaml:"add_types,omitempty" json:"add_types,omitempty"`
	AddSubtypes     []string `yaml:"add_subtypes,omitempty" json:"add_subtypes,omitempty"`
	// Count makes PowerMod/ToughnessMod per-unit for ModifyPowerToughness and
	// is added to SetPower/SetToughness for DefinePowerToughness.
	Count *CountSpec `yaml:"count,omitempty" json:"count,omitempty"`

	ControllerOnly bool `yaml:"controller_only,omitempty" json:"controller_only,omitempty"`
}

// UntilEndOfTurn reports whether cleanup removes the effect.
func (e *Effect) UntilEndOfTurn() bool {
	return e.Duration == DurationEndOfTurn
}

// OutlivesSource reports whether the effect persists after its source leaves.
func (e *Effect) OutlivesSource() bool {
	switch e.Duration {
	case DurationEndOfTurn, DurationEndOfCombat, DurationPermanent:
		return true
	}
	return false
}

// AppliesToPlayer is the player-level counterpart of Filter.Matches.
func (e *Effect) AppliesToPlayer(playerID string) bool {
	return e.Filter.MatchesPlayer(playerID, e)
}

func (e *Effect) String() string {
	return fmt.Sprintf("%s(%s) from %s@%d", e.Type, e.ID, e.SourceID, e.Timestamp)
}

// Bind instantiates template for a concrete source. The template is never
// modified; the result gets a fresh ID, the source and controller, the
// timestamp and a default layer and duration when unset.
func Bind(template Effect, sourceID, controllerID string, timestamp int64) Effect {
	e := template
	e.ID = uuid.NewString()
	e.SourceID = sourceID
	e.ControllerID = controllerID
	e.Timestamp = timestamp
	if e.Layer == 0 {
		e.Layer = e.Type.DefaultLayer()
	}
	if e.Duration == "" {
		e.Duration = DurationWhileOnBattlefield
	}
	e.Filter.CardIDs = append([]string(nil), template.Filter.CardIDs...)
	e.AddTypes = append([]string(nil), template.AddTypes...)
	e.AddSubtypes = append([]string(nil), template.AddSubtypes...)
	if template.Count != nil {
		c := *template.Count
		e.Count = &c
	}
	return e
}

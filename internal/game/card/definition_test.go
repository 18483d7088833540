package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

const goblinChief = `
name: Goblin Chieftain
cost: "{1}{R}{R}"
types: [Creature]
subtypes: [Goblin]
power: 2
toughness: 2
keywords: [haste]
statics:
  - type: ModifyPowerToughness
    power_mod: 1
    toughness_mod: 1
    filter: {subtype: Goblin, controller: you, exclude_self: true}
triggers:
  - when: SelfEntersBattlefield
    effect: {kind: DealDamage, to: opponent, amount: 1}
mana_abilities:
  - kind: dynamic
    produces: [R]
    count: {scope: all, subtype: Goblin}
`

func TestDefinitionYAML(t *testing.T) {
	var d Definition
	require.NoError(t, yaml.Unmarshal([]byte(goblinChief), &d))
	require.NoError(t, d.Validate())

	assert.Equal(t, 3, d.Cost.ManaValue())
	assert.Equal(t, 2, d.Cost.Colored[mana.Red])
	assert.True(t, d.IsCreature())
	assert.True(t, d.HasSubtype("goblin"))
	assert.True(t, d.HasKeyword(effects.Haste))
	assert.False(t, d.IsInstantSpeed())
	require.Len(t, d.Statics, 1)
	assert.Equal(t, effects.You, d.Statics[0].Filter.Controller)
	require.Len(t, d.Triggers, 1)
	assert.Equal(t, rules.SelfEntersBattlefield, d.Triggers[0].Condition)
	assert.Equal(t, effects.ScopeAll, d.ManaAbilities[0].Count.Scope)
}

func TestDefinitionValidate(t *testing.T) {
	cases := map[string]Definition{
		"no name":        {Types: []string{"Creature"}},
		"no types":       {Name: "X"},
		"bad trigger":    {Name: "X", Types: []string{"Creature"}, Triggers: []Trigger{{Condition: "Whenever", Effect: Effect{Kind: Tap}}}},
		"bad effect":     {Name: "X", Types: []string{"Instant"}, Spell: &Effect{Kind: DealDamage}},
		"bad mana":       {Name: "X", Types: []string{"Land"}, ManaAbilities: []ManaAbility{{Kind: ManaDynamic, Produces: []mana.Color{mana.Green}}}},
		"bad sequence":   {Name: "X", Types: []string{"Sorcery"}, Spell: &Effect{Kind: Sequence, Steps: []Effect{{Kind: "Boom"}}}},
		"bad continuous": {Name: "X", Types: []string{"Instant"}, Spell: &Effect{Kind: ApplyContinuous}},
		"unused spell target": {Name: "X", Types: []string{"Instant"},
			Target: &TargetSpec{Kind: TargetCreature},
			Spell:  &Effect{Kind: GainLife, Amount: 3}},
		"unused trigger target": {Name: "X", Types: []string{"Creature"}, Triggers: []Trigger{{
			Condition: rules.SelfEntersBattlefield,
			Target:    &TargetSpec{Kind: TargetPlayer},
			Effect:    Effect{Kind: DrawCards, Recipient: RecipientController, Amount: 1},
		}}},
		"unused ability target": {Name: "X", Types: []string{"Artifact"}, Activated: []ActivatedAbility{{
			TapCost: true,
			Target:  &TargetSpec{Kind: TargetPlayer},
			Effect:  Effect{Kind: GainLife, Recipient: RecipientController, Amount: 1},
		}}},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, d.Validate())
		})
	}
}

func TestTargetedDamageNeedsNoRecipient(t *testing.T) {
	shock := Definition{
		Name:   "Shock",
		Types:  []string{"Instant"},
		Target: &TargetSpec{Kind: TargetCreatureOrPlayer},
		Spell:  &Effect{Kind: DealDamage, Amount: 2},
	}
	assert.NoError(t, shock.Validate())
	assert.True(t, shock.Spell.UsesTarget())
	assert.False(t, (&Effect{Kind: GainLife, Amount: 2}).UsesTarget())
}

func TestEffectUsesTarget(t *testing.T) {
	e := Effect{Kind: Sequence, Steps: []Effect{
		{Kind: GainLife, Recipient: RecipientController, Amount: 2},
		{Kind: DealDamage, Recipient: RecipientTarget, Amount: 2},
	}}
	assert.True(t, e.UsesTarget())
	assert.False(t, e.Steps[0].UsesTarget())
}

package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

func TestOncePerTurnAbility(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toMain()
	shaman := g.battlefield(g.alice, &card.Definition{
		Name:      "Ember Shaman",
		Types:     []string{"Creature"},
		Power:     1,
		Toughness: 1,
		Activated: []card.ActivatedAbility{{
			Cost:        mana.MustParseCost("{R}"),
			OncePerTurn: true,
			Effect:      card.Effect{Kind: card.LoseLife, Recipient: card.RecipientOpponent, Amount: 1},
		}},
	})
	g.alice.ManaPool.Add(mana.Red, 2)
	act := Action{Kind: ActionActivateAbility, PlayerID: g.alice.ID, CardID: shaman.ID}

	g.mustDo(act)
	require.Equal(t, 1, g.e.state.Stack.Len())
	assert.Equal(t, 1, g.alice.ManaPool.Amount(mana.Red))
	g.rejected(act, CodeAbilityUsed)

	g.resolve()
	assert.Equal(t, 19, g.bob.Life)

	g.rejected(Action{Kind: ActionActivateAbility, PlayerID: g.alice.ID, CardID: shaman.ID, AbilityIndex: 3}, CodeNotFound)
}

func TestLoyaltyAbilities(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toMain()
	pw := g.battlefield(g.alice, &card.Definition{
		Name:    "Ajani, Mentor",
		Types:   []string{"Planeswalker"},
		Loyalty: 3,
		LoyaltyAbils: []card.LoyaltyAbility{
			{Loyalty: 1, Effect: card.Effect{Kind: card.GainLife, Recipient: card.RecipientController, Amount: 2}},
			{Loyalty: -4, Effect: card.Effect{Kind: card.DealDamage, Recipient: card.RecipientOpponent, Amount: 10}},
		},
	})
	plus := Action{Kind: ActionActivateLoyaltyAbility, PlayerID: g.alice.ID, CardID: pw.ID}
	minus := plus
	minus.AbilityIndex = 1

	g.rejected(minus, CodeCostUnmet)
	g.mustDo(plus)
	assert.Equal(t, 4, pw.Loyalty())

	g.resolve()
	assert.Equal(t, 22, g.alice.Life)
	g.rejected(plus, CodeAbilityUsed)
}

func TestFetchLandSearchesLibrary(t *testing.T) {
	g := newTestGame(t, []*card.Definition{mountain, island}, nil)
	g.toMain()
	wanted := g.alice.Library.Cards[1]
	fetch := g.battlefield(g.alice, &card.Definition{
		Name:  "Flooded Strand",
		Types: []string{"Land"},
		Fetch: &card.Fetch{LifeCost: 1, Subtypes: []string{"Island", "Plains"}},
	})
	g.ap.choose(ChooseSearch, wanted.ID)

	g.mustDo(Action{Kind: ActionActivateFetch, PlayerID: g.alice.ID, CardID: fetch.ID})
	assert.Equal(t, 19, g.alice.Life)
	assert.True(t, g.alice.Graveyard.Contains(fetch.ID))

	g.resolve()
	assert.True(t, g.alice.Battlefield.Contains(wanted.ID))
	assert.Equal(t, 1, g.alice.Library.Len())
	assert.True(t, g.logContains("Alice searches their library and puts Island onto the battlefield"))
}

func TestCyclingDrawsACard(t *testing.T) {
	g := newTestGame(t, deck(forest, 1), nil)
	g.toMain()
	cost := mana.MustParseCost("{1}")
	swell := g.hand(g.alice, &card.Definition{
		Name:        "Renewed Faith",
		Cost:        mana.MustParseCost("{2}{W}"),
		Types:       []string{"Instant"},
		CyclingCost: &cost,
		Spell:       &card.Effect{Kind: card.GainLife, Recipient: card.RecipientController, Amount: 6},
	})
	g.alice.ManaPool.Add(mana.Red, 1)

	g.mustDo(Action{Kind: ActionCycle, PlayerID: g.alice.ID, CardID: swell.ID})
	assert.True(t, g.alice.Graveyard.Contains(swell.ID))
	assert.Equal(t, 0, g.alice.ManaPool.Total())

	g.resolve()
	assert.Equal(t, 1, g.alice.Hand.Len())
	assert.Equal(t, 20, g.alice.Life)
}

func TestTransformUsesCatalogueBackFace(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toMain()
	back := creature("Insectile Aberration", "", 3, 2, effects.Flying)
	g.e.catalogue = testCatalogue{back.Name: back}
	front := creature("Delver of Secrets", "{U}", 1, 1)
	front.TransformInto = back.Name
	front.Activated = []card.ActivatedAbility{{Effect: card.Effect{Kind: card.Transform}}}
	delver := g.battlefield(g.alice, front)

	g.mustDo(Action{Kind: ActionActivateAbility, PlayerID: g.alice.ID, CardID: delver.ID})
	g.resolve()

	assert.Equal(t, "Insectile Aberration", delver.Name())
	assert.Equal(t, 3, delver.EffectivePower)
	assert.True(t, delver.HasKeyword(effects.Flying))

	g.e.moveCard(delver, rules.ZoneHand)
	assert.Equal(t, "Delver of Secrets", delver.Name())
}

func TestMoveCardActionKeepsOffTheStack(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toMain()
	c := g.hand(g.alice, forest)

	g.rejected(Action{Kind: ActionMoveCard, PlayerID: g.alice.ID, CardID: c.ID, From: rules.ZoneHand, To: rules.ZoneStack}, CodeWrongTiming)
	g.rejected(Action{Kind: ActionMoveCard, PlayerID: g.alice.ID, CardID: c.ID, From: rules.ZoneGraveyard, To: rules.ZoneExile}, CodeNotFound)

	g.mustDo(Action{Kind: ActionMoveCard, PlayerID: g.alice.ID, CardID: c.ID, From: rules.ZoneHand, To: rules.ZoneGraveyard})
	assert.True(t, g.alice.Graveyard.Contains(c.ID))
}

func TestEntersTheBattlefieldTrigger(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toMain()
	def := creature("Lone Missionary", "{1}{W}", 2, 1)
	def.Triggers = []card.Trigger{{
		Condition: rules.SelfEntersBattlefield,
		Effect:    card.Effect{Kind: card.GainLife, Recipient: card.RecipientController, Amount: 4},
	}}
	missionary := g.hand(g.alice, def)
	g.alice.ManaPool.Add(mana.White, 2)

	g.mustDo(castAction(missionary))
	g.resolve()
	require.Equal(t, 1, g.e.state.Stack.Len(), "the trigger waits on the stack")
	assert.Equal(t, 20, g.alice.Life)

	g.resolve()
	assert.Equal(t, 24, g.alice.Life)
	assert.True(t, g.logContains("Alice gains 4 life"))
}

func TestDiesTriggerUsesOwnerAsController(t *testing.T) {
	g := newTestGame(t, nil, deck(forest, 3))
	g.toMain()
	def := creature("Doomed Dissenter", "{1}{B}", 1, 1)
	def.Triggers = []card.Trigger{{
		Condition: rules.SelfDies,
		Effect:    card.Effect{Kind: card.DrawCards, Recipient: card.RecipientController, Amount: 1},
	}}
	victim := g.battlefield(g.bob, def)
	b := g.hand(g.alice, bolt())
	g.alice.ManaPool.Add(mana.Red, 1)

	a := castAction(b)
	a.TargetID = victim.ID
	g.mustDo(a)
	g.resolve()
	require.True(t, g.bob.Graveyard.Contains(victim.ID))
	require.Equal(t, 1, g.e.state.Stack.Len())

	g.resolve()
	assert.Equal(t, 1, g.bob.Hand.Len())
	assert.Equal(t, 0, g.alice.Hand.Len())
}

func TestAnthemEndsWhenSourceLeaves(t *testing.T) {
	g := newTestGame(t, nil, nil)
	bear := g.battlefield(g.alice, creature("Grizzly Bears", "{1}{G}", 2, 2))
	foe := g.battlefield(g.bob, creature("Grizzly Bears", "{1}{G}", 2, 2))
	anthem := g.battlefield(g.alice, &card.Definition{
		Name:  "Glorious Anthem",
		Types: []string{"Enchantment"},
		Statics: []effects.Effect{{
			Type:         effects.ModifyPowerToughness,
			PowerMod:     1,
			ToughnessMod: 1,
			Filter:       effects.Filter{CardType: "Creature", Controller: effects.You},
		}},
	})

	assert.Equal(t, 3, bear.EffectivePower)
	assert.Equal(t, 3, bear.EffectiveToughness)
	assert.Equal(t, 2, foe.EffectivePower)

	g.e.moveCard(anthem, rules.ZoneGraveyard)
	assert.Equal(t, 2, bear.EffectivePower)
	assert.Empty(t, g.e.state.ActiveEffects)
}

func TestDamageCountsGoblinsOnBothSides(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toMain()
	goblin := &card.Definition{Name: "Goblin Piker", Types: []string{"Creature"}, Subtypes: []string{"Goblin"}, Power: 2, Toughness: 1}
	g.battlefield(g.alice, goblin)
	g.battlefield(g.bob, goblin)
	g.battlefield(g.bob, goblin)
	warcry := g.hand(g.alice, &card.Definition{
		Name:   "Goblin War Cry",
		Cost:   mana.MustParseCost("{R}"),
		Types:  []string{"Sorcery"},
		Target: &card.TargetSpec{Kind: card.TargetPlayer},
		Spell: &card.Effect{
			Kind:        card.DealDamage,
			Recipient:   card.RecipientTarget,
			AmountCount: &effects.CountSpec{Scope: effects.ScopeAll, Subtype: "Goblin"},
		},
	})
	g.alice.ManaPool.Add(mana.Red, 1)

	a := castAction(warcry)
	a.TargetPlayerID = g.bob.ID
	g.mustDo(a)
	g.resolve()

	assert.Equal(t, 17, g.bob.Life)
}

func TestDamageCountsOnlyControllersGoblinsByDefault(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toMain()
	goblin := &card.Definition{Name: "Goblin Piker", Types: []string{"Creature"}, Subtypes: []string{"Goblin"}, Power: 2, Toughness: 1}
	g.battlefield(g.alice, goblin)
	g.battlefield(g.bob, goblin)
	g.battlefield(g.bob, goblin)
	warcry := g.hand(g.alice, &card.Definition{
		Name:   "Goblin War Cry",
		Cost:   mana.MustParseCost("{R}"),
		Types:  []string{"Sorcery"},
		Target: &card.TargetSpec{Kind: card.TargetPlayer},
		Spell: &card.Effect{
			Kind:        card.DealDamage,
			Recipient:   card.RecipientTarget,
			AmountCount: &effects.CountSpec{Subtype: "Goblin"},
		},
	})
	g.alice.ManaPool.Add(mana.Red, 1)

	a := castAction(warcry)
	a.TargetPlayerID = g.bob.ID
	g.mustDo(a)
	g.resolve()

	assert.Equal(t, 19, g.bob.Life)
}

func TestDynamicLandCountsGoblinsOnBothSides(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toMain()
	goblin := &card.Definition{Name: "Goblin Piker", Types: []string{"Creature"}, Subtypes: []string{"Goblin"}, Power: 2, Toughness: 1}
	g.battlefield(g.alice, goblin)
	g.battlefield(g.bob, goblin)
	g.battlefield(g.bob, goblin)
	den := g.battlefield(g.alice, &card.Definition{
		Name:  "Goblin Den",
		Types: []string{"Land"},
		ManaAbilities: []card.ManaAbility{{
			Kind:     card.ManaDynamic,
			Produces: []mana.Color{mana.Red},
			Count:    &effects.CountSpec{Scope: effects.ScopeAll, Subtype: "Goblin"},
		}},
	})

	g.mustDo(Action{Kind: ActionTapCard, PlayerID: g.alice.ID, CardID: den.ID})

	assert.True(t, den.Tapped)
	assert.Equal(t, 3, g.alice.ManaPool.Amount(mana.Red))
}

func TestTooManyRejectionsForceAPass(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.e.opts.MaxRejections = 3
	bad := Action{Kind: ActionCastSpell, CardID: "missing"}
	g.ap.queue(bad, bad, bad, bad)

	require.NoError(t, g.e.RunPriority(context.Background()))

	assert.True(t, g.logContains("Alice made too many illegal actions and passes"))
	assert.Len(t, g.ap.actions, 1)
}

func TestDelayedTriggerFiresOnce(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toMain()
	ritual := g.hand(g.alice, &card.Definition{
		Name:  "Delayed Blessing",
		Cost:  mana.MustParseCost("{W}"),
		Types: []string{"Sorcery"},
		Spell: &card.Effect{
			Kind:      card.RegisterDelayedTrigger,
			Recipient: card.RecipientController,
			FireOn:    rules.EventUpkeep,
			Delayed:   &card.Effect{Kind: card.GainLife, Recipient: card.RecipientController, Amount: 2},
		},
	})
	g.alice.ManaPool.Add(mana.White, 1)
	g.mustDo(castAction(ritual))
	g.resolve()
	require.Equal(t, 1, g.e.state.DelayedTriggers.Len())

	// Bob's upkeep is not the one it waits for.
	g.e.fireEvent(rules.NewEvent(rules.EventUpkeep, "", g.bob.ID))
	require.NoError(t, g.e.flushTriggers(context.Background()))
	assert.True(t, g.e.state.Stack.IsEmpty())
	assert.Equal(t, 1, g.e.state.DelayedTriggers.Len())

	g.e.fireEvent(rules.NewEvent(rules.EventUpkeep, "", g.alice.ID))
	require.NoError(t, g.e.flushTriggers(context.Background()))
	assert.Equal(t, 1, g.e.state.Stack.Len())
	assert.Equal(t, 0, g.e.state.DelayedTriggers.Len())

	g.e.fireEvent(rules.NewEvent(rules.EventUpkeep, "", g.alice.ID))
	require.NoError(t, g.e.flushTriggers(context.Background()))
	assert.Equal(t, 1, g.e.state.Stack.Len())

	g.resolve()
	assert.Equal(t, 22, g.alice.Life)
	assert.True(t, g.e.state.Stack.IsEmpty())
}

func TestSimultaneousTriggersStackActivePlayerFirst(t *testing.T) {
	g := newTestGame(t, nil, nil)
	watcher := &card.Definition{
		Name:  "Dawn Watcher",
		Types: []string{"Enchantment"},
		Triggers: []card.Trigger{{
			Condition: rules.EachUpkeep,
			Effect:    card.Effect{Kind: card.GainLife, Recipient: card.RecipientController, Amount: 1},
		}},
	}
	g.battlefield(g.bob, watcher)
	g.battlefield(g.alice, watcher)
	require.Equal(t, g.alice.ID, g.e.state.Turn.ActivePlayer())

	g.e.fireEvent(rules.NewEvent(rules.EventUpkeep, "", g.alice.ID))
	require.NoError(t, g.e.flushTriggers(context.Background()))

	entries := g.e.state.Stack.List()
	require.Len(t, entries, 2)
	assert.Equal(t, g.alice.ID, entries[0].Controller(), "active player's trigger goes on the stack first")
	assert.Equal(t, g.bob.ID, entries[1].Controller(), "and so resolves last")

	g.resolve()
	assert.Equal(t, 21, g.bob.Life)
	assert.Equal(t, 20, g.alice.Life)
}

func TestUpkeepTriggerFromGraveyard(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.graveyard(g.alice, &card.Definition{
		Name:      "Restless Spirit",
		Types:     []string{"Creature"},
		Power:     1,
		Toughness: 1,
		Triggers: []card.Trigger{{
			Condition: rules.UpkeepInGraveyard,
			Effect:    card.Effect{Kind: card.GainLife, Recipient: card.RecipientController, Amount: 1},
		}},
	})

	g.e.fireEvent(rules.NewEvent(rules.EventUpkeep, "", g.bob.ID))
	require.NoError(t, g.e.flushTriggers(context.Background()))
	assert.True(t, g.e.state.Stack.IsEmpty())

	g.e.fireEvent(rules.NewEvent(rules.EventUpkeep, "", g.alice.ID))
	require.NoError(t, g.e.flushTriggers(context.Background()))
	require.Equal(t, 1, g.e.state.Stack.Len())
	top, _ := g.e.state.Stack.Peek()
	assert.Equal(t, g.alice.ID, top.Controller())

	g.resolve()
	assert.Equal(t, 21, g.alice.Life)
}

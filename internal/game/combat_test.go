package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// toCombat moves the first turn to its combat phase.
func (g *testGame) toCombat() {
	for g.e.state.Phase() != rules.PhaseCombat {
		g.e.state.Turn.AdvancePhase()
	}
}

func (g *testGame) runCombat() {
	g.t.Helper()
	require.NoError(g.t, g.e.RunCombat(context.Background()))
}

func TestUnblockedAttackerDamagesDefender(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toCombat()
	att := g.battlefield(g.alice, creature("Trained Armodon", "{1}{G}{G}", 3, 3))
	g.ap.choose(ChooseAttackers, att.ID)

	g.runCombat()

	assert.Equal(t, 17, g.bob.Life)
	assert.True(t, att.Tapped)
	assert.False(t, att.Attacking)
	assert.Equal(t, rules.CombatNone, g.e.CombatStep())
	assert.True(t, g.logContains("Trained Armodon deals 3 damage to Bob"))
	assert.Equal(t, 3, g.bob.ThisTurn.LifeLost)
}

func TestBlockedAttackerKillsBlocker(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toCombat()
	att := g.battlefield(g.alice, creature("Trained Armodon", "{1}{G}{G}", 3, 3))
	blk := g.battlefield(g.bob, creature("Grizzly Bears", "{1}{G}", 2, 2))
	g.ap.choose(ChooseAttackers, att.ID)
	g.bp.choose(ChooseBlockers, blk.ID)

	g.runCombat()

	assert.Equal(t, 20, g.bob.Life)
	assert.True(t, g.bob.Graveyard.Contains(blk.ID))
	assert.True(t, g.alice.Battlefield.Contains(att.ID))
	assert.Equal(t, 2, att.Damage)
	assert.True(t, g.logContains("Grizzly Bears blocks Trained Armodon"))
}

func TestTrampleAssignsExcessToPlayer(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toCombat()
	att := g.battlefield(g.alice, creature("Craw Wurm", "{4}{G}{G}", 6, 4, effects.Trample))
	blk := g.battlefield(g.bob, creature("Grizzly Bears", "{1}{G}", 2, 2))
	g.ap.choose(ChooseAttackers, att.ID)
	g.bp.choose(ChooseBlockers, blk.ID)

	g.runCombat()

	assert.Equal(t, 16, g.bob.Life)
	assert.True(t, g.bob.Graveyard.Contains(blk.ID))
}

func TestDeathtouchAndLifelink(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toCombat()
	att := g.battlefield(g.alice, creature("Vampire Nighthawk", "{1}{B}{B}", 2, 3, effects.Deathtouch, effects.Lifelink))
	blk := g.battlefield(g.bob, creature("Colossal Dreadmaw", "{4}{G}{G}", 6, 6))
	g.ap.choose(ChooseAttackers, att.ID)
	g.bp.choose(ChooseBlockers, blk.ID)

	g.runCombat()

	assert.True(t, g.bob.Graveyard.Contains(blk.ID))
	assert.True(t, g.alice.Graveyard.Contains(att.ID))
	assert.Equal(t, 22, g.alice.Life)
}

func TestVigilanceAttackerStaysUntapped(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toCombat()
	att := g.battlefield(g.alice, creature("Serra Angel", "{3}{W}{W}", 4, 4, effects.Flying, effects.Vigilance))
	g.battlefield(g.bob, creature("Grizzly Bears", "{1}{G}", 2, 2))
	g.ap.choose(ChooseAttackers, att.ID)

	g.runCombat()

	assert.False(t, att.Tapped)
	assert.Equal(t, 16, g.bob.Life)
	assert.NotContains(t, g.bp.asked, ChooseBlockers, "a ground creature cannot block a flyer")
}

func TestSummoningSickCreatureCannotAttack(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toCombat()
	att := g.battlefield(g.alice, creature("Grizzly Bears", "{1}{G}", 2, 2))
	att.TurnEnteredBattlefield = g.e.state.TurnNumber()

	g.runCombat()

	assert.NotContains(t, g.ap.asked, ChooseAttackers)
	assert.Equal(t, 20, g.bob.Life)
	assert.True(t, g.logContains("No attackers are declared"))
}

func TestMustAttackCreatureIsForcedIn(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toCombat()
	g.battlefield(g.alice, creature("Juggernaut", "{4}", 5, 3, effects.MustAttack))

	g.runCombat()

	assert.Equal(t, 15, g.bob.Life)
}

func TestDamageAssignmentOrderAcrossBlockers(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toCombat()
	att := g.battlefield(g.alice, creature("Hill Giant", "{3}{R}", 3, 3))
	first := g.battlefield(g.bob, creature("Grizzly Bears", "{1}{G}", 2, 2))
	second := g.battlefield(g.bob, creature("Elvish Warrior", "{G}{G}", 2, 3))
	g.ap.choose(ChooseAttackers, att.ID)
	g.bp.choose(ChooseBlockers, first.ID, second.ID)
	g.ap.choose(ChooseDamageOrder, second.ID, first.ID)

	g.runCombat()

	// 3 damage: lethal 3 to the warrior first, nothing left for the bears.
	assert.True(t, g.bob.Graveyard.Contains(second.ID))
	assert.True(t, g.bob.Battlefield.Contains(first.ID))
	assert.True(t, g.alice.Graveyard.Contains(att.ID))
}

func TestSetDamageAssignmentOrderRequiresPermutation(t *testing.T) {
	g := newTestGame(t, nil, nil)
	require.Error(t, g.e.SetDamageAssignmentOrder("x", nil))

	g.e.state.combat = newCombatState(g.bob.ID)
	cs := g.e.state.combat
	cs.attackers = []string{"a"}
	cs.blockers["a"] = []string{"b1", "b2"}

	assert.Error(t, g.e.SetDamageAssignmentOrder("a", []string{"b1"}))
	assert.Error(t, g.e.SetDamageAssignmentOrder("a", []string{"b1", "b1"}))
	assert.Error(t, g.e.SetDamageAssignmentOrder("a", []string{"b1", "b3"}))
	require.NoError(t, g.e.SetDamageAssignmentOrder("a", []string{"b2", "b1"}))
	assert.Equal(t, []string{"b2", "b1"}, g.e.Blockers("a"))
}

func TestLandwalkMakesAttackerUnblockable(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toCombat()
	walker := creature("Bog Wraith", "{3}{B}", 3, 3)
	walker.Landwalk = "Swamp"
	att := g.battlefield(g.alice, walker)
	g.battlefield(g.bob, basicLand("Swamp", "Swamp", "B"))
	g.battlefield(g.bob, creature("Grizzly Bears", "{1}{G}", 2, 2))
	g.ap.choose(ChooseAttackers, att.ID)

	g.runCombat()

	assert.Equal(t, 17, g.bob.Life)
	assert.True(t, g.logContains("Bog Wraith can't be blocked (Swampwalk)"))
}

func TestAttackTriggerGoesOnTheStack(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toCombat()
	raider := creature("Goblin Raider", "{1}{R}", 2, 2)
	raider.Triggers = []card.Trigger{{
		Condition: rules.SelfAttacks,
		Effect:    card.Effect{Kind: card.LoseLife, Recipient: card.RecipientOpponent, Amount: 1},
	}}
	att := g.battlefield(g.alice, raider)
	g.ap.choose(ChooseAttackers, att.ID)

	g.runCombat()

	assert.Equal(t, 17, g.bob.Life)
	assert.True(t, g.logContains("Bob loses 1 life"))
}

func TestAttackPowerCappedByHandSize(t *testing.T) {
	g := newTestGame(t, nil, nil)
	g.toCombat()
	g.battlefield(g.bob, &card.Definition{
		Name:  "Propaganda of Hands",
		Types: []string{"Enchantment"},
		Statics: []effects.Effect{{
			Type:   effects.AttackPowerCapByHandSize,
			Filter: effects.Filter{CardType: "Creature", Controller: effects.Opponents},
		}},
	})
	big := g.battlefield(g.alice, creature("Hill Giant", "{3}{R}", 3, 3))
	g.ap.choose(ChooseAttackers, big.ID)

	g.runCombat()

	assert.Equal(t, 20, g.bob.Life)
	assert.False(t, big.Tapped)
	assert.True(t, g.logContains("Hill Giant cannot attack: power 3 exceeds 0"))
}

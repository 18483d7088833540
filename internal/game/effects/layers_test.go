package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculate_SetAppliesBeforeModifyRegardlessOfInsertion(t *testing.T) {
	bear := creature("bear", "alice", 2, 2)
	set := Bind(Effect{Type: SetPowerToughness, SetPower: 0, SetToughness: 1, Filter: Filter{CardIDs: []string{"bear"}}}, "src-a", "alice", 1)
	pump := Bind(Effect{Type: ModifyPowerToughness, PowerMod: 3, ToughnessMod: 3, Filter: Filter{CardIDs: []string{"bear"}}}, "src-b", "alice", 2)

	for name, active := range map[string][]Effect{
		"set first":  {set, pump},
		"pump first": {pump, set},
	} {
		t.Run(name, func(t *testing.T) {
			Recalculate([]*Object{bear}, active, newFakeBoard())
			assert.Equal(t, 3, bear.Power)
			assert.Equal(t, 4, bear.Toughness)
		})
	}
}

func TestRecalculate_LaterSetWinsAndTiesKeepInsertionOrder(t *testing.T) {
	bear := creature("bear", "alice", 2, 2)
	first := Bind(Effect{Type: SetPowerToughness, SetPower: 1, SetToughness: 1, Filter: Filter{CardIDs: []string{"bear"}}}, "a", "alice", 5)
	second := Bind(Effect{Type: SetPowerToughness, SetPower: 4, SetToughness: 4, Filter: Filter{CardIDs: []string{"bear"}}}, "b", "alice", 5)

	Recalculate([]*Object{bear}, []Effect{first, second}, newFakeBoard())
	assert.Equal(t, 4, bear.Power, "equal timestamps apply in insertion order")

	Recalculate([]*Object{bear}, []Effect{second, first}, newFakeBoard())
	assert.Equal(t, 1, bear.Power)
}

func TestRecalculate_IsIdempotent(t *testing.T) {
	bear := creature("bear", "alice", 2, 2)
	bear.CounterPower, bear.CounterToughness = 1, 1
	active := []Effect{
		Bind(Effect{Type: ModifyPowerToughness, PowerMod: 1, ToughnessMod: 0}, "anthem", "alice", 1),
		Bind(Effect{Type: GrantKeyword, Keyword: Flying}, "anthem", "alice", 1),
	}
	for i := 0; i < 3; i++ {
		Recalculate([]*Object{bear}, active, newFakeBoard())
	}
	assert.Equal(t, 4, bear.Power)
	assert.Equal(t, 3, bear.Toughness)
	assert.True(t, bear.Keywords.Has(Flying))
}

func TestRecalculate_CountersApplyAfterSet(t *testing.T) {
	bear := creature("bear", "alice", 2, 2)
	bear.CounterPower, bear.CounterToughness = 2, 2
	set := Bind(Effect{Type: SetBasePowerToughness, SetPower: 0, SetToughness: 1, Filter: Filter{Self: true}}, "bear", "alice", 1)

	Recalculate([]*Object{bear}, []Effect{set}, newFakeBoard())
	assert.Equal(t, 2, bear.Power)
	assert.Equal(t, 3, bear.Toughness)
}

func TestRecalculate_TypeLayerFeedsFilters(t *testing.T) {
	land := &Object{CardID: "land", ControllerID: "alice", BaseTypes: []string{"Land"}}
	animate := Bind(Effect{Type: BecomeCreature, SetPower: 3, SetToughness: 3, AddSubtypes: []string{"Elemental"}, Filter: Filter{CardIDs: []string{"land"}}, Duration: DurationEndOfTurn}, "spell", "alice", 2)
	anthem := Bind(Effect{Type: ModifyPowerToughness, PowerMod: 1, ToughnessMod: 1, Filter: Filter{CardType: "Creature", Controller: You}}, "lord", "alice", 1)

	Recalculate([]*Object{land}, []Effect{anthem, animate}, newFakeBoard())
	require.True(t, land.HasType("Creature"))
	assert.True(t, land.HasSubtype("elemental"))
	assert.Equal(t, 4, land.Power)
}

func TestRecalculate_RemoveAbilitiesAfterGrant(t *testing.T) {
	bird := creature("bird", "alice", 1, 1)
	bird.BaseKeywords = NewKeywordSet(Flying)
	grant := Bind(Effect{Type: GrantKeyword, Keyword: Haste}, "x", "alice", 1)
	strip := Bind(Effect{Type: RemoveAbilities, Filter: Filter{CardIDs: []string{"bird"}}}, "y", "bob", 2)

	Recalculate([]*Object{bird}, []Effect{strip, grant}, newFakeBoard())
	assert.Empty(t, bird.Keywords)
	assert.True(t, bird.AbilitiesRemoved)
	assert.True(t, bird.BaseKeywords.Has(Flying), "base keywords are never mutated")
}

func TestRecalculate_DynamicCountAcrossBattlefields(t *testing.T) {
	board := newFakeBoard()
	board.perms = []fakePermanent{goblin("alice"), goblin("bob"), goblin("bob")}
	chief := creature("chief", "alice", 0, 0)
	cda := Bind(Effect{Type: DefinePowerToughness, Filter: Filter{Self: true}, Count: &CountSpec{Scope: ScopeAll, Subtype: "Goblin"}}, "chief", "alice", 1)

	Recalculate([]*Object{chief}, []Effect{cda}, board)
	assert.Equal(t, 3, chief.Power)
	assert.Equal(t, 3, chief.Toughness)

	board.perms = board.perms[:1]
	Recalculate([]*Object{chief}, []Effect{cda}, board)
	assert.Equal(t, 1, chief.Power, "counts are evaluated on every pass")
}

func TestPrune_DropsEffectsOfMissingSources(t *testing.T) {
	board := newFakeBoard()
	board.present["lord"] = true
	active := []Effect{
		Bind(Effect{Type: ModifyPowerToughness, PowerMod: 1}, "lord", "alice", 1),
		Bind(Effect{Type: ModifyPowerToughness, PowerMod: 1}, "gone", "alice", 2),
		Bind(Effect{Type: ModifyPowerToughness, PowerMod: 3, Duration: DurationEndOfTurn}, "instant", "alice", 3),
		Bind(Effect{Type: SkipDraw, Duration: DurationPermanent}, "emblem", "alice", 4),
	}

	kept := Prune(active, board)
	require.Len(t, kept, 3)
	for _, e := range kept {
		assert.NotEqual(t, "gone", e.SourceID)
	}
}

func TestBind_DoesNotShareTemplateState(t *testing.T) {
	tmpl := Effect{Type: ModifyPowerToughness, Filter: Filter{CardIDs: []string{"a"}}, Count: &CountSpec{Subtype: "Elf"}}
	e := Bind(tmpl, "src", "alice", 7)
	e.Filter.CardIDs[0] = "b"
	e.Count.Subtype = "Goblin"

	assert.Equal(t, "a", tmpl.Filter.CardIDs[0])
	assert.Equal(t, "Elf", tmpl.Count.Subtype)
	assert.Equal(t, LayerPTModify, e.Layer)
	assert.Equal(t, DurationWhileOnBattlefield, e.Duration)
	assert.NotEmpty(t, e.ID)
}

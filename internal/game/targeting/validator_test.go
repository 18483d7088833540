package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

type fakeState struct {
	cards   []CardInfo
	players []PlayerInfo
}

func (f *fakeState) FindCardForTarget(id string) (CardInfo, bool) {
	for _, c := range f.cards {
		if c.ID == id {
			return c, true
		}
	}
	return CardInfo{}, false
}

func (f *fakeState) FindPlayerForTarget(id string) (PlayerInfo, bool) {
	for _, p := range f.players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerInfo{}, false
}

func (f *fakeState) CardsForTarget() []CardInfo     { return f.cards }
func (f *fakeState) PlayersForTarget() []PlayerInfo { return f.players }

func newFakeState() *fakeState {
	return &fakeState{
		cards: []CardInfo{
			{ID: "bears", Name: "Grizzly Bears", Zone: rules.ZoneBattlefield, ControllerID: "alice", OwnerID: "alice",
				Types: []string{"Creature"}, Subtypes: []string{"Bear"}, Keywords: effects.NewKeywordSet()},
			{ID: "troll", Name: "Troll", Zone: rules.ZoneBattlefield, ControllerID: "bob", OwnerID: "bob",
				Types: []string{"Creature"}, Keywords: effects.NewKeywordSet(effects.Hexproof)},
			{ID: "forest", Name: "Forest", Zone: rules.ZoneBattlefield, ControllerID: "bob", OwnerID: "bob",
				Types: []string{"Land"}, Keywords: effects.NewKeywordSet()},
			{ID: "bolt", Name: "Lightning Bolt", Zone: rules.ZoneStack, ControllerID: "bob", OwnerID: "bob",
				Types: []string{"Instant"}, Keywords: effects.NewKeywordSet()},
			{ID: "dead", Name: "Dead Elf", Zone: rules.ZoneGraveyard, ControllerID: "bob", OwnerID: "bob",
				Types: []string{"Creature"}, Keywords: effects.NewKeywordSet()},
		},
		players: []PlayerInfo{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}},
	}
}

func TestCandidatesByKind(t *testing.T) {
	v := NewValidator(newFakeState())

	cards, players := v.Candidates(card.TargetSpec{Kind: card.TargetCreature}, "alice")
	assert.Equal(t, []string{"bears"}, cards, "hexproof troll is not targetable by alice")
	assert.Empty(t, players)

	cards, _ = v.Candidates(card.TargetSpec{Kind: card.TargetCreature}, "bob")
	assert.Equal(t, []string{"bears", "troll"}, cards)

	cards, players = v.Candidates(card.TargetSpec{Kind: card.TargetCreatureOrPlayer}, "bob")
	assert.Equal(t, []string{"bears", "troll"}, cards)
	assert.Equal(t, []string{"alice", "bob"}, players)

	cards, _ = v.Candidates(card.TargetSpec{Kind: card.TargetSpell}, "alice")
	assert.Equal(t, []string{"bolt"}, cards)

	cards, _ = v.Candidates(card.TargetSpec{Kind: card.TargetGraveyardCard}, "alice")
	assert.Equal(t, []string{"dead"}, cards)

	cards, _ = v.Candidates(card.TargetSpec{Kind: card.TargetPermanent, CardType: "Land"}, "alice")
	assert.Equal(t, []string{"forest"}, cards)
}

func TestControllerScope(t *testing.T) {
	v := NewValidator(newFakeState())

	_, players := v.Candidates(card.TargetSpec{Kind: card.TargetPlayer, Controller: effects.Opponents}, "alice")
	assert.Equal(t, []string{"bob"}, players)

	cards, _ := v.Candidates(card.TargetSpec{Kind: card.TargetCreature, Controller: effects.You}, "bob")
	assert.Equal(t, []string{"troll"}, cards)
}

func TestValidateRejectsWithSentinel(t *testing.T) {
	state := newFakeState()
	state.players[1].Shroud = true
	v := NewValidator(state)

	require.NoError(t, v.ValidateCard("bears", card.TargetSpec{Kind: card.TargetCreature, Subtype: "Bear"}, "bob"))
	assert.ErrorIs(t, v.ValidateCard("forest", card.TargetSpec{Kind: card.TargetCreature}, "alice"), ErrIllegalTarget)
	assert.ErrorIs(t, v.ValidateCard("missing", card.TargetSpec{Kind: card.TargetPermanent}, "alice"), ErrIllegalTarget)
	assert.ErrorIs(t, v.ValidatePlayer("bob", card.TargetSpec{Kind: card.TargetPlayer}, "alice"), ErrIllegalTarget)
	assert.ErrorIs(t, v.ValidatePlayer("alice", card.TargetSpec{Kind: card.TargetCreature}, "alice"), ErrIllegalTarget)
	assert.True(t, v.HasLegalTarget(card.TargetSpec{Kind: card.TargetPlayer}, "alice"))
	assert.False(t, v.HasLegalTarget(card.TargetSpec{Kind: card.TargetPlayer, Controller: effects.Opponents}, "alice"))
}

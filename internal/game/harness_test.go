package game

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// scriptedProvider answers from queues and falls back to passing, keeping,
// choosing the first legal target and declining everything else.
type scriptedProvider struct {
	actions   []scriptedAction
	targets   []*TargetInfo
	cards     map[ChoiceReason][][]string
	colors    []mana.Color
	generic   []map[mana.Color]int
	mulligans []MulliganDecision

	asked []ChoiceReason
}

// scriptedAction is sent the first time its player gets priority in phase,
// or at the first chance when anyPhase is set.
type scriptedAction struct {
	phase    rules.Phase
	anyPhase bool
	action   Action
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{cards: make(map[ChoiceReason][][]string)}
}

func (sp *scriptedProvider) queue(a ...Action) *scriptedProvider {
	for _, act := range a {
		sp.actions = append(sp.actions, scriptedAction{anyPhase: true, action: act})
	}
	return sp
}

func (sp *scriptedProvider) queueIn(phase rules.Phase, a ...Action) *scriptedProvider {
	for _, act := range a {
		sp.actions = append(sp.actions, scriptedAction{phase: phase, action: act})
	}
	return sp
}

func (sp *scriptedProvider) choose(reason ChoiceReason, ids ...string) *scriptedProvider {
	sp.cards[reason] = append(sp.cards[reason], ids)
	return sp
}

func (sp *scriptedProvider) GetAction(_ context.Context, state *GameState, playerID string) (Action, error) {
	if len(sp.actions) == 0 {
		return Pass(playerID), nil
	}
	next := sp.actions[0]
	if !next.anyPhase && next.phase != state.Phase() {
		return Pass(playerID), nil
	}
	sp.actions = sp.actions[1:]
	a := next.action
	if a.PlayerID == "" {
		a.PlayerID = playerID
	}
	return a, nil
}

func (sp *scriptedProvider) ChooseTarget(_ context.Context, _ *GameState, _ string, req TargetRequest) (*TargetInfo, error) {
	if len(sp.targets) > 0 {
		t := sp.targets[0]
		sp.targets = sp.targets[1:]
		return t, nil
	}
	if len(req.CardIDs) > 0 {
		return &TargetInfo{CardID: req.CardIDs[0]}, nil
	}
	if len(req.Players) > 0 {
		return &TargetInfo{PlayerID: req.Players[0]}, nil
	}
	return nil, nil
}

func (sp *scriptedProvider) ChooseCards(_ context.Context, _ *GameState, _ string, choice CardChoice) ([]*GameCard, error) {
	sp.asked = append(sp.asked, choice.Reason)
	q := sp.cards[choice.Reason]
	if len(q) == 0 {
		return nil, nil
	}
	ids := q[0]
	sp.cards[choice.Reason] = q[1:]
	var out []*GameCard
	for _, id := range ids {
		if i := slices.IndexFunc(choice.Candidates, func(c *GameCard) bool { return c.ID == id }); i >= 0 {
			out = append(out, choice.Candidates[i])
		}
	}
	return out, nil
}

func (sp *scriptedProvider) ChooseManaColor(_ context.Context, _ string, _ []mana.Color) (*mana.Color, error) {
	if len(sp.colors) == 0 {
		return nil, nil
	}
	c := sp.colors[0]
	sp.colors = sp.colors[1:]
	return &c, nil
}

func (sp *scriptedProvider) ChooseGenericPayment(_ context.Context, _ string, _ int, _ map[mana.Color]int) (map[mana.Color]int, error) {
	if len(sp.generic) == 0 {
		return nil, nil
	}
	g := sp.generic[0]
	sp.generic = sp.generic[1:]
	return g, nil
}

func (sp *scriptedProvider) GetMulliganDecision(_ context.Context, _ string, _ []*GameCard, _ int) (MulliganDecision, error) {
	if len(sp.mulligans) == 0 {
		return Keep, nil
	}
	d := sp.mulligans[0]
	sp.mulligans = sp.mulligans[1:]
	return d, nil
}

// testGame wraps an engine with two scripted seats, alice going first.
type testGame struct {
	t     *testing.T
	e     *Engine
	alice *Player
	bob   *Player
	ap    *scriptedProvider
	bp    *scriptedProvider
}

func newTestGame(t *testing.T, aliceDeck, bobDeck []*card.Definition) *testGame {
	t.Helper()
	ap, bp := newScriptedProvider(), newScriptedProvider()
	opts := DefaultOptions()
	opts.ShuffleSeed = 42
	e, err := NewEngine([]PlayerConfig{
		{ID: "alice", Name: "Alice", Deck: aliceDeck, Provider: ap},
		{ID: "bob", Name: "Bob", Deck: bobDeck, Provider: bp},
	}, opts, testCatalogue{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	g := &testGame{t: t, e: e, ap: ap, bp: bp}
	g.alice, _ = e.state.Player("alice")
	g.bob, _ = e.state.Player("bob")
	return g
}

// toMain moves the first turn to its first main phase without running the
// earlier steps.
func (g *testGame) toMain() {
	for g.e.state.Phase() != rules.PhaseMain1 {
		g.e.state.Turn.AdvancePhase()
	}
}

// battlefield puts a new permanent straight onto p's battlefield. It is not
// summoning sick.
func (g *testGame) battlefield(p *Player, def *card.Definition) *GameCard {
	c := newGameCard(def, p.ID)
	g.e.moveCard(c, rules.ZoneBattlefield)
	c.TurnEnteredBattlefield = 0
	return c
}

func (g *testGame) hand(p *Player, def *card.Definition) *GameCard {
	c := newGameCard(def, p.ID)
	g.e.moveCard(c, rules.ZoneHand)
	return c
}

func (g *testGame) graveyard(p *Player, def *card.Definition) *GameCard {
	c := newGameCard(def, p.ID)
	g.e.moveCard(c, rules.ZoneGraveyard)
	return c
}

func (g *testGame) do(a Action) error {
	return g.e.ExecuteAction(context.Background(), a)
}

func (g *testGame) mustDo(a Action) {
	g.t.Helper()
	require.NoError(g.t, g.do(a))
}

func (g *testGame) rejected(a Action, code RejectCode) {
	g.t.Helper()
	err := g.do(a)
	rej, ok := IsRejected(err)
	require.True(g.t, ok, "expected rejection %s, got %v", code, err)
	require.Equal(g.t, code, rej.Code)
}

// resolve resolves the top of the stack the way two passes in a row would.
func (g *testGame) resolve() {
	g.t.Helper()
	require.NoError(g.t, g.e.resolveTop(context.Background()))
	require.NoError(g.t, g.e.settle(context.Background()))
}

func (g *testGame) logContains(line string) bool {
	return slices.Contains(g.e.state.Log, line)
}

type testCatalogue map[string]*card.Definition

func (c testCatalogue) Lookup(name string) (*card.Definition, bool) {
	d, ok := c[name]
	return d, ok
}

func basicLand(name, subtype string, col mana.Color) *card.Definition {
	return &card.Definition{
		Name:          name,
		Types:         []string{"Land"},
		Subtypes:      []string{subtype},
		ManaAbilities: []card.ManaAbility{{Kind: card.ManaFixed, Produces: []mana.Color{col}}},
	}
}

var (
	forest   = basicLand("Forest", "Forest", mana.Green)
	mountain = basicLand("Mountain", "Mountain", mana.Red)
	island   = basicLand("Island", "Island", mana.Blue)
)

func creature(name, cost string, power, toughness int, kws ...effects.Keyword) *card.Definition {
	return &card.Definition{
		Name:      name,
		Cost:      mana.MustParseCost(cost),
		Types:     []string{"Creature"},
		Power:     power,
		Toughness: toughness,
		Keywords:  kws,
	}
}

func bolt() *card.Definition {
	return &card.Definition{
		Name:   "Lightning Bolt",
		Cost:   mana.MustParseCost("{R}"),
		Types:  []string{"Instant"},
		Target: &card.TargetSpec{Kind: card.TargetCreatureOrPlayer},
		Spell:  &card.Effect{Kind: card.DealDamage, Recipient: card.RecipientTarget, Amount: 3},
	}
}

func deck(def *card.Definition, n int) []*card.Definition {
	out := make([]*card.Definition, n)
	for i := range out {
		out[i] = def
	}
	return out
}

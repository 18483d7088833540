package remote

import (
	"github.com/magefree/mage-rules-go/internal/game"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// logTail is how many game log lines a view carries.
const logTail = 20

// CardView is what a client sees of one card.
type CardView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Types      []string `json:"types"`
	Subtypes   []string `json:"subtypes,omitempty"`
	Power      int      `json:"power,omitempty"`
	Toughness  int      `json:"toughness,omitempty"`
	Loyalty    int      `json:"loyalty,omitempty"`
	Zone       string   `json:"zone"`
	Tapped     bool     `json:"tapped,omitempty"`
	Attacking  bool     `json:"attacking,omitempty"`
	Blocking   bool     `json:"blocking,omitempty"`
	Damage     int      `json:"damage,omitempty"`
	Controller string   `json:"controller"`
	Owner      string   `json:"owner"`
}

// PlayerView is one seat. Hand is only filled for the viewer.
type PlayerView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Life           int        `json:"life"`
	ManaPool       string     `json:"mana_pool"`
	LibraryCount   int        `json:"library_count"`
	HandCount      int        `json:"hand_count"`
	Hand           []CardView `json:"hand,omitempty"`
	Battlefield    []CardView `json:"battlefield"`
	Graveyard      []CardView `json:"graveyard"`
	Exile          []CardView `json:"exile"`
	GraveyardCount int        `json:"graveyard_count"`
}

// StackItemView is one pending spell or ability, top last.
type StackItemView struct {
	ID          string `json:"id"`
	Controller  string `json:"controller"`
	Description string `json:"description"`
}

// GameView is a snapshot of the game from one player's seat.
type GameView struct {
	GameID         string          `json:"game_id"`
	Viewer         string          `json:"viewer"`
	ActivePlayer   string          `json:"active_player"`
	PriorityPlayer string          `json:"priority_player"`
	Phase          string          `json:"phase"`
	Turn           int             `json:"turn"`
	MidCast        bool            `json:"mid_cast"`
	Players        []PlayerView    `json:"players"`
	Stack          []StackItemView `json:"stack"`
	Log            []string        `json:"log"`
	GameOver       bool            `json:"game_over"`
	Winner         string          `json:"winner,omitempty"`
	Draw           bool            `json:"draw,omitempty"`
}

func cardView(c *game.GameCard) CardView {
	return CardView{
		ID:         c.ID,
		Name:       c.Name(),
		Types:      c.Types,
		Subtypes:   c.Subtypes,
		Power:      c.EffectivePower,
		Toughness:  c.EffectiveToughness,
		Loyalty:    c.Loyalty(),
		Zone:       string(c.Zone),
		Tapped:     c.Tapped,
		Attacking:  c.Attacking,
		Blocking:   c.Blocking,
		Damage:     c.Damage,
		Controller: c.ControllerID,
		Owner:      c.OwnerID,
	}
}

func cardViews(cards []*game.GameCard) []CardView {
	out := make([]CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardView(c))
	}
	return out
}

// NewView snapshots s for viewer. The opponent's hand and both libraries are
// hidden.
func NewView(s *game.GameState, viewer string) GameView {
	v := GameView{
		GameID:         s.ID,
		Viewer:         viewer,
		ActivePlayer:   s.Turn.ActivePlayer(),
		PriorityPlayer: s.Turn.PriorityPlayer(),
		Phase:          s.Phase().String(),
		Turn:           s.TurnNumber(),
		MidCast:        s.IsMidCast(),
		GameOver:       s.IsGameOver,
		Winner:         s.Winner,
		Draw:           s.IsDraw,
	}
	for _, p := range s.Players {
		pv := PlayerView{
			ID:             p.ID,
			Name:           p.Name,
			Life:           p.Life,
			ManaPool:       p.ManaPool.String(),
			LibraryCount:   p.Library.Len(),
			HandCount:      p.Hand.Len(),
			Battlefield:    cardViews(p.Battlefield.Cards),
			Graveyard:      cardViews(p.Graveyard.Cards),
			Exile:          cardViews(p.Exile.Cards),
			GraveyardCount: p.Graveyard.Len(),
		}
		if p.ID == viewer {
			pv.Hand = cardViews(p.Zone(rules.ZoneHand).Cards)
		}
		v.Players = append(v.Players, pv)
	}
	for _, entry := range s.Stack.List() {
		v.Stack = append(v.Stack, StackItemView{
			ID:          entry.EntryID(),
			Controller:  entry.Controller(),
			Description: entry.Describe(),
		})
	}
	start := max(len(s.Log)-logTail, 0)
	v.Log = append([]string(nil), s.Log[start:]...)
	return v
}

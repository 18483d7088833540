package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"github.com/magefree/mage-rules-go/internal/game/watchers"
)

// GameCard is one physical card in a game. Its ID never changes, including
// across zone changes and transformation.
type GameCard struct {
	ID           string
	OwnerID      string
	ControllerID string
	Def          *card.Definition
	Zone         rules.Zone

	BasePower     int
	BaseToughness int

	// Effective characteristics. Only RecalculateState writes these.
	EffectivePower     int
	EffectiveToughness int
	Types              []string
	Subtypes           []string
	ActiveKeywords     effects.KeywordSet
	AbilitiesRemoved   bool

	Counters *counters.Counters

	Tapped    bool
	Attacking bool
	Blocking  bool

	Damage           int
	DeathtouchDamage bool
	DamageThisTurn   int

	TurnEnteredBattlefield int
	ExiledCardIDs          []string
	Transformed            bool

	// AbilityUsedTurn maps an activated ability index to the turn it was last
	// activated; LoyaltyUsedTurn does the same for the planeswalker as a whole.
	AbilityUsedTurn map[int]int
	LoyaltyUsedTurn int

	front *card.Definition
}

func newGameCard(def *card.Definition, ownerID string) *GameCard {
	c := &GameCard{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		ControllerID:    ownerID,
		Counters:        counters.New(),
		AbilityUsedTurn: make(map[int]int),
	}
	c.front = def
	c.setDefinition(def)
	return c
}

func (c *GameCard) setDefinition(def *card.Definition) {
	c.Def = def
	c.BasePower = def.Power
	c.BaseToughness = def.Toughness
	c.resetCharacteristics()
}

// resetCharacteristics copies printed values into the effective fields. Cards
// off the battlefield keep their printed characteristics.
func (c *GameCard) resetCharacteristics() {
	c.EffectivePower = c.BasePower
	c.EffectiveToughness = c.BaseToughness
	c.Types = slices.Clone(c.Def.Types)
	c.Subtypes = slices.Clone(c.Def.Subtypes)
	c.ActiveKeywords = effects.NewKeywordSet(c.Def.Keywords...)
	c.AbilitiesRemoved = false
}

// Name returns the printed name of the card's current face.
func (c *GameCard) Name() string {
	return c.Def.Name
}

func (c *GameCard) HasType(t string) bool {
	return slices.ContainsFunc(c.Types, func(s string) bool { return strings.EqualFold(s, t) })
}

func (c *GameCard) HasSubtype(t string) bool {
	return slices.ContainsFunc(c.Subtypes, func(s string) bool { return strings.EqualFold(s, t) })
}

func (c *GameCard) HasKeyword(k effects.Keyword) bool {
	return c.ActiveKeywords.Has(k)
}

func (c *GameCard) IsCreature() bool { return c.HasType("Creature") }

// Loyalty returns the loyalty counters on a planeswalker.
func (c *GameCard) Loyalty() int {
	return c.Counters.Count(counters.Loyalty)
}

// SummoningSick reports whether the creature came under its controller's
// control this turn and lacks haste.
func (c *GameCard) SummoningSick(turn int) bool {
	return c.TurnEnteredBattlefield == turn && !c.HasKeyword(effects.Haste)
}

func (c *GameCard) String() string {
	return fmt.Sprintf("%s (%s)", c.Def.Name, c.ID)
}

// Zone is an ordered pile of cards. For libraries the top is the end.
type Zone struct {
	Name  rules.Zone
	Cards []*GameCard
}

func newZone(name rules.Zone) *Zone {
	return &Zone{Name: name}
}

func (z *Zone) Len() int { return len(z.Cards) }

// Top returns the last card, or nil when the zone is empty.
func (z *Zone) Top() *GameCard {
	if len(z.Cards) == 0 {
		return nil
	}
	return z.Cards[len(z.Cards)-1]
}

func (z *Zone) Find(id string) *GameCard {
	for _, c := range z.Cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (z *Zone) Contains(id string) bool {
	return z.Find(id) != nil
}

func (z *Zone) add(c *GameCard) {
	c.Zone = z.Name
	z.Cards = append(z.Cards, c)
}

func (z *Zone) addBottom(c *GameCard) {
	c.Zone = z.Name
	z.Cards = append([]*GameCard{c}, z.Cards...)
}

func (z *Zone) remove(id string) bool {
	for i, c := range z.Cards {
		if c.ID == id {
			z.Cards = slices.Delete(z.Cards, i, i+1)
			return true
		}
	}
	return false
}

// Emblem is a permanent effect source that never leaves the game.
type Emblem struct {
	ID      string
	OwnerID string
	Effect  effects.Effect
}

// HistoryKind tags an undoable action.
type HistoryKind int

const (
	HistoryTapForMana HistoryKind = iota
	HistoryCast
)

// HistoryEntry records enough of an action to invert it.
type HistoryEntry struct {
	Kind     HistoryKind
	CardID   string
	EntryID  string
	Mana     map[mana.Color]int
	Delved   []string
	LifePaid int
}

// Player is one of the two seats.
type Player struct {
	ID   string
	Name string

	Library     *Zone
	Hand        *Zone
	Battlefield *Zone
	Graveyard   *Zone
	Exile       *Zone

	ManaPool *mana.Pool
	Life     int

	// ThisTurn holds the per-turn counters kept by the turn watcher. They
	// reset at the start of this player's turn.
	ThisTurn *watchers.TurnStats

	Emblems       []Emblem
	History       []HistoryEntry
	Lost          bool
	MulliganCount int
}

func newPlayer(id, name string, life int) *Player {
	return &Player{
		ID:          id,
		Name:        name,
		Library:     newZone(rules.ZoneLibrary),
		Hand:        newZone(rules.ZoneHand),
		Battlefield: newZone(rules.ZoneBattlefield),
		Graveyard:   newZone(rules.ZoneGraveyard),
		Exile:       newZone(rules.ZoneExile),
		ManaPool:    mana.NewPool(),
		Life:        life,
		ThisTurn:    &watchers.TurnStats{},
	}
}

// Zone returns the player's zone with the given name. The stack is shared and
// not returned here.
func (p *Player) Zone(name rules.Zone) *Zone {
	switch name {
	case rules.ZoneLibrary:
		return p.Library
	case rules.ZoneHand:
		return p.Hand
	case rules.ZoneBattlefield:
		return p.Battlefield
	case rules.ZoneGraveyard:
		return p.Graveyard
	case rules.ZoneExile:
		return p.Exile
	}
	return nil
}

func (p *Player) zones() []*Zone {
	return []*Zone{p.Library, p.Hand, p.Battlefield, p.Graveyard, p.Exile}
}

// pendingCast is the spell being paid for while the payment machine is
// MidCast.
type pendingCast struct {
	card     *GameCard
	target   *TargetInfo
	paid     map[mana.Color]int
	delved   []string
	lifePaid int
	undoable bool
}

// GameState is everything the rules engine knows about one game.
type GameState struct {
	ID      string
	Players []*Player

	Stack *rules.StackManager
	Turn  *rules.TurnManager

	ActiveEffects   []effects.Effect
	DelayedTriggers *rules.DelayedTriggerQueue
	Payment         mana.Payment
	ExtraTurns      []string
	Log             []string

	// LastCausedBy is the player behind the action or resolution in progress.
	// Trigger conditions read it through Event.CausedBy.
	LastCausedBy string

	IsGameOver bool
	Winner     string
	IsDraw     bool

	started        bool
	combat         *combatState
	stackCards     map[string]*GameCard
	pending        *pendingCast
	pendingTrigger []pendingTrigger
	timestamp      int64
	turnWatcher    *watchers.TurnWatcher
}

func newGameState(players []*Player) *GameState {
	s := &GameState{
		ID:              ulid.Make().String(),
		Players:         players,
		Stack:           rules.NewStackManager(),
		Turn:            rules.NewTurnManager(players[0].ID),
		DelayedTriggers: rules.NewDelayedTriggerQueue(),
		stackCards:      make(map[string]*GameCard),
		turnWatcher:     watchers.NewTurnWatcher(),
	}
	for _, p := range players {
		p.ThisTurn = s.turnWatcher.Track(p.ID)
	}
	return s
}

// Player returns the player with the given ID.
func (s *GameState) Player(id string) (*Player, error) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, id)
}

// Opponent returns the other player.
func (s *GameState) Opponent(id string) *Player {
	for _, p := range s.Players {
		if p.ID != id {
			return p
		}
	}
	return nil
}

func (s *GameState) ActivePlayer() *Player {
	p, _ := s.Player(s.Turn.ActivePlayer())
	return p
}

func (s *GameState) Phase() rules.Phase { return s.Turn.CurrentPhase() }

func (s *GameState) TurnNumber() int { return s.Turn.TurnNumber() }

// NextTimestamp returns a fresh effect timestamp. Timestamps only increase.
func (s *GameState) NextTimestamp() int64 {
	s.timestamp++
	return s.timestamp
}

// IsMidCast reports whether a spell is waiting for payment.
func (s *GameState) IsMidCast() bool {
	return s.Payment.IsMidCast()
}

// MidCast returns the outstanding payment record, or nil.
func (s *GameState) MidCast() *mana.MidCast {
	return s.Payment.Pending()
}

// FindCard locates a card in any player zone or on the stack.
func (s *GameState) FindCard(id string) (*GameCard, bool) {
	if c, ok := s.stackCards[id]; ok {
		return c, true
	}
	for _, p := range s.Players {
		for _, z := range p.zones() {
			if c := z.Find(id); c != nil {
				return c, true
			}
		}
	}
	return nil, false
}

// Permanent returns the battlefield card with the given ID.
func (s *GameState) Permanent(id string) (*GameCard, bool) {
	for _, p := range s.Players {
		if c := p.Battlefield.Find(id); c != nil {
			return c, true
		}
	}
	return nil, false
}

// Battlefield returns every permanent, the first player's first.
func (s *GameState) Battlefield() []*GameCard {
	var out []*GameCard
	for _, p := range s.Players {
		out = append(out, p.Battlefield.Cards...)
	}
	return out
}

func (s *GameState) emblem(id string) bool {
	for _, p := range s.Players {
		for _, em := range p.Emblems {
			if em.ID == id {
				return true
			}
		}
	}
	return false
}

func (s *GameState) addLog(msg string) {
	s.Log = append(s.Log, msg)
}

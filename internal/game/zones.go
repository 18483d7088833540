package game

import (
	"slices"

	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/rules"
	"github.com/magefree/mage-rules-go/internal/game/targeting"
)

// moveCard is the only way a card changes zone. It fires the zone-change
// events and recomputes characteristics. Cards on the battlefield go to their
// controller's battlefield; every other zone belongs to the owner.
func (e *Engine) moveCard(c *GameCard, to rules.Zone) {
	s := e.state
	from := c.Zone
	owner, _ := s.Player(c.OwnerID)
	controller, _ := s.Player(c.ControllerID)
	leftTypes := slices.Clone(c.Types)

	switch from {
	case rules.ZoneStack:
		delete(s.stackCards, c.ID)
	case rules.ZoneBattlefield:
		controller.Battlefield.remove(c.ID)
	case "":
	default:
		owner.Zone(from).remove(c.ID)
	}

	if from == rules.ZoneBattlefield {
		e.leaveBattlefield(c)
	}

	switch to {
	case rules.ZoneStack:
		c.Zone = rules.ZoneStack
		s.stackCards[c.ID] = c
	case rules.ZoneBattlefield:
		controller.Battlefield.add(c)
		e.enterBattlefield(c)
	default:
		c.ControllerID = c.OwnerID
		owner.Zone(to).add(c)
	}

	e.logger.Debug("card moved",
		zap.String("card_id", c.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	e.RecalculateState()

	if from == rules.ZoneBattlefield {
		ev := rules.Event{
			Type:      rules.EventLeavesBattlefield,
			SourceID:  c.ID,
			PlayerID:  controller.ID,
			FromZone:  from,
			ToZone:    to,
			CardTypes: leftTypes,
		}
		e.fireEvent(ev)
		if to == rules.ZoneGraveyard && (ev.HasType("Creature") || ev.HasType("Planeswalker")) {
			ev.Type = rules.EventDies
			e.fireEvent(ev)
		}
	}
	if to == rules.ZoneBattlefield {
		e.fireEvent(rules.Event{
			Type:      rules.EventEntersBattlefield,
			SourceID:  c.ID,
			PlayerID:  c.ControllerID,
			FromZone:  from,
			ToZone:    to,
			CardTypes: slices.Clone(c.Types),
		})
	}
	e.fireEvent(rules.Event{
		Type:      rules.EventZoneChange,
		SourceID:  c.ID,
		PlayerID:  c.OwnerID,
		FromZone:  from,
		ToZone:    to,
		CardTypes: leftTypes,
	})
}

// enterBattlefield sets up a permanent: fresh status, starting loyalty and its
// static abilities bound at a new timestamp.
func (e *Engine) enterBattlefield(c *GameCard) {
	s := e.state
	c.TurnEnteredBattlefield = s.TurnNumber()
	c.Tapped = false
	if c.Def.IsPlaneswalker() && c.Def.Loyalty > 0 {
		c.Counters.Set(counters.Loyalty, c.Def.Loyalty)
	}
	for _, tmpl := range c.Def.Statics {
		s.ActiveEffects = append(s.ActiveEffects, effects.Bind(tmpl, c.ID, c.ControllerID, s.NextTimestamp()))
	}
}

// leaveBattlefield clears everything a permanent loses when it stops being
// one. A transformed card returns to its front face.
func (e *Engine) leaveBattlefield(c *GameCard) {
	c.Tapped = false
	c.Attacking = false
	c.Blocking = false
	c.Damage = 0
	c.DeathtouchDamage = false
	c.DamageThisTurn = 0
	c.Counters.Clear()
	clear(c.AbilityUsedTurn)
	c.LoyaltyUsedTurn = 0
	if c.Transformed {
		c.Transformed = false
		c.setDefinition(c.front)
	}
	if cs := e.state.combat; cs != nil {
		cs.remove(c.ID)
	}
}

// draw draws n cards one at a time. Drawing from an empty library loses the
// game at once and stops the draw. It reports whether every draw happened.
func (e *Engine) draw(p *Player, n int) bool {
	for range n {
		if e.state.IsGameOver {
			return false
		}
		top := p.Library.Top()
		if top == nil {
			e.loseGame(p, "drew from an empty library")
			return false
		}
		e.moveCard(top, rules.ZoneHand)
		e.logf("%s draws a card", p.Name)
		e.fireEvent(rules.NewEvent(rules.EventDrawCard, top.ID, p.ID))
	}
	return true
}

func (e *Engine) shuffle(p *Player) {
	e.rng.Shuffle(p.Library.Len(), func(i, j int) {
		p.Library.Cards[i], p.Library.Cards[j] = p.Library.Cards[j], p.Library.Cards[i]
	})
}

// discard moves a card from hand to graveyard. cause is the player making
// them discard.
func (e *Engine) discard(p *Player, c *GameCard, cause string) {
	e.causedBy(cause)
	e.moveCard(c, rules.ZoneGraveyard)
	e.logf("%s discards %s", p.Name, c.Name())
	ev := rules.NewEvent(rules.EventDiscard, c.ID, p.ID)
	ev.CausedBy = cause
	e.fireEvent(ev)
}

// loseLife subtracts life and records it.
func (e *Engine) loseLife(p *Player, amount int) {
	if amount <= 0 {
		return
	}
	p.Life -= amount
	ev := rules.NewEvent(rules.EventLifeLost, "", p.ID)
	ev.Amount = amount
	e.fireEvent(ev)
}

func (e *Engine) gainLife(p *Player, amount int, sourceID string) {
	if amount <= 0 {
		return
	}
	p.Life += amount
	e.logf("%s gains %d life", p.Name, amount)
	ev := rules.NewEvent(rules.EventLifeGained, sourceID, p.ID)
	ev.Amount = amount
	e.fireEvent(ev)
}

// targetView exposes the game to the target validator.
type targetView struct {
	s *GameState
}

func cardInfo(c *GameCard) targeting.CardInfo {
	return targeting.CardInfo{
		ID:           c.ID,
		Name:         c.Name(),
		Zone:         c.Zone,
		ControllerID: c.ControllerID,
		OwnerID:      c.OwnerID,
		Types:        c.Types,
		Subtypes:     c.Subtypes,
		Keywords:     c.ActiveKeywords,
	}
}

func (v targetView) FindCardForTarget(id string) (targeting.CardInfo, bool) {
	c, ok := v.s.FindCard(id)
	if !ok {
		return targeting.CardInfo{}, false
	}
	switch c.Zone {
	case rules.ZoneBattlefield, rules.ZoneGraveyard, rules.ZoneStack:
		return cardInfo(c), true
	}
	return targeting.CardInfo{}, false
}

func (v targetView) FindPlayerForTarget(id string) (targeting.PlayerInfo, bool) {
	p, err := v.s.Player(id)
	if err != nil {
		return targeting.PlayerInfo{}, false
	}
	return v.playerInfo(p), true
}

func (v targetView) playerInfo(p *Player) targeting.PlayerInfo {
	return targeting.PlayerInfo{
		ID:     p.ID,
		Name:   p.Name,
		Lost:   p.Lost,
		Shroud: effects.HasShroud(v.s.ActiveEffects, p.ID),
	}
}

func (v targetView) CardsForTarget() []targeting.CardInfo {
	var out []targeting.CardInfo
	for _, p := range v.s.Players {
		for _, c := range p.Battlefield.Cards {
			out = append(out, cardInfo(c))
		}
	}
	for _, p := range v.s.Players {
		for _, c := range p.Graveyard.Cards {
			out = append(out, cardInfo(c))
		}
	}
	for _, entry := range v.s.Stack.List() {
		if sp, ok := entry.(*SpellEntry); ok {
			out = append(out, cardInfo(sp.Card))
		}
	}
	return out
}

func (v targetView) PlayersForTarget() []targeting.PlayerInfo {
	out := make([]targeting.PlayerInfo, 0, len(v.s.Players))
	for _, p := range v.s.Players {
		out = append(out, v.playerInfo(p))
	}
	return out
}

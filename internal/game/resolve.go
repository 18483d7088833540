package game

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// resolveTop resolves the top stack entry. Resolution ignores cancellation of
// ctx so an entry resolves completely or not at all.
func (e *Engine) resolveTop(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "game.resolve")
	defer span.End()
	ctx = context.WithoutCancel(ctx)

	s := e.state
	entry, err := s.Stack.Pop()
	if err != nil {
		return err
	}
	e.logger.Debug("resolving", zap.String("entry", entry.Describe()))

	switch en := entry.(type) {
	case *SpellEntry:
		e.dropCastHistory(en)
		err = e.resolveSpell(ctx, en)
	case *AbilityEntry:
		err = e.resolveAbility(ctx, en)
	default:
		err = fmt.Errorf("unknown stack entry %T", entry)
	}
	if err != nil {
		return err
	}
	e.RecalculateState()
	return nil
}

func (e *Engine) resolveSpell(ctx context.Context, en *SpellEntry) error {
	s := e.state
	c := en.Card
	controller, err := s.Player(en.ControllerID)
	if err != nil {
		return err
	}
	e.causedBy(controller.ID)

	if !e.targetStillLegal(c.Def.Target, en.Target, controller.ID) {
		e.logf("%s fizzles (its target is no longer legal)", c.Name())
		e.moveCard(c, rules.ZoneGraveyard)
		return nil
	}

	if c.Def.IsPermanent() {
		c.ControllerID = controller.ID
		e.moveCard(c, rules.ZoneBattlefield)
		e.logf("%s resolves and enters the battlefield under %s's control", c.Name(), controller.Name)
		if c.Def.Spell != nil {
			return e.applyEffect(ctx, *c.Def.Spell, resolution{controller: controller, sourceID: c.ID, sourceName: c.Name(), target: en.Target})
		}
		return nil
	}

	e.logf("%s resolves", c.Name())
	if c.Def.Spell != nil {
		if err := e.applyEffect(ctx, *c.Def.Spell, resolution{controller: controller, sourceID: c.ID, sourceName: c.Name(), target: en.Target}); err != nil {
			return err
		}
	}
	if c.Zone == rules.ZoneStack {
		e.moveCard(c, rules.ZoneGraveyard)
	}
	return nil
}

func (e *Engine) resolveAbility(ctx context.Context, en *AbilityEntry) error {
	controller, err := e.state.Player(en.ControllerID)
	if err != nil {
		return err
	}
	e.causedBy(controller.ID)
	if !e.targetStillLegal(en.Spec, en.Target, controller.ID) {
		e.logf("%s's ability fizzles (its target is no longer legal)", en.SourceName)
		return nil
	}
	e.logf("Resolving %s", en.Describe())
	return e.applyEffect(ctx, en.Effect, resolution{
		controller: controller,
		sourceID:   en.SourceID,
		sourceName: en.SourceName,
		target:     en.Target,
	})
}

// resolution is the context an effect resolves in.
type resolution struct {
	controller *Player
	sourceID   string
	sourceName string
	target     *TargetInfo
}

func (e *Engine) amount(eff card.Effect, r resolution) int {
	if eff.AmountCount != nil {
		return max(eff.AmountCount.Evaluate(boardView{e.state}, r.controller.ID), 0)
	}
	return eff.Amount
}

// players returns the players an effect acts on. Player effects default to
// the controller.
func (e *Engine) players(eff card.Effect, r resolution) []*Player {
	s := e.state
	switch eff.Recipient {
	case card.RecipientTarget:
		if r.target != nil && r.target.PlayerID != "" {
			if p, err := s.Player(r.target.PlayerID); err == nil {
				return []*Player{p}
			}
		}
		return nil
	case card.RecipientOpponent:
		return []*Player{s.Opponent(r.controller.ID)}
	case card.RecipientEachPlayer:
		return slices.Clone(s.Players)
	}
	return []*Player{r.controller}
}

// cardRecipient returns the card an effect acts on: the target if there is
// one and it is a card, otherwise the source.
func (e *Engine) cardRecipient(eff card.Effect, r resolution) *GameCard {
	s := e.state
	if eff.Recipient == card.RecipientTarget || (eff.Recipient == "" && r.target != nil && r.target.CardID != "") {
		if r.target == nil || r.target.CardID == "" {
			return nil
		}
		c, _ := s.FindCard(r.target.CardID)
		return c
	}
	c, _ := s.FindCard(r.sourceID)
	return c
}

// applyEffect executes one entry of the closed effect variant.
func (e *Engine) applyEffect(ctx context.Context, eff card.Effect, r resolution) error {
	s := e.state
	if s.IsGameOver {
		return nil
	}
	switch eff.Kind {
	case card.DealDamage:
		e.dealDamage(eff, r)
	case card.GainLife:
		for _, p := range e.players(eff, r) {
			e.gainLife(p, e.amount(eff, r), r.sourceID)
		}
	case card.LoseLife:
		for _, p := range e.players(eff, r) {
			n := e.amount(eff, r)
			e.loseLife(p, n)
			e.logf("%s loses %d life", p.Name, n)
		}
	case card.DrawCards:
		for _, p := range e.players(eff, r) {
			e.draw(p, e.amount(eff, r))
		}
	case card.Discard:
		for _, p := range e.players(eff, r) {
			if err := e.discardCards(ctx, p, e.amount(eff, r), r.controller.ID); err != nil {
				return err
			}
		}
	case card.Mill:
		for _, p := range e.players(eff, r) {
			n := e.amount(eff, r)
			for range n {
				top := p.Library.Top()
				if top == nil {
					break
				}
				e.moveCard(top, rules.ZoneGraveyard)
			}
			e.logf("%s mills %d", p.Name, n)
		}
	case card.Destroy:
		c := e.cardRecipient(eff, r)
		if c == nil || c.Zone != rules.ZoneBattlefield {
			return nil
		}
		if c.HasKeyword(effects.Indestructible) {
			e.logf("%s is indestructible", c.Name())
			return nil
		}
		e.moveCard(c, rules.ZoneGraveyard)
		e.logf("%s is destroyed", c.Name())
	case card.Sacrifice:
		c := e.cardRecipient(eff, r)
		if c == nil || c.Zone != rules.ZoneBattlefield {
			return nil
		}
		e.moveCard(c, rules.ZoneGraveyard)
		e.logf("%s is sacrificed", c.Name())
	case card.Exile:
		c := e.cardRecipient(eff, r)
		if c == nil || c.Zone == rules.ZoneExile || c.Zone == rules.ZoneStack {
			return nil
		}
		e.moveCard(c, rules.ZoneExile)
		if src, ok := s.FindCard(r.sourceID); ok {
			src.ExiledCardIDs = append(src.ExiledCardIDs, c.ID)
		}
		e.logf("%s is exiled", c.Name())
	case card.ReturnToHand:
		c := e.cardRecipient(eff, r)
		if c == nil || c.Zone == rules.ZoneHand || c.Zone == rules.ZoneStack {
			return nil
		}
		e.moveCard(c, rules.ZoneHand)
		e.logf("%s returns to its owner's hand", c.Name())
	case card.AddCounters, card.RemoveCounters:
		c := e.cardRecipient(eff, r)
		if c == nil || c.Zone != rules.ZoneBattlefield {
			return nil
		}
		n := max(e.amount(eff, r), 1)
		if eff.Kind == card.AddCounters {
			c.Counters.Add(eff.Counter, n)
			ev := rules.NewEvent(rules.EventCounterAdded, c.ID, c.ControllerID)
			ev.Amount = n
			e.fireEvent(ev)
			e.logf("%s gets %d %s counter(s)", c.Name(), n, eff.Counter)
		} else {
			removed := c.Counters.Remove(eff.Counter, n)
			e.logf("%s loses %d %s counter(s)", c.Name(), removed, eff.Counter)
		}
		e.RecalculateState()
	case card.ApplyContinuous:
		e.applyContinuous(eff, r)
	case card.AddMana:
		n := max(e.amount(eff, r), 1)
		for _, p := range e.players(eff, r) {
			p.ManaPool.Add(eff.Color, n)
			e.logf("%s adds %d {%s}", p.Name, n, eff.Color)
		}
	case card.Tap, card.Untap:
		c := e.cardRecipient(eff, r)
		if c == nil || c.Zone != rules.ZoneBattlefield {
			return nil
		}
		c.Tapped = eff.Kind == card.Tap
		e.logf("%s becomes %s", c.Name(), strings.ToLower(string(eff.Kind))+"ped")
	case card.CounterSpell:
		e.counterSpell(r)
	case card.RegisterDelayedTrigger:
		playerID := ""
		switch eff.Recipient {
		case card.RecipientController, card.RecipientSelf:
			playerID = r.controller.ID
		case card.RecipientOpponent:
			playerID = s.Opponent(r.controller.ID).ID
		}
		id := s.DelayedTriggers.Add(rules.DelayedTrigger{
			FireOn:       eff.FireOn,
			PlayerID:     playerID,
			ControllerID: r.controller.ID,
			SourceID:     r.sourceID,
			Payload:      delayedPayload{Effect: *eff.Delayed, Target: r.target},
		})
		e.logger.Debug("delayed trigger registered", zap.String("trigger_id", id), zap.String("fire_on", string(eff.FireOn)))
		e.logf("%s sets up a delayed trigger on %s", r.sourceName, eff.FireOn)
	case card.ExtraTurn:
		for _, p := range e.players(eff, r) {
			s.ExtraTurns = append(s.ExtraTurns, p.ID)
			e.logf("%s will take an extra turn", p.Name)
		}
	case card.CreateEmblem:
		em := Emblem{ID: uuid.NewString(), OwnerID: r.controller.ID}
		em.Effect = effects.Bind(*eff.Continuous, em.ID, r.controller.ID, s.NextTimestamp())
		r.controller.Emblems = append(r.controller.Emblems, em)
		s.ActiveEffects = append(s.ActiveEffects, em.Effect)
		e.logf("%s gets an emblem", r.controller.Name)
		e.RecalculateState()
	case card.Transform:
		e.transform(eff, r)
	case card.SearchLibrary:
		return e.searchLibrary(ctx, eff, r)
	case card.Sequence:
		for _, step := range eff.Steps {
			if err := e.applyEffect(ctx, step, r); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported effect kind %q", eff.Kind)
	}
	return nil
}

func (e *Engine) dealDamage(eff card.Effect, r resolution) {
	s := e.state
	n := e.amount(eff, r)
	if n <= 0 {
		return
	}
	src, _ := s.FindCard(r.sourceID)
	deathtouch := src != nil && src.HasKeyword(effects.Deathtouch)
	dealt := 0
	// Damage with no recipient goes where the spell or ability was aimed.
	if eff.Recipient == "" && r.target != nil {
		eff.Recipient = card.RecipientTarget
	}

	if eff.Recipient == card.RecipientTarget && r.target != nil && r.target.CardID != "" {
		c, ok := s.Permanent(r.target.CardID)
		if !ok {
			return
		}
		dealt = e.damagePermanent(c, n, deathtouch)
	} else {
		for _, p := range e.players(eff, r) {
			dealt += e.damagePlayer(p, n, r.sourceID, r.sourceName)
		}
	}
	if dealt > 0 && src != nil && src.HasKeyword(effects.Lifelink) {
		if owner, err := s.Player(src.ControllerID); err == nil {
			e.gainLife(owner, dealt, src.ID)
		}
	}
}

// damagePermanent marks damage on a creature or removes loyalty from a
// planeswalker and returns the damage dealt.
func (e *Engine) damagePermanent(c *GameCard, n int, deathtouch bool) int {
	if c.IsCreature() {
		c.Damage += n
		c.DamageThisTurn += n
		if deathtouch {
			c.DeathtouchDamage = true
		}
	}
	if c.HasType("Planeswalker") {
		c.Counters.Remove(counters.Loyalty, n)
	}
	e.logf("%s is dealt %d damage", c.Name(), n)
	ev := rules.NewEvent(rules.EventDamageDealt, c.ID, c.ControllerID)
	ev.Amount = n
	e.fireEvent(ev)
	return n
}

// damagePlayer applies damage unless it is prevented and returns the damage
// dealt.
func (e *Engine) damagePlayer(p *Player, n int, sourceID, sourceName string) int {
	if effects.PreventsDamage(e.activeEffects(), p.ID) {
		e.logf("Damage to %s from %s is prevented", p.Name, sourceName)
		return 0
	}
	e.loseLife(p, n)
	e.logf("%s deals %d damage to %s", sourceName, n, p.Name)
	ev := rules.NewEvent(rules.EventDamageDealt, sourceID, p.ID)
	ev.TargetID = p.ID
	ev.Amount = n
	e.fireEvent(ev)
	return n
}

func (e *Engine) applyContinuous(eff card.Effect, r resolution) {
	s := e.state
	tmpl := *eff.Continuous
	if tmpl.Duration == "" {
		tmpl.Duration = effects.DurationEndOfTurn
	}
	if eff.Recipient == card.RecipientTarget && r.target != nil && r.target.CardID != "" && len(tmpl.Filter.CardIDs) == 0 {
		tmpl.Filter.CardIDs = []string{r.target.CardID}
	}
	bound := effects.Bind(tmpl, r.sourceID, r.controller.ID, s.NextTimestamp())
	s.ActiveEffects = append(s.ActiveEffects, bound)
	e.logf("%s applies %s", r.sourceName, bound.Type)
	e.RecalculateState()
}

func (e *Engine) counterSpell(r resolution) {
	s := e.state
	if r.target == nil || r.target.CardID == "" {
		return
	}
	for _, entry := range s.Stack.List() {
		sp, ok := entry.(*SpellEntry)
		if !ok || sp.Card.ID != r.target.CardID {
			continue
		}
		s.Stack.Remove(sp.ID)
		e.dropCastHistory(sp)
		e.moveCard(sp.Card, rules.ZoneGraveyard)
		e.logf("%s is countered", sp.Card.Name())
		return
	}
}

func (e *Engine) transform(eff card.Effect, r resolution) {
	s := e.state
	c := e.cardRecipient(eff, r)
	if c == nil || c.Zone != rules.ZoneBattlefield {
		return
	}
	if c.Transformed {
		s.ActiveEffects = effects.RemoveBySource(s.ActiveEffects, c.ID)
		c.Transformed = false
		c.setDefinition(c.front)
	} else {
		if c.Def.TransformInto == "" || e.catalogue == nil {
			e.logf("%s cannot transform", c.Name())
			return
		}
		back, ok := e.catalogue.Lookup(c.Def.TransformInto)
		if !ok {
			e.logger.Warn("transform target missing from catalogue", zap.String("card_id", c.ID), zap.String("name", c.Def.TransformInto))
			e.logf("%s cannot transform", c.Name())
			return
		}
		s.ActiveEffects = effects.RemoveBySource(s.ActiveEffects, c.ID)
		c.Transformed = true
		c.setDefinition(back)
	}
	for _, tmpl := range c.Def.Statics {
		s.ActiveEffects = append(s.ActiveEffects, effects.Bind(tmpl, c.ID, c.ControllerID, s.NextTimestamp()))
	}
	e.logf("%s transforms into %s", c.front.Name, c.Name())
	e.RecalculateState()
}

func (e *Engine) searchLibrary(ctx context.Context, eff card.Effect, r resolution) error {
	p := r.controller
	var candidates []*GameCard
	for _, c := range p.Library.Cards {
		for _, st := range eff.Subtypes {
			if c.HasSubtype(st) {
				candidates = append(candidates, c)
				break
			}
		}
	}
	var found *GameCard
	if len(candidates) > 0 {
		picked, err := e.provider(p.ID).ChooseCards(ctx, e.state, p.ID, CardChoice{
			Reason:     ChooseSearch,
			Prompt:     "search for a " + strings.Join(eff.Subtypes, " or "),
			Candidates: candidates,
			Min:        0,
			Max:        1,
		})
		if err != nil {
			return fmt.Errorf("search library: %w", err)
		}
		if chosen, ok := pickFrom(picked, candidates, 0, 1); ok && len(chosen) == 1 {
			found = chosen[0]
		}
	}
	if found != nil {
		found.ControllerID = p.ID
		e.moveCard(found, rules.ZoneBattlefield)
		e.logf("%s searches their library and puts %s onto the battlefield", p.Name, found.Name())
	} else {
		e.logf("%s searches their library and finds nothing", p.Name)
	}
	e.shuffle(p)
	return nil
}

// discardCards makes p discard n cards of their choice. An invalid answer
// discards the most recently drawn cards.
func (e *Engine) discardCards(ctx context.Context, p *Player, n int, cause string) error {
	n = min(n, p.Hand.Len())
	if n <= 0 {
		return nil
	}
	hand := slices.Clone(p.Hand.Cards)
	picked, err := e.provider(p.ID).ChooseCards(ctx, e.state, p.ID, CardChoice{
		Reason:     ChooseDiscard,
		Prompt:     fmt.Sprintf("discard %d card(s)", n),
		Candidates: hand,
		Min:        n,
		Max:        n,
	})
	if err != nil {
		return fmt.Errorf("choose discard: %w", err)
	}
	chosen, ok := pickFrom(picked, hand, n, n)
	if !ok {
		chosen = hand[len(hand)-n:]
	}
	for _, c := range chosen {
		e.discard(p, c, cause)
	}
	return nil
}

// pickFrom checks that picked is a duplicate-free subset of candidates with
// between lo and hi entries and returns the candidate cards.
func pickFrom(picked, candidates []*GameCard, lo, hi int) ([]*GameCard, bool) {
	if len(picked) < lo || len(picked) > hi {
		return nil, false
	}
	seen := make(map[string]bool, len(picked))
	out := make([]*GameCard, 0, len(picked))
	for _, p := range picked {
		if p == nil || seen[p.ID] {
			return nil, false
		}
		idx := slices.IndexFunc(candidates, func(c *GameCard) bool { return c.ID == p.ID })
		if idx < 0 {
			return nil, false
		}
		seen[p.ID] = true
		out = append(out, candidates[idx])
	}
	return out, true
}

// manaString renders an amount map the way a pool prints.
func manaString(amounts map[mana.Color]int) string {
	p := mana.NewPool()
	for c, n := range amounts {
		p.Add(c, n)
	}
	return p.String()
}

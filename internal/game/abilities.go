package game

import (
	"context"
	"fmt"
	"slices"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

func (e *Engine) playLand(p *Player, a Action) error {
	c := p.Hand.Find(a.CardID)
	if c == nil {
		return e.reject(p, CodeNotFound, "card %s is not in %s's hand", a.CardID, p.Name)
	}
	if !c.Def.IsLand() {
		return e.reject(p, CodeWrongTiming, "%s is not a land", c.Name())
	}
	if !e.sorcerySpeed(p) {
		return e.reject(p, CodeWrongTiming, "lands can only be played at sorcery speed")
	}
	drops := 1 + effects.ExtraLandDrops(e.activeEffects(), p.ID)
	if p.ThisTurn.LandsPlayed >= drops {
		return e.reject(p, CodeWrongTiming, "%s has no land drops left this turn", p.Name)
	}
	c.ControllerID = p.ID
	e.moveCard(c, rules.ZoneBattlefield)
	e.logf("%s plays %s", p.Name, c.Name())
	ev := rules.NewEvent(rules.EventLandPlayed, c.ID, p.ID)
	ev.CardTypes = slices.Clone(c.Types)
	e.fireEvent(ev)
	return nil
}

// tapForMana activates a mana ability. Mana abilities do not use the stack.
func (e *Engine) tapForMana(ctx context.Context, p *Player, a Action) error {
	s := e.state
	c := p.Battlefield.Find(a.CardID)
	if c == nil {
		return e.reject(p, CodeNotFound, "%s controls no permanent %s", p.Name, a.CardID)
	}
	if c.Tapped {
		return e.reject(p, CodeCostUnmet, "%s is already tapped", c.Name())
	}
	if c.AbilitiesRemoved || len(c.Def.ManaAbilities) == 0 {
		return e.reject(p, CodeCostUnmet, "%s has no mana ability", c.Name())
	}
	if a.AbilityIndex < 0 || a.AbilityIndex >= len(c.Def.ManaAbilities) {
		return e.reject(p, CodeNotFound, "%s has no mana ability %d", c.Name(), a.AbilityIndex)
	}
	if c.IsCreature() && c.SummoningSick(s.TurnNumber()) {
		return e.reject(p, CodeWrongTiming, "%s is summoning sick", c.Name())
	}

	ab := c.Def.ManaAbilities[a.AbilityIndex]
	produced := make(map[mana.Color]int)
	switch ab.Kind {
	case card.ManaFixed:
		produced[ab.Produces[0]] = max(ab.Amount, 1)
	case card.ManaChoice:
		col := a.Color
		if col == "" {
			if err := ctx.Err(); err != nil {
				return err
			}
			chosen, err := e.provider(p.ID).ChooseManaColor(ctx, p.ID, slices.Clone(ab.Produces))
			if err != nil {
				return fmt.Errorf("choose mana color: %w", err)
			}
			if chosen == nil {
				return e.reject(p, CodeDeclined, "%s declined to choose a color", p.Name)
			}
			col = *chosen
		}
		if !slices.Contains(ab.Produces, col) {
			return e.reject(p, CodeCostUnmet, "%s cannot produce {%s}", c.Name(), col)
		}
		produced[col] = max(ab.Amount, 1)
	case card.ManaDynamic:
		produced[ab.Produces[0]] = max(ab.Count.Evaluate(boardView{s}, p.ID), 0)
	case card.ManaMultiple:
		for _, col := range ab.Produces {
			produced[col]++
		}
	}

	c.Tapped = true
	for col, n := range produced {
		p.ManaPool.Add(col, n)
	}
	p.History = append(p.History, HistoryEntry{Kind: HistoryTapForMana, CardID: c.ID, Mana: produced})
	e.logf("%s taps %s for %s", p.Name, c.Name(), manaString(produced))
	return nil
}

// untapCard undoes the most recent tap of a card for mana, provided the mana
// it made is still floating.
func (e *Engine) untapCard(p *Player, a Action) error {
	for i, h := range slices.Backward(p.History) {
		if h.Kind == HistoryTapForMana && h.CardID == a.CardID {
			return e.undoTap(p, i)
		}
	}
	return e.reject(p, CodeCostUnmet, "%s has no tap of %s to undo", p.Name, a.CardID)
}

func (e *Engine) undoTap(p *Player, i int) error {
	h := p.History[i]
	c := p.Battlefield.Find(h.CardID)
	if c == nil {
		return e.reject(p, CodeNotFound, "%s is no longer on the battlefield", h.CardID)
	}
	for col, n := range h.Mana {
		if p.ManaPool.Amount(col) < n {
			return e.reject(p, CodeCostUnmet, "the mana from %s has already been spent", c.Name())
		}
	}
	for col, n := range h.Mana {
		p.ManaPool.Spend(col, n)
	}
	c.Tapped = false
	p.History = slices.Delete(p.History, i, i+1)
	e.logf("%s untaps %s", p.Name, c.Name())
	return nil
}

// Undo reverts the player's most recent undoable action: a tap for mana whose
// mana is unspent, or a cast whose spell is still on top of the stack.
func (e *Engine) Undo(playerID string) error {
	s := e.state
	p, err := s.Player(playerID)
	if err != nil {
		return err
	}
	if s.Turn.PriorityPlayer() != p.ID {
		return e.reject(p, CodeNoPriority, "%s does not hold priority", p.Name)
	}
	if s.IsMidCast() {
		return e.reject(p, CodeWrongTiming, "finish or cancel the pending cast first")
	}
	if len(p.History) == 0 {
		return e.reject(p, CodeCostUnmet, "%s has nothing to undo", p.Name)
	}
	last := len(p.History) - 1
	h := p.History[last]
	if h.Kind == HistoryTapForMana {
		return e.undoTap(p, last)
	}

	top, ok := s.Stack.Peek()
	if !ok || top.EntryID() != h.EntryID {
		return e.reject(p, CodeCostUnmet, "the spell is no longer on top of the stack")
	}
	if _, err := s.Stack.Pop(); err != nil {
		return err
	}
	sp := top.(*SpellEntry)
	p.History = p.History[:last]
	e.moveCard(sp.Card, rules.ZoneHand)
	for col, n := range h.Mana {
		p.ManaPool.Add(col, n)
	}
	for _, id := range h.Delved {
		if d := p.Exile.Find(id); d != nil {
			e.moveCard(d, rules.ZoneGraveyard)
		}
	}
	p.Life += h.LifePaid
	// The cast and the life payment no longer count toward this turn.
	if p.ThisTurn.SpellsCast > 0 {
		p.ThisTurn.SpellsCast--
	}
	p.ThisTurn.LifeLost = max(0, p.ThisTurn.LifeLost-h.LifePaid)
	e.logf("%s takes back %s", p.Name, sp.Card.Name())
	return nil
}

// dropCastHistory forgets the undo record of a spell leaving the stack.
func (e *Engine) dropCastHistory(sp *SpellEntry) {
	p, err := e.state.Player(sp.ControllerID)
	if err != nil {
		return
	}
	p.History = slices.DeleteFunc(p.History, func(h HistoryEntry) bool {
		return h.Kind == HistoryCast && h.EntryID == sp.ID
	})
}

// payNow pays a cost that cannot be left owed, such as an activation cost.
// Phyrexian symbols are paid with mana.
func (e *Engine) payNow(ctx context.Context, p *Player, cost mana.Cost, what string) error {
	if !mana.CanPay(p.ManaPool, cost) {
		return e.reject(p, CodeInsufficientMana, "cannot pay %s for %s (pool %s)", cost, what, p.ManaPool)
	}
	work := p.ManaPool.Copy()
	if err := mana.PayColored(work, cost); err != nil {
		return e.rejectWith(p, CodeInsufficientMana, err, "cannot pay %s", cost)
	}
	for col, n := range cost.Phyrexian {
		work.Spend(col, n)
	}
	alloc, err := e.planGeneric(ctx, p, work, cost.Generic)
	if err != nil {
		return err
	}
	if alloc == nil {
		return e.reject(p, CodeDeclined, "%s did not choose how to pay %s", p.Name, cost)
	}
	if err := mana.PayColored(p.ManaPool, cost); err != nil {
		return e.rejectWith(p, CodeInsufficientMana, err, "cannot pay %s", cost)
	}
	for col, n := range cost.Phyrexian {
		p.ManaPool.Spend(col, n)
	}
	return mana.SpendAllocation(p.ManaPool, cost.Generic, alloc)
}

func (e *Engine) activateAbility(ctx context.Context, p *Player, a Action) error {
	s := e.state
	c := p.Battlefield.Find(a.CardID)
	if c == nil {
		return e.reject(p, CodeNotFound, "%s controls no permanent %s", p.Name, a.CardID)
	}
	if c.AbilitiesRemoved {
		return e.reject(p, CodeCostUnmet, "%s has lost its abilities", c.Name())
	}
	if a.AbilityIndex < 0 || a.AbilityIndex >= len(c.Def.Activated) {
		return e.reject(p, CodeNotFound, "%s has no ability %d", c.Name(), a.AbilityIndex)
	}
	ab := c.Def.Activated[a.AbilityIndex]
	turn := s.TurnNumber()
	if used, ok := c.AbilityUsedTurn[a.AbilityIndex]; ok && ab.OncePerTurn && used == turn {
		return e.reject(p, CodeAbilityUsed, "%s's ability was already activated this turn", c.Name())
	}
	if ab.SorcerySpeed && !e.sorcerySpeed(p) {
		return e.reject(p, CodeWrongTiming, "%s's ability can only be activated at sorcery speed", c.Name())
	}
	if ab.TapCost {
		if c.Tapped {
			return e.reject(p, CodeCostUnmet, "%s is already tapped", c.Name())
		}
		if c.IsCreature() && c.SummoningSick(turn) {
			return e.reject(p, CodeWrongTiming, "%s is summoning sick", c.Name())
		}
	}
	if ab.LifeCost > 0 && p.Life < ab.LifeCost {
		return e.reject(p, CodeCostUnmet, "%s cannot pay %d life", p.Name, ab.LifeCost)
	}
	if !mana.CanPay(p.ManaPool, ab.Cost) {
		return e.reject(p, CodeInsufficientMana, "cannot pay %s for %s (pool %s)", ab.Cost, c.Name(), p.ManaPool)
	}

	target, err := e.chooseTarget(ctx, p, c.ID, c.Name(), ab.Target, a)
	if err != nil {
		return err
	}
	if err := e.payNow(ctx, p, ab.Cost, c.Name()); err != nil {
		return err
	}

	e.causedBy(p.ID)
	if ab.TapCost {
		c.Tapped = true
	}
	if ab.LifeCost > 0 {
		e.loseLife(p, ab.LifeCost)
	}
	c.AbilityUsedTurn[a.AbilityIndex] = turn
	entry := newAbilityEntry(AbilityActivated, c.ID, c.Name(), p.ID, ab.Effect, ab.Target, target)
	if ab.SacrificeSelf {
		e.moveCard(c, rules.ZoneGraveyard)
	}
	s.Stack.Push(entry)
	e.logf("%s activates %s", p.Name, entry.Describe())
	return nil
}

func (e *Engine) activateLoyalty(ctx context.Context, p *Player, a Action) error {
	s := e.state
	c := p.Battlefield.Find(a.CardID)
	if c == nil || !c.HasType("Planeswalker") {
		return e.reject(p, CodeNotFound, "%s controls no planeswalker %s", p.Name, a.CardID)
	}
	if c.AbilitiesRemoved {
		return e.reject(p, CodeCostUnmet, "%s has lost its abilities", c.Name())
	}
	if a.AbilityIndex < 0 || a.AbilityIndex >= len(c.Def.LoyaltyAbils) {
		return e.reject(p, CodeNotFound, "%s has no loyalty ability %d", c.Name(), a.AbilityIndex)
	}
	if !e.sorcerySpeed(p) {
		return e.reject(p, CodeWrongTiming, "loyalty abilities can only be activated at sorcery speed")
	}
	turn := s.TurnNumber()
	if c.LoyaltyUsedTurn == turn {
		return e.reject(p, CodeAbilityUsed, "%s already activated a loyalty ability this turn", c.Name())
	}
	ab := c.Def.LoyaltyAbils[a.AbilityIndex]
	if ab.Loyalty < 0 && c.Loyalty() < -ab.Loyalty {
		return e.reject(p, CodeCostUnmet, "%s has only %d loyalty", c.Name(), c.Loyalty())
	}

	target, err := e.chooseTarget(ctx, p, c.ID, c.Name(), ab.Target, a)
	if err != nil {
		return err
	}

	e.causedBy(p.ID)
	if ab.Loyalty > 0 {
		c.Counters.Add(counters.Loyalty, ab.Loyalty)
	} else if ab.Loyalty < 0 {
		c.Counters.Remove(counters.Loyalty, -ab.Loyalty)
	}
	c.LoyaltyUsedTurn = turn
	entry := newAbilityEntry(AbilityLoyalty, c.ID, c.Name(), p.ID, ab.Effect, ab.Target, target)
	s.Stack.Push(entry)
	e.logf("%s activates %+d: %s", p.Name, ab.Loyalty, entry.Describe())
	return nil
}

func (e *Engine) activateFetch(p *Player, a Action) error {
	s := e.state
	c := p.Battlefield.Find(a.CardID)
	if c == nil {
		return e.reject(p, CodeNotFound, "%s controls no permanent %s", p.Name, a.CardID)
	}
	f := c.Def.Fetch
	if f == nil || c.AbilitiesRemoved {
		return e.reject(p, CodeCostUnmet, "%s has no fetch ability", c.Name())
	}
	if c.Tapped {
		return e.reject(p, CodeCostUnmet, "%s is already tapped", c.Name())
	}
	if p.Life < f.LifeCost {
		return e.reject(p, CodeCostUnmet, "%s cannot pay %d life", p.Name, f.LifeCost)
	}

	e.causedBy(p.ID)
	c.Tapped = true
	e.loseLife(p, f.LifeCost)
	e.moveCard(c, rules.ZoneGraveyard)
	eff := card.Effect{Kind: card.SearchLibrary, Recipient: card.RecipientController, Subtypes: slices.Clone(f.Subtypes)}
	entry := newAbilityEntry(AbilityActivated, c.ID, c.Name(), p.ID, eff, nil, nil)
	s.Stack.Push(entry)
	e.logf("%s pays %d life and sacrifices %s", p.Name, f.LifeCost, c.Name())
	return nil
}

func (e *Engine) cycle(ctx context.Context, p *Player, a Action) error {
	s := e.state
	c := p.Hand.Find(a.CardID)
	if c == nil {
		return e.reject(p, CodeNotFound, "card %s is not in %s's hand", a.CardID, p.Name)
	}
	if c.Def.CyclingCost == nil {
		return e.reject(p, CodeCostUnmet, "%s has no cycling", c.Name())
	}
	if err := e.payNow(ctx, p, *c.Def.CyclingCost, c.Name()); err != nil {
		return err
	}
	e.discard(p, c, p.ID)
	draw := card.Effect{Kind: card.DrawCards, Recipient: card.RecipientController, Amount: 1}
	s.Stack.Push(newAbilityEntry(AbilityActivated, c.ID, c.Name(), p.ID, draw, nil, nil))
	e.logf("%s cycles %s", p.Name, c.Name())
	e.fireEvent(rules.NewEvent(rules.EventCycled, c.ID, p.ID))
	return nil
}

// moveCardAction moves one of the player's cards between zones directly.
// Hosts use it for rule-sanctioned manual moves; the stack is off limits.
func (e *Engine) moveCardAction(p *Player, a Action) error {
	if a.To == rules.ZoneStack || a.From == rules.ZoneStack {
		return e.reject(p, CodeWrongTiming, "cards cannot be moved to or from the stack")
	}
	from := p.Zone(a.From)
	to := p.Zone(a.To)
	if from == nil || to == nil {
		return e.reject(p, CodeNotFound, "unknown zone in move from %q to %q", a.From, a.To)
	}
	c := from.Find(a.CardID)
	if c == nil {
		return e.reject(p, CodeNotFound, "card %s is not in %s's %s", a.CardID, p.Name, a.From)
	}
	if a.To == rules.ZoneBattlefield {
		c.ControllerID = p.ID
	}
	e.causedBy(p.ID)
	e.moveCard(c, a.To)
	e.logf("%s moves %s from %s to %s", p.Name, c.Name(), a.From, a.To)
	return nil
}

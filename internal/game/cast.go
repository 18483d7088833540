package game

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// sorcerySpeed reports whether p may take sorcery-speed actions now.
func (e *Engine) sorcerySpeed(p *Player) bool {
	s := e.state
	return s.Turn.ActivePlayer() == p.ID && s.Stack.IsEmpty() && s.Phase().IsMain()
}

// castCost is the mana cost of casting c with X fixed and cost modification
// applied.
func (e *Engine) castCost(c *GameCard, p *Player, x int) mana.Cost {
	cost := c.Def.Cost.WithX(x)
	obj := objectFor(c)
	obj.ControllerID = p.ID
	obj.Reset()
	if delta := effects.CostModifier(e.activeEffects(), obj); delta != 0 {
		cost = cost.WithGenericDelta(delta)
	}
	return cost
}

// castSpell takes a card from hand and puts it on the stack, or leaves it
// waiting in MidCast when part of the cost is still owed.
func (e *Engine) castSpell(ctx context.Context, p *Player, a Action) error {
	s := e.state
	c := p.Hand.Find(a.CardID)
	if c == nil {
		return e.reject(p, CodeNotFound, "card %s is not in %s's hand", a.CardID, p.Name)
	}
	if c.Def.IsLand() {
		return e.reject(p, CodeWrongTiming, "%s is a land and cannot be cast", c.Name())
	}
	if !c.Def.IsInstantSpeed() && !e.sorcerySpeed(p) {
		return e.reject(p, CodeWrongTiming, "%s can only be cast at sorcery speed", c.Name())
	}
	if s.IsMidCast() {
		return e.rejectWith(p, CodeWrongTiming, ErrMidCastPending, "another spell is still being paid for")
	}

	var cost mana.Cost
	if a.UseAlternateCost {
		if err := e.checkAlternateCost(p, c); err != nil {
			return err
		}
	} else {
		cost = e.castCost(c, p, a.X)
		if !mana.HasColored(p.ManaPool, cost) {
			return e.reject(p, CodeInsufficientMana, "cannot pay the colored part of %s for %s (pool %s)", cost, c.Name(), p.ManaPool)
		}
	}

	target, err := e.chooseTarget(ctx, p, c.ID, c.Name(), c.Def.Target, a)
	if err != nil {
		return err
	}

	if a.UseAlternateCost {
		if err := e.payAlternateCost(ctx, p, c); err != nil {
			return err
		}
		e.putSpellOnStack(p, &pendingCast{card: c, target: target})
		return nil
	}

	work := p.ManaPool.Copy()
	if err := mana.PayColored(work, cost); err != nil {
		return e.rejectWith(p, CodeInsufficientMana, err, "cannot pay %s", cost)
	}
	generic := cost.Generic

	var delved []*GameCard
	if c.Def.HasKeyword(effects.Delve) && generic > 0 && p.Graveyard.Len() > 0 {
		delved, err = e.chooseDelve(ctx, p, c, generic)
		if err != nil {
			return err
		}
		generic -= len(delved)
	}

	var alloc map[mana.Color]int
	if cost.PhyrexianTotal() == 0 {
		alloc, err = e.planGeneric(ctx, p, work, generic)
		if err != nil {
			return err
		}
	}

	paid := maps.Clone(cost.Colored)
	if paid == nil {
		paid = make(map[mana.Color]int)
	}
	if err := mana.PayColored(p.ManaPool, cost); err != nil {
		return e.rejectWith(p, CodeInsufficientMana, err, "cannot pay %s", cost)
	}
	if alloc != nil {
		if err := mana.SpendAllocation(p.ManaPool, generic, alloc); err != nil {
			return fmt.Errorf("spend planned allocation: %w", err)
		}
		for col, n := range alloc {
			paid[col] += n
		}
		generic = 0
	}
	delvedIDs := make([]string, 0, len(delved))
	for _, d := range delved {
		e.moveCard(d, rules.ZoneExile)
		delvedIDs = append(delvedIDs, d.ID)
	}
	if len(delved) > 0 {
		e.logf("%s exiles %d card(s) from their graveyard to delve", p.Name, len(delved))
	}

	if generic == 0 && cost.PhyrexianTotal() == 0 {
		e.putSpellOnStack(p, &pendingCast{card: c, target: target, paid: paid, delved: delvedIDs, undoable: true})
		return nil
	}

	if err := s.Payment.Begin(c.ID, p.ID, generic, cost.Phyrexian); err != nil {
		return fmt.Errorf("begin payment for %s: %w", c.Name(), err)
	}
	s.pending = &pendingCast{card: c, target: target, paid: paid, delved: delvedIDs, undoable: true}
	e.logf("%s begins casting %s (%s still owed)", p.Name, c.Name(), s.MidCast().Remaining())
	return nil
}

// chooseTarget asks for the target of a spell or ability. A target preset on
// the action is validated instead of asking.
func (e *Engine) chooseTarget(ctx context.Context, p *Player, srcID, srcName string, spec *card.TargetSpec, a Action) (*TargetInfo, error) {
	if spec == nil {
		return nil, nil
	}
	cards, players := e.targets.Candidates(*spec, p.ID)
	if len(cards)+len(players) == 0 {
		return nil, e.reject(p, CodeNoLegalTargets, "%s has no legal targets", srcName)
	}
	var (
		target *TargetInfo
		err    error
	)
	switch {
	case a.TargetID != "":
		target = &TargetInfo{CardID: a.TargetID}
	case a.TargetPlayerID != "":
		target = &TargetInfo{PlayerID: a.TargetPlayerID}
	default:
		target, err = e.askTarget(ctx, p, srcID, srcName, *spec, cards, players)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, e.reject(p, CodeDeclined, "%s declined to choose a target for %s", p.Name, srcName)
		}
	}
	if !validChoice(target, cards, players) {
		return nil, e.reject(p, CodeInvalidTarget, "%s is not a legal target for %s", target, srcName)
	}
	return target, nil
}

// planGeneric decides how generic mana will be paid from work, which already
// has the colored part removed. A nil allocation means the generic part goes
// to MidCast.
func (e *Engine) planGeneric(ctx context.Context, p *Player, work *mana.Pool, generic int) (map[mana.Color]int, error) {
	if generic <= 0 {
		return map[mana.Color]int{}, nil
	}
	if alloc, ok := mana.AllocateGeneric(work, generic); ok {
		return alloc, nil
	}
	if work.Total() < generic {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	alloc, err := e.provider(p.ID).ChooseGenericPayment(ctx, p.ID, generic, work.Available())
	if err != nil {
		return nil, fmt.Errorf("choose generic payment: %w", err)
	}
	if alloc == nil {
		return nil, nil
	}
	if err := mana.ValidateAllocation(work, generic, alloc); err != nil {
		e.logger.Debug("generic allocation refused", zap.String("player_id", p.ID), zap.Error(err))
		return nil, nil
	}
	return alloc, nil
}

func (e *Engine) chooseDelve(ctx context.Context, p *Player, c *GameCard, generic int) ([]*GameCard, error) {
	gy := slices.Clone(p.Graveyard.Cards)
	limit := min(generic, len(gy))
	picked, err := e.provider(p.ID).ChooseCards(ctx, e.state, p.ID, CardChoice{
		Reason:     ChooseDelve,
		Prompt:     fmt.Sprintf("exile up to %d card(s) to help cast %s", limit, c.Name()),
		Candidates: gy,
		Min:        0,
		Max:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("choose delve: %w", err)
	}
	chosen, ok := pickFrom(picked, gy, 0, limit)
	if !ok {
		e.logf("%s made an invalid delve choice; nothing is exiled", p.Name)
		return nil, nil
	}
	return chosen, nil
}

// checkAlternateCost validates an alternate cost without paying it.
func (e *Engine) checkAlternateCost(p *Player, c *GameCard) error {
	alt := c.Def.AlternateCost
	if alt == nil {
		return e.reject(p, CodeCostUnmet, "%s has no alternate cost", c.Name())
	}
	switch alt.Kind {
	case card.AltReturnPermanent:
		if len(e.returnCandidates(p, alt)) == 0 {
			return e.reject(p, CodeCostUnmet, "%s controls no %s to return", p.Name, alt.Subtype)
		}
	case card.AltExileTopOfGraveyard:
		top := p.Graveyard.Top()
		if top == nil {
			return e.reject(p, CodeCostUnmet, "%s's graveyard is empty", p.Name)
		}
		if alt.CardType != "" && !top.Def.HasType(alt.CardType) {
			return e.reject(p, CodeCostUnmet, "the top card of %s's graveyard is not a %s", p.Name, alt.CardType)
		}
	case card.AltPayLife:
		if p.Life < alt.Life {
			return e.reject(p, CodeCostUnmet, "%s cannot pay %d life", p.Name, alt.Life)
		}
	default:
		return e.reject(p, CodeCostUnmet, "unknown alternate cost %q", alt.Kind)
	}
	return nil
}

func (e *Engine) returnCandidates(p *Player, alt *card.AlternateCost) []*GameCard {
	var out []*GameCard
	for _, c := range p.Battlefield.Cards {
		if alt.Subtype != "" && !c.HasSubtype(alt.Subtype) {
			continue
		}
		if alt.CardType != "" && !c.HasType(alt.CardType) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// payAlternateCost pays an alternate cost already checked by
// checkAlternateCost. Either all of it is paid or nothing is.
func (e *Engine) payAlternateCost(ctx context.Context, p *Player, c *GameCard) error {
	alt := c.Def.AlternateCost
	switch alt.Kind {
	case card.AltReturnPermanent:
		candidates := e.returnCandidates(p, alt)
		picked, err := e.provider(p.ID).ChooseCards(ctx, e.state, p.ID, CardChoice{
			Reason:     ChooseReturnPermanent,
			Prompt:     "return a " + alt.Subtype + " to pay for " + c.Name(),
			Candidates: candidates,
			Min:        1,
			Max:        1,
		})
		if err != nil {
			return fmt.Errorf("choose permanent to return: %w", err)
		}
		chosen, ok := pickFrom(picked, candidates, 1, 1)
		if !ok {
			return e.reject(p, CodeDeclined, "%s did not choose a %s to return", p.Name, alt.Subtype)
		}
		e.moveCard(chosen[0], rules.ZoneHand)
		e.logf("%s returns %s to hand to pay for %s", p.Name, chosen[0].Name(), c.Name())
	case card.AltExileTopOfGraveyard:
		top := p.Graveyard.Top()
		e.moveCard(top, rules.ZoneExile)
		e.logf("%s exiles %s from their graveyard to pay for %s", p.Name, top.Name(), c.Name())
	case card.AltPayLife:
		e.loseLife(p, alt.Life)
		e.logf("%s pays %d life for %s", p.Name, alt.Life, c.Name())
	}
	return nil
}

// putSpellOnStack moves a fully paid spell to the stack.
func (e *Engine) putSpellOnStack(p *Player, pc *pendingCast) {
	s := e.state
	c, target := pc.card, pc.target
	entry := &SpellEntry{
		ID:           uuid.NewString(),
		Card:         c,
		ControllerID: p.ID,
		Target:       target,
		Paid:         pc.paid,
	}
	e.causedBy(p.ID)
	e.moveCard(c, rules.ZoneStack)
	s.Stack.Push(entry)
	if pc.undoable {
		p.History = append(p.History, HistoryEntry{
			Kind:     HistoryCast,
			CardID:   c.ID,
			EntryID:  entry.ID,
			Mana:     pc.paid,
			Delved:   pc.delved,
			LifePaid: pc.lifePaid,
		})
	}
	e.logf("%s casts %s", p.Name, entry.Describe())
	ev := rules.NewEvent(rules.EventSpellCast, c.ID, p.ID)
	ev.CardTypes = slices.Clone(c.Types)
	if target != nil {
		ev.TargetID = target.id()
	}
	e.fireEvent(ev)
}

func (e *Engine) payManaFromPool(p *Player, a Action) error {
	s := e.state
	if !s.IsMidCast() {
		return e.rejectWith(p, CodeNotMidCast, mana.ErrInvalidOperation, "no spell is waiting for payment")
	}
	if err := s.Payment.ApplyManaPayment(p.ManaPool, a.Color); err != nil {
		return e.rejectWith(p, CodeInsufficientMana, err, "cannot pay {%s}", a.Color)
	}
	s.pending.paid[a.Color]++
	e.logf("%s pays {%s} for %s", p.Name, a.Color, s.pending.card.Name())
	return e.finishCast(p)
}

func (e *Engine) payLife(p *Player) error {
	s := e.state
	if !s.IsMidCast() {
		return e.rejectWith(p, CodeNotMidCast, mana.ErrInvalidOperation, "no spell is waiting for payment")
	}
	if p.Life < mana.LifePerPhyrexian {
		return e.reject(p, CodeCostUnmet, "%s cannot pay %d life", p.Name, mana.LifePerPhyrexian)
	}
	col, err := s.Payment.ApplyLifePayment()
	if err != nil {
		return e.rejectWith(p, CodeCostUnmet, err, "no phyrexian mana is owed")
	}
	e.loseLife(p, mana.LifePerPhyrexian)
	s.pending.lifePaid += mana.LifePerPhyrexian
	e.logf("%s pays %d life for {%s/P}", p.Name, mana.LifePerPhyrexian, col)
	return e.finishCast(p)
}

// finishCast puts the pending spell on the stack once nothing is owed.
func (e *Engine) finishCast(p *Player) error {
	s := e.state
	if !s.Payment.IsFullyPaid() {
		e.logf("%s still owes %s", s.pending.card.Name(), s.MidCast().Remaining())
		return nil
	}
	if _, err := s.Payment.Complete(); err != nil {
		return fmt.Errorf("complete payment: %w", err)
	}
	pc := s.pending
	s.pending = nil
	e.putSpellOnStack(p, pc)
	return nil
}

// cancelCast abandons the pending spell. The card stays in hand and spent
// mana is lost.
func (e *Engine) cancelCast(p *Player) error {
	s := e.state
	if !s.IsMidCast() {
		return e.rejectWith(p, CodeNotMidCast, mana.ErrInvalidOperation, "no spell is waiting for payment")
	}
	s.Payment.Cancel()
	pc := s.pending
	s.pending = nil
	e.logf("%s cancels casting %s", p.Name, pc.card.Name())
	return nil
}

package game

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/counters"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// StartGame shuffles both libraries, draws opening hands and runs mulligans.
func (e *Engine) StartGame(ctx context.Context) error {
	s := e.state
	if s.started {
		return errors.New("game already started")
	}
	s.started = true
	for _, p := range s.Players {
		e.shuffle(p)
		e.draw(p, e.opts.OpeningHand)
	}
	for _, p := range s.Players {
		if err := e.mulligan(ctx, p); err != nil {
			return err
		}
	}
	first := s.ActivePlayer()
	e.logf("%s goes first", first.Name)
	e.logger.Info("game started",
		zap.String("first_player", first.ID),
		zap.Int("opening_hand", e.opts.OpeningHand),
	)
	return nil
}

// mulligan asks p to keep or mulligan until they keep. Each mulligan shuffles
// the hand back and draws a fresh one; on keeping, one card per mulligan goes
// to the bottom of the library.
func (e *Engine) mulligan(ctx context.Context, p *Player) error {
	prov := e.provider(p.ID)
	for !e.state.IsGameOver {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, err := prov.GetMulliganDecision(ctx, p.ID, slices.Clone(p.Hand.Cards), p.MulliganCount)
		if err != nil {
			return fmt.Errorf("mulligan decision for %s: %w", p.Name, err)
		}
		if d == Keep || p.MulliganCount >= e.opts.OpeningHand {
			break
		}
		p.MulliganCount++
		e.logf("%s takes a mulligan", p.Name)
		for p.Hand.Len() > 0 {
			e.moveCard(p.Hand.Top(), rules.ZoneLibrary)
		}
		e.shuffle(p)
		e.draw(p, e.opts.OpeningHand)
	}

	n := min(p.MulliganCount, p.Hand.Len())
	if n > 0 {
		hand := slices.Clone(p.Hand.Cards)
		picked, err := prov.ChooseCards(ctx, e.state, p.ID, CardChoice{
			Reason:     ChooseBottom,
			Prompt:     fmt.Sprintf("put %d card(s) on the bottom of your library", n),
			Candidates: hand,
			Min:        n,
			Max:        n,
		})
		if err != nil {
			return fmt.Errorf("choose cards to bottom: %w", err)
		}
		chosen, ok := pickFrom(picked, hand, n, n)
		if !ok {
			chosen = hand[len(hand)-n:]
		}
		for _, c := range chosen {
			e.moveCard(c, rules.ZoneLibrary)
			p.Library.remove(c.ID)
			p.Library.addBottom(c)
		}
	}
	e.logf("%s keeps %d card(s)", p.Name, p.Hand.Len())
	return nil
}

// RunTurn plays the current turn from untap to cleanup and starts the next
// one.
func (e *Engine) RunTurn(ctx context.Context) error {
	s := e.state
	ctx, span := e.tracer.Start(ctx, "game.turn", trace.WithAttributes(
		attribute.Int("turn", s.TurnNumber()),
		attribute.String("active_player", s.Turn.ActivePlayer()),
	))
	defer span.End()

	active := s.ActivePlayer()
	s.turnWatcher.Reset(active.ID)
	e.logf("Turn %d: %s", s.TurnNumber(), active.Name)
	e.fireEvent(rules.NewEvent(rules.EventBeginTurn, "", active.ID))

	for {
		if err := e.runPhase(ctx, s.Turn.Current()); err != nil {
			span.RecordError(err)
			return err
		}
		if s.IsGameOver {
			return nil
		}
		e.emptyManaPools()
		if _, ok := s.Turn.AdvancePhase(); !ok {
			break
		}
	}
	e.nextTurn(active)
	return nil
}

// RunGame starts the game if needed and runs turns until it ends.
func (e *Engine) RunGame(ctx context.Context) error {
	if !e.state.started {
		if err := e.StartGame(ctx); err != nil {
			return err
		}
	}
	for !e.state.IsGameOver {
		if err := e.RunTurn(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) runPhase(ctx context.Context, def rules.PhaseDef) error {
	s := e.state
	active := s.ActivePlayer()
	e.logger.Debug("phase", zap.String("phase", def.Phase.String()), zap.Int("turn", s.TurnNumber()))

	switch def.Phase {
	case rules.PhaseUntap:
		e.untapStep(active)
	case rules.PhaseUpkeep:
		e.fireEvent(rules.NewEvent(rules.EventUpkeep, "", active.ID))
	case rules.PhaseDraw:
		e.drawStep(active)
	case rules.PhaseCombat:
		return e.RunCombat(ctx)
	case rules.PhaseEnd:
		e.fireEvent(rules.NewEvent(rules.EventEndStep, "", active.ID))
	}
	if s.IsGameOver {
		return nil
	}
	if def.GrantsPriority {
		if err := e.RunPriority(ctx); err != nil {
			return err
		}
	}
	if def.Phase == rules.PhaseEnd && !s.IsGameOver {
		return e.cleanup(ctx, active)
	}
	return nil
}

// untapStep untaps the active player's permanents. A stunned permanent
// instead loses one stun counter and stays as it is.
func (e *Engine) untapStep(p *Player) {
	stunned := false
	for _, c := range p.Battlefield.Cards {
		if c.Counters.Has(counters.Stun) {
			c.Counters.Remove(counters.Stun, 1)
			e.logf("%s stays tapped and loses a stun counter", c.Name())
			stunned = true
			continue
		}
		c.Tapped = false
	}
	if stunned {
		e.RecalculateState()
	}
}

func (e *Engine) drawStep(p *Player) {
	s := e.state
	if e.opts.FirstPlayerSkipsDraw && s.TurnNumber() == 1 && p.ID == s.Players[0].ID {
		e.logf("%s skips the first draw", p.Name)
		return
	}
	if effects.SkipsDraw(e.activeEffects(), p.ID) {
		e.logf("%s skips their draw", p.Name)
		return
	}
	e.draw(p, 1)
}

// cleanup discards down to the maximum hand size and ends "this turn"
// effects and damage.
func (e *Engine) cleanup(ctx context.Context, p *Player) error {
	s := e.state
	if limit := e.opts.MaxHandSize; limit > 0 && p.Hand.Len() > limit {
		if err := e.discardCards(ctx, p, p.Hand.Len()-limit, p.ID); err != nil {
			return err
		}
	}
	for _, c := range s.Battlefield() {
		c.Damage = 0
		c.DeathtouchDamage = false
		c.DamageThisTurn = 0
	}
	s.ActiveEffects = effects.StripEndOfTurn(s.ActiveEffects)
	e.RecalculateState()
	e.logf("Cleanup")
	return nil
}

// emptyManaPools runs between phases. Undo records die with the mana.
func (e *Engine) emptyManaPools() {
	for _, p := range e.state.Players {
		p.ManaPool.Empty()
		p.History = nil
	}
}

// nextTurn picks who goes next: a queued extra turn first, otherwise the
// other player.
func (e *Engine) nextTurn(current *Player) {
	s := e.state
	next := s.Opponent(current.ID).ID
	if len(s.ExtraTurns) > 0 {
		next = s.ExtraTurns[0]
		s.ExtraTurns = s.ExtraTurns[1:]
		if p, err := s.Player(next); err == nil {
			e.logf("%s takes an extra turn", p.Name)
		}
	}
	s.Turn.BeginTurn(next)
}

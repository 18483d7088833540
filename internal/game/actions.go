package game

import (
	"context"

	"go.uber.org/zap"
)

// midCastActions are the only actions accepted while a spell is being paid
// for.
var midCastActions = map[ActionKind]bool{
	ActionPass:            true,
	ActionTapCard:         true,
	ActionUntapCard:       true,
	ActionPayManaFromPool: true,
	ActionPayLife:         true,
	ActionCancelCast:      true,
}

// ExecuteAction validates and performs one player action. A
// *RejectedError leaves the game unchanged; any other error is either
// ErrUnknownPlayer or comes from a decision provider.
func (e *Engine) ExecuteAction(ctx context.Context, a Action) error {
	s := e.state
	p, err := s.Player(a.PlayerID)
	if err != nil {
		return err
	}
	if s.IsGameOver {
		return e.reject(p, CodeGameOver, "the game is over")
	}
	if s.Turn.PriorityPlayer() != p.ID {
		return e.reject(p, CodeNoPriority, "%s does not hold priority", p.Name)
	}
	if s.IsMidCast() && !midCastActions[a.Kind] {
		return e.reject(p, CodeWrongTiming, "finish paying for %s first", s.pending.card.Name())
	}

	prevCause := s.LastCausedBy
	e.causedBy(p.ID)
	err = e.dispatch(ctx, p, a)
	if err != nil {
		if _, ok := IsRejected(err); ok {
			s.LastCausedBy = prevCause
		}
		return err
	}

	e.replay.Record(s.TurnNumber(), s.Phase(), a, e.Checksum())
	e.logger.Debug("action accepted",
		zap.String("player_id", p.ID),
		zap.String("action", string(a.Kind)),
		zap.String("card_id", a.CardID),
	)
	return e.flushTriggers(ctx)
}

func (e *Engine) dispatch(ctx context.Context, p *Player, a Action) error {
	switch a.Kind {
	case ActionPass:
		if e.state.IsMidCast() {
			if err := e.cancelCast(p); err != nil {
				return err
			}
		}
		e.logf("%s passes", p.Name)
		return nil
	case ActionPlayLand:
		return e.playLand(p, a)
	case ActionPlayCard:
		if c := p.Hand.Find(a.CardID); c != nil && c.Def.IsLand() {
			return e.playLand(p, a)
		}
		return e.castSpell(ctx, p, a)
	case ActionCastSpell:
		return e.castSpell(ctx, p, a)
	case ActionTapCard:
		return e.tapForMana(ctx, p, a)
	case ActionUntapCard:
		return e.untapCard(p, a)
	case ActionMoveCard:
		return e.moveCardAction(p, a)
	case ActionActivateAbility:
		return e.activateAbility(ctx, p, a)
	case ActionActivateLoyaltyAbility:
		return e.activateLoyalty(ctx, p, a)
	case ActionActivateFetch:
		return e.activateFetch(p, a)
	case ActionCycle:
		return e.cycle(ctx, p, a)
	case ActionPayManaFromPool:
		return e.payManaFromPool(p, a)
	case ActionPayLife:
		return e.payLife(p)
	case ActionCancelCast:
		return e.cancelCast(p)
	}
	return e.reject(p, CodeNotFound, "unknown action %q", a.Kind)
}

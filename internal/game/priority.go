package game

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// RunPriority runs one priority round: players act until both pass in
// succession. With a non-empty stack the top entry resolves and the round
// continues from the active player; with an empty stack the round ends.
func (e *Engine) RunPriority(ctx context.Context) error {
	s := e.state
	tracker := rules.NewPriorityTracker(e.opts.MaxRejections)
	s.Turn.SetPriority(s.Turn.ActivePlayer())

	// pass hands priority on and reports whether the round is over.
	pass := func(holder string) (bool, error) {
		if !tracker.Pass() {
			s.Turn.SetPriority(s.Opponent(holder).ID)
			return false, nil
		}
		if s.Stack.IsEmpty() {
			return true, nil
		}
		if err := e.resolveTop(ctx); err != nil {
			return false, fmt.Errorf("resolve: %w", err)
		}
		tracker.Reset()
		s.Turn.SetPriority(s.Turn.ActivePlayer())
		return false, nil
	}

	for !s.IsGameOver {
		if err := e.settle(ctx); err != nil {
			return err
		}
		if s.IsGameOver {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		holder := s.Turn.PriorityPlayer()
		a, err := e.provider(holder).GetAction(ctx, s, holder)
		if err != nil {
			return fmt.Errorf("get action for %s: %w", holder, err)
		}
		if a.PlayerID == "" {
			a.PlayerID = holder
		}

		err = e.ExecuteAction(ctx, a)
		if _, rejected := IsRejected(err); rejected {
			if !tracker.Rejected() {
				continue
			}
			p, _ := s.Player(holder)
			e.logger.Warn("decision provider keeps sending illegal actions; passing for it",
				zap.String("player_id", holder),
				zap.Int("limit", e.opts.MaxRejections),
			)
			e.logf("%s made too many illegal actions and passes", p.Name)
			if err := e.ExecuteAction(ctx, Pass(holder)); err != nil {
				return err
			}
			a = Pass(holder)
		} else if err != nil {
			return err
		}

		if a.Kind != ActionPass {
			tracker.Acted()
			continue
		}
		done, err := pass(holder)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return nil
}

// settle performs state-based actions and puts waiting triggers on the stack
// until neither changes anything. It runs every time a player would receive
// priority.
func (e *Engine) settle(ctx context.Context) error {
	for {
		changed := e.checkStateBasedActions()
		if err := e.flushTriggers(ctx); err != nil {
			return err
		}
		if !changed || e.state.IsGameOver {
			return nil
		}
	}
}

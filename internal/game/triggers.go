package game

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// pendingTrigger is a triggered ability waiting to be put on the stack the
// next time a player would receive priority.
type pendingTrigger struct {
	kind         AbilityKind
	controllerID string
	sourceID     string
	sourceName   string
	effect       card.Effect
	spec         *card.TargetSpec
	// target is already fixed for delayed triggers.
	target *TargetInfo
}

// delayedPayload is what a delayed trigger carries until it fires.
type delayedPayload struct {
	Effect card.Effect
	Target *TargetInfo
}

// fireEvent feeds the watchers and collects every trigger ev matches, in APNAP
// order. Nothing is put on the stack here; see flushTriggers.
func (e *Engine) fireEvent(ev rules.Event) {
	s := e.state
	if ev.CausedBy == "" {
		ev.CausedBy = s.LastCausedBy
	}
	s.turnWatcher.Watch(ev)

	var found []pendingTrigger
	add := func(c *GameCard, controllerID string, t card.Trigger) {
		found = append(found, pendingTrigger{
			kind:         AbilityTriggered,
			controllerID: controllerID,
			sourceID:     c.ID,
			sourceName:   c.Name(),
			effect:       t.Effect,
			spec:         t.Target,
		})
	}

	if src, ok := s.FindCard(ev.SourceID); ok && !src.AbilitiesRemoved {
		for _, t := range src.Def.Triggers {
			if t.Condition.Scope() == rules.ScopeSelf && t.Condition.Matches(ev, src.ID, src.ControllerID) {
				add(src, src.ControllerID, t)
			}
		}
	}
	for _, c := range s.Battlefield() {
		if c.AbilitiesRemoved {
			continue
		}
		for _, t := range c.Def.Triggers {
			if t.Condition.Scope() == rules.ScopeBoard && t.Condition.Matches(ev, c.ID, c.ControllerID) {
				add(c, c.ControllerID, t)
			}
		}
	}
	for _, p := range s.Players {
		for _, c := range p.Graveyard.Cards {
			for _, t := range c.Def.Triggers {
				if t.Condition.Scope() == rules.ScopeGraveyard && t.Condition.Matches(ev, c.ID, c.OwnerID) {
					add(c, c.OwnerID, t)
				}
			}
		}
	}
	for _, dt := range s.DelayedTriggers.Collect(ev) {
		payload, ok := dt.Payload.(delayedPayload)
		if !ok {
			e.logger.Warn("delayed trigger without payload", zap.String("trigger_id", dt.ID))
			continue
		}
		name := "delayed trigger"
		if src, ok := s.FindCard(dt.SourceID); ok {
			name = src.Name()
		}
		found = append(found, pendingTrigger{
			kind:         AbilityDelayed,
			controllerID: dt.ControllerID,
			sourceID:     dt.SourceID,
			sourceName:   name,
			effect:       payload.Effect,
			target:       payload.Target,
		})
	}

	if len(found) == 0 {
		return
	}
	s.pendingTrigger = append(s.pendingTrigger, rules.OrderAPNAP(found, triggerController, s.Turn.ActivePlayer())...)
}

func triggerController(t pendingTrigger) string { return t.controllerID }

// flushTriggers puts every pending trigger on the stack, active player's
// first, choosing targets as it goes. A trigger without a legal target, or
// whose controller declines to choose one, is removed.
func (e *Engine) flushTriggers(ctx context.Context) error {
	s := e.state
	for len(s.pendingTrigger) > 0 && !s.IsGameOver {
		batch := rules.OrderAPNAP(s.pendingTrigger, triggerController, s.Turn.ActivePlayer())
		s.pendingTrigger = nil
		for i, t := range batch {
			if err := e.pushTrigger(ctx, t); err != nil {
				s.pendingTrigger = append(batch[i+1:], s.pendingTrigger...)
				return err
			}
		}
	}
	return nil
}

func (e *Engine) pushTrigger(ctx context.Context, t pendingTrigger) error {
	s := e.state
	controller, err := s.Player(t.controllerID)
	if err != nil {
		return err
	}
	target := t.target
	if t.spec != nil && target == nil {
		cards, players := e.targets.Candidates(*t.spec, controller.ID)
		if len(cards)+len(players) == 0 {
			e.logf("%s's trigger has no legal targets and is removed", t.sourceName)
			return nil
		}
		target, err = e.askTarget(ctx, controller, t.sourceID, t.sourceName, *t.spec, cards, players)
		if err != nil {
			return err
		}
		if target == nil {
			e.logf("%s declined a target; %s's trigger is removed", controller.Name, t.sourceName)
			return nil
		}
		if !validChoice(target, cards, players) {
			e.logf("%s chose an illegal target; %s's trigger is removed", controller.Name, t.sourceName)
			return nil
		}
	}
	entry := newAbilityEntry(t.kind, t.sourceID, t.sourceName, controller.ID, t.effect, t.spec, target)
	s.Stack.Push(entry)
	e.logf("Triggered: %s", entry.Describe())
	return nil
}

// askTarget asks the provider for one target among the candidates. A nil
// result is a decline.
func (e *Engine) askTarget(ctx context.Context, p *Player, sourceID, sourceName string, spec card.TargetSpec, cards, players []string) (*TargetInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := TargetRequest{
		SourceID: sourceID,
		Source:   sourceName,
		Spec:     spec,
		CardIDs:  cards,
		Players:  players,
	}
	choice, err := e.provider(p.ID).ChooseTarget(ctx, e.state, p.ID, req)
	if err != nil {
		return nil, fmt.Errorf("choose target for %s: %w", sourceName, err)
	}
	return choice, nil
}

func validChoice(t *TargetInfo, cards, players []string) bool {
	switch {
	case t == nil:
		return false
	case t.CardID != "" && t.PlayerID != "":
		return false
	case t.CardID != "":
		return slices.Contains(cards, t.CardID)
	case t.PlayerID != "":
		return slices.Contains(players, t.PlayerID)
	}
	return false
}

// targetStillLegal re-checks a chosen target on resolution.
func (e *Engine) targetStillLegal(spec *card.TargetSpec, target *TargetInfo, controllerID string) bool {
	if spec == nil || target == nil {
		return true
	}
	if target.PlayerID != "" {
		return e.targets.ValidatePlayer(target.PlayerID, *spec, controllerID) == nil
	}
	return e.targets.ValidateCard(target.CardID, *spec, controllerID) == nil
}

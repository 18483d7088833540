package game

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// combatState tracks one combat phase. Blockers per attacker are kept in
// damage assignment order.
type combatState struct {
	machine    rules.CombatMachine
	defenderID string
	attackers  []string
	blockers   map[string][]string
	blocking   map[string]string
	// blocked remembers attackers that were blocked even if every blocker
	// has since left combat.
	blocked map[string]bool
}

func newCombatState(defenderID string) *combatState {
	return &combatState{
		defenderID: defenderID,
		blockers:   make(map[string][]string),
		blocking:   make(map[string]string),
		blocked:    make(map[string]bool),
	}
}

// remove takes a permanent out of combat.
func (cs *combatState) remove(id string) {
	cs.attackers = slices.DeleteFunc(cs.attackers, func(a string) bool { return a == id })
	delete(cs.blockers, id)
	if att, ok := cs.blocking[id]; ok {
		delete(cs.blocking, id)
		cs.blockers[att] = slices.DeleteFunc(cs.blockers[att], func(b string) bool { return b == id })
	}
}

// CombatStep returns the current combat step, or CombatNone outside combat.
func (e *Engine) CombatStep() rules.CombatStep {
	if e.state.combat == nil {
		return rules.CombatNone
	}
	return e.state.combat.machine.Step()
}

// Attackers returns the IDs of the creatures attacking, in declaration order.
func (e *Engine) Attackers() []string {
	if e.state.combat == nil {
		return nil
	}
	return slices.Clone(e.state.combat.attackers)
}

// Blockers returns the creatures blocking attackerID in damage assignment
// order.
func (e *Engine) Blockers(attackerID string) []string {
	if e.state.combat == nil {
		return nil
	}
	return slices.Clone(e.state.combat.blockers[attackerID])
}

// SetDamageAssignmentOrder replaces the order in which attackerID assigns
// damage among its blockers. order must be a permutation of the current
// blockers.
func (e *Engine) SetDamageAssignmentOrder(attackerID string, order []string) error {
	cs := e.state.combat
	if cs == nil {
		return errors.New("no combat in progress")
	}
	current, ok := cs.blockers[attackerID]
	if !ok || !slices.Contains(cs.attackers, attackerID) {
		return fmt.Errorf("%s is not a blocked attacker", attackerID)
	}
	if len(order) != len(current) {
		return fmt.Errorf("order names %d blockers, %s has %d", len(order), attackerID, len(current))
	}
	sorted, want := slices.Clone(order), slices.Clone(current)
	slices.Sort(sorted)
	slices.Sort(want)
	if !slices.Equal(sorted, want) || len(slices.Compact(sorted)) != len(order) {
		return fmt.Errorf("order %v is not a permutation of the blockers of %s", order, attackerID)
	}
	cs.blockers[attackerID] = slices.Clone(order)
	return nil
}

// RunCombat runs the combat phase. Each step gives priority; without
// attackers the phase skips straight to its end.
func (e *Engine) RunCombat(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "game.combat")
	defer span.End()

	s := e.state
	cs := newCombatState(s.Opponent(s.Turn.ActivePlayer()).ID)
	s.combat = cs
	defer e.endCombat()

	if err := cs.machine.Begin(); err != nil {
		return err
	}
	e.logf("Beginning of combat")
	if err := e.RunPriority(ctx); err != nil {
		return err
	}

	for !s.IsGameOver {
		step, ok := cs.machine.Advance()
		if !ok {
			return nil
		}
		switch step {
		case rules.CombatDeclareAttackers:
			if err := e.declareAttackers(ctx); err != nil {
				return err
			}
			if len(cs.attackers) == 0 {
				e.logf("No attackers are declared")
				if err := cs.machine.SkipTo(rules.CombatEnd); err != nil {
					return err
				}
				e.logf("End of combat")
			}
		case rules.CombatDeclareBlockers:
			if err := e.declareBlockers(ctx); err != nil {
				return err
			}
		case rules.CombatDamage:
			e.dealCombatDamage()
		case rules.CombatEnd:
			e.logf("End of combat")
		}
		if err := e.RunPriority(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) endCombat() {
	s := e.state
	for _, c := range s.Battlefield() {
		c.Attacking = false
		c.Blocking = false
	}
	s.combat = nil
	s.ActiveEffects = effects.StripEndOfCombat(s.ActiveEffects)
	e.RecalculateState()
}

func (e *Engine) canAttack(c *GameCard) bool {
	return c.IsCreature() &&
		!c.Tapped &&
		!c.SummoningSick(e.state.TurnNumber()) &&
		!c.HasKeyword(effects.Defender)
}

// currentObject is the layer-system view of a permanent as it is now.
func currentObject(c *GameCard) *effects.Object {
	return &effects.Object{
		CardID:       c.ID,
		ControllerID: c.ControllerID,
		Types:        c.Types,
		Subtypes:     c.Subtypes,
		Keywords:     c.ActiveKeywords,
		Power:        c.EffectivePower,
		Toughness:    c.EffectiveToughness,
	}
}

// attackCap returns the hand size capping c's attack, if any cap forbids it.
func (e *Engine) attackCap(c *GameCard) (int, bool) {
	s := e.state
	for _, ef := range effects.AttackCaps(e.activeEffects(), currentObject(c)) {
		owner, err := s.Player(ef.ControllerID)
		if err != nil {
			continue
		}
		if c.EffectivePower > owner.Hand.Len() {
			return owner.Hand.Len(), true
		}
	}
	return 0, false
}

func (e *Engine) declareAttackers(ctx context.Context) error {
	s := e.state
	cs := s.combat
	active := s.ActivePlayer()

	var candidates []*GameCard
	for _, c := range active.Battlefield.Cards {
		if e.canAttack(c) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	picked, err := e.provider(active.ID).ChooseCards(ctx, s, active.ID, CardChoice{
		Reason:     ChooseAttackers,
		Prompt:     "declare attackers",
		Candidates: candidates,
		Min:        0,
		Max:        len(candidates),
	})
	if err != nil {
		return fmt.Errorf("choose attackers: %w", err)
	}
	chosen, ok := pickFrom(picked, candidates, 0, len(candidates))
	if !ok {
		e.logf("%s declared an illegal attack; no optional attackers", active.Name)
		chosen = nil
	}
	for _, c := range candidates {
		if c.HasKeyword(effects.MustAttack) && !slices.Contains(chosen, c) {
			chosen = append(chosen, c)
		}
	}

	for _, c := range chosen {
		if limit, capped := e.attackCap(c); capped {
			e.logf("%s cannot attack: power %d exceeds %d", c.Name(), c.EffectivePower, limit)
			continue
		}
		c.Attacking = true
		if !c.HasKeyword(effects.Vigilance) {
			c.Tapped = true
		}
		cs.attackers = append(cs.attackers, c.ID)
		e.logf("%s attacks", c.Name())
	}
	for _, id := range cs.attackers {
		ev := rules.NewEvent(rules.EventAttackerDeclared, id, active.ID)
		ev.TargetID = cs.defenderID
		e.fireEvent(ev)
	}
	return nil
}

func (e *Engine) canBlock(attacker, blocker *GameCard) bool {
	if !blocker.IsCreature() || blocker.Tapped {
		return false
	}
	if attacker.HasKeyword(effects.Flying) && !blocker.HasKeyword(effects.Flying) && !blocker.HasKeyword(effects.Reach) {
		return false
	}
	if only := attacker.Def.BlockableOnlyBy; only != "" && !blocker.HasSubtype(only) {
		return false
	}
	return true
}

// unblockable reports landwalk evasion against defender.
func unblockable(attacker *GameCard, defender *Player) bool {
	walk := attacker.Def.Landwalk
	if walk == "" {
		return false
	}
	return slices.ContainsFunc(defender.Battlefield.Cards, func(c *GameCard) bool {
		return c.HasType("Land") && c.HasSubtype(walk)
	})
}

func (e *Engine) declareBlockers(ctx context.Context) error {
	s := e.state
	cs := s.combat
	defender, err := s.Player(cs.defenderID)
	if err != nil {
		return err
	}
	prov := e.provider(defender.ID)

	for _, attID := range slices.Clone(cs.attackers) {
		att, ok := s.Permanent(attID)
		if !ok {
			continue
		}
		if unblockable(att, defender) {
			e.logf("%s can't be blocked (%swalk)", att.Name(), att.Def.Landwalk)
			continue
		}
		var candidates []*GameCard
		for _, b := range defender.Battlefield.Cards {
			if _, busy := cs.blocking[b.ID]; !busy && e.canBlock(att, b) {
				candidates = append(candidates, b)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		picked, err := prov.ChooseCards(ctx, s, defender.ID, CardChoice{
			Reason:     ChooseBlockers,
			Prompt:     "block " + att.Name(),
			Candidates: candidates,
			Min:        0,
			Max:        len(candidates),
			AttackerID: att.ID,
		})
		if err != nil {
			return fmt.Errorf("choose blockers: %w", err)
		}
		chosen, ok := pickFrom(picked, candidates, 0, len(candidates))
		if !ok {
			e.logf("%s declared an illegal block against %s; it is unblocked", defender.Name, att.Name())
			continue
		}
		for _, b := range chosen {
			b.Blocking = true
			cs.blocking[b.ID] = att.ID
			cs.blockers[att.ID] = append(cs.blockers[att.ID], b.ID)
			cs.blocked[att.ID] = true
			e.logf("%s blocks %s", b.Name(), att.Name())
		}
	}

	if err := e.orderBlockers(ctx); err != nil {
		return err
	}
	for _, attID := range cs.attackers {
		for _, b := range cs.blockers[attID] {
			ev := rules.NewEvent(rules.EventBlockerDeclared, b, defender.ID)
			ev.TargetID = attID
			e.fireEvent(ev)
		}
	}
	return nil
}

// orderBlockers asks the attacking player to order multiple blockers. An
// invalid answer keeps declaration order.
func (e *Engine) orderBlockers(ctx context.Context) error {
	s := e.state
	cs := s.combat
	active := s.ActivePlayer()
	for _, attID := range cs.attackers {
		ids := cs.blockers[attID]
		if len(ids) < 2 {
			continue
		}
		blockers := make([]*GameCard, 0, len(ids))
		for _, id := range ids {
			if b, ok := s.Permanent(id); ok {
				blockers = append(blockers, b)
			}
		}
		picked, err := e.provider(active.ID).ChooseCards(ctx, s, active.ID, CardChoice{
			Reason:     ChooseDamageOrder,
			Prompt:     "order blockers for damage",
			Candidates: blockers,
			Min:        len(blockers),
			Max:        len(blockers),
			AttackerID: attID,
		})
		if err != nil {
			return fmt.Errorf("choose damage order: %w", err)
		}
		ordered, ok := pickFrom(picked, blockers, len(blockers), len(blockers))
		if !ok {
			continue
		}
		order := make([]string, len(ordered))
		for i, b := range ordered {
			order[i] = b.ID
		}
		if err := e.SetDamageAssignmentOrder(attID, order); err != nil {
			e.logger.Warn("damage order refused", zap.String("attacker_id", attID), zap.Error(err))
		}
	}
	return nil
}

// combatHit is one assignment of combat damage.
type combatHit struct {
	src    *GameCard
	card   *GameCard
	player *Player
	amount int
}

// assignAttackerDamage splits an attacker's power among its blockers in
// order, lethal damage to each before the next. Trample sends the rest to
// the defending player.
func assignAttackerDamage(att *GameCard, blockers []*GameCard, defender *Player) []combatHit {
	remaining := att.EffectivePower
	trample := att.HasKeyword(effects.Trample)
	deathtouch := att.HasKeyword(effects.Deathtouch)
	var hits []combatHit
	for i, b := range blockers {
		if remaining <= 0 {
			break
		}
		lethal := max(b.EffectiveToughness-b.Damage, 0)
		if deathtouch && lethal > 1 {
			lethal = 1
		}
		n := min(remaining, lethal)
		if i == len(blockers)-1 && !trample {
			n = remaining
		}
		if n > 0 {
			hits = append(hits, combatHit{src: att, card: b, amount: n})
			remaining -= n
		}
	}
	if remaining > 0 && trample {
		hits = append(hits, combatHit{src: att, player: defender, amount: remaining})
	}
	return hits
}

// dealCombatDamage assigns all combat damage first and then deals it at once.
func (e *Engine) dealCombatDamage() {
	s := e.state
	cs := s.combat
	defender, err := s.Player(cs.defenderID)
	if err != nil {
		return
	}

	var hits []combatHit
	for _, attID := range cs.attackers {
		att, ok := s.Permanent(attID)
		if !ok || att.EffectivePower <= 0 {
			continue
		}
		if !cs.blocked[attID] {
			hits = append(hits, combatHit{src: att, player: defender, amount: att.EffectivePower})
			continue
		}
		var blockers []*GameCard
		for _, id := range cs.blockers[attID] {
			if b, ok := s.Permanent(id); ok {
				blockers = append(blockers, b)
			}
		}
		if len(blockers) == 0 {
			if att.HasKeyword(effects.Trample) {
				hits = append(hits, combatHit{src: att, player: defender, amount: att.EffectivePower})
			}
			continue
		}
		hits = append(hits, assignAttackerDamage(att, blockers, defender)...)
	}
	for _, attID := range cs.attackers {
		att, ok := s.Permanent(attID)
		if !ok {
			continue
		}
		for _, id := range cs.blockers[attID] {
			b, ok := s.Permanent(id)
			if ok && b.EffectivePower > 0 {
				hits = append(hits, combatHit{src: b, card: att, amount: b.EffectivePower})
			}
		}
	}

	e.causedBy(s.Turn.ActivePlayer())
	var linked []*GameCard
	lifelink := make(map[*GameCard]int)
	for _, h := range hits {
		dealt := 0
		if h.player != nil {
			dealt = e.damagePlayer(h.player, h.amount, h.src.ID, h.src.Name())
			if dealt > 0 {
				ev := rules.NewEvent(rules.EventCombatDamageToPlayer, h.src.ID, h.player.ID)
				ev.TargetID = h.player.ID
				ev.Amount = dealt
				e.fireEvent(ev)
			}
		} else {
			dealt = e.damagePermanent(h.card, h.amount, h.src.HasKeyword(effects.Deathtouch))
		}
		if dealt > 0 && h.src.HasKeyword(effects.Lifelink) {
			if _, seen := lifelink[h.src]; !seen {
				linked = append(linked, h.src)
			}
			lifelink[h.src] += dealt
		}
	}
	for _, src := range linked {
		if p, err := s.Player(src.ControllerID); err == nil {
			e.gainLife(p, lifelink[src], src.ID)
		}
	}
}

package game

import (
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// checkStateBasedActions applies state-based actions until none applies and
// reports whether anything happened. Players at 0 or less life lose together,
// so both losing at once is a draw.
func (e *Engine) checkStateBasedActions() bool {
	s := e.state
	changed := false
	for !s.IsGameOver {
		var losers []*Player
		for _, p := range s.Players {
			if !p.Lost && p.Life <= 0 {
				losers = append(losers, p)
			}
		}
		if len(losers) > 0 {
			for _, p := range losers {
				p.Lost = true
				e.logf("%s loses the game (life total %d)", p.Name, p.Life)
			}
			e.settleGameOver()
			return true
		}

		var dying []*GameCard
		for _, c := range s.Battlefield() {
			if reason, dies := lethalState(c); dies {
				e.logf("%s is put into the graveyard (%s)", c.Name(), reason)
				dying = append(dying, c)
			}
		}
		if len(dying) == 0 {
			break
		}
		e.causedBy("")
		for _, c := range dying {
			if c.Zone == rules.ZoneBattlefield {
				e.moveCard(c, rules.ZoneGraveyard)
			}
		}
		changed = true
	}
	return changed
}

// lethalState reports whether a permanent must leave the battlefield.
func lethalState(c *GameCard) (string, bool) {
	if c.IsCreature() {
		if c.EffectiveToughness <= 0 {
			return "toughness 0 or less", true
		}
		if !c.HasKeyword(effects.Indestructible) {
			if c.Damage >= c.EffectiveToughness {
				return "lethal damage", true
			}
			if c.DeathtouchDamage && c.Damage > 0 {
				return "deathtouch damage", true
			}
		}
	}
	if c.HasType("Planeswalker") && c.Loyalty() <= 0 {
		return "no loyalty", true
	}
	return "", false
}

package game

import (
	"slices"

	"github.com/magefree/mage-rules-go/internal/game/effects"
)

// RecalculateState drops effects whose source is gone and recomputes every
// permanent's characteristics from scratch. It is idempotent.
//
// A permanent that loses its abilities also stops generating its static
// effects. That is found with a first pass; when any source turns out to be
// stripped, a second pass runs without its statics.
func (e *Engine) RecalculateState() {
	s := e.state
	board := boardView{s}
	s.ActiveEffects = effects.Prune(s.ActiveEffects, board)

	perms := s.Battlefield()
	objects := make([]*effects.Object, len(perms))
	for i, c := range perms {
		objects[i] = objectFor(c)
	}

	effects.Recalculate(objects, s.ActiveEffects, board)

	stripped := make(map[string]bool)
	for _, o := range objects {
		if o.AbilitiesRemoved {
			stripped[o.CardID] = true
		}
	}
	if len(stripped) > 0 {
		active := slices.DeleteFunc(slices.Clone(s.ActiveEffects), func(ef effects.Effect) bool {
			return stripped[ef.SourceID] && ef.Duration == effects.DurationWhileOnBattlefield
		})
		effects.Recalculate(objects, active, board)
	}

	for i, c := range perms {
		o := objects[i]
		c.Types = slices.Clone(o.Types)
		c.Subtypes = slices.Clone(o.Subtypes)
		c.ActiveKeywords = o.Keywords
		c.EffectivePower = o.Power
		c.EffectiveToughness = o.Toughness
		c.AbilitiesRemoved = o.AbilitiesRemoved
	}
	for _, p := range s.Players {
		for _, z := range []*Zone{p.Library, p.Hand, p.Graveyard, p.Exile} {
			for _, c := range z.Cards {
				c.resetCharacteristics()
			}
		}
	}
}

// objectFor builds the layer-system view of a card from its printed values
// and counters.
func objectFor(c *GameCard) *effects.Object {
	cp, ct := c.Counters.Boost()
	return &effects.Object{
		CardID:           c.ID,
		ControllerID:     c.ControllerID,
		BaseTypes:        c.Def.Types,
		BaseSubtypes:     c.Def.Subtypes,
		BaseKeywords:     effects.NewKeywordSet(c.Def.Keywords...),
		BasePower:        c.BasePower,
		BaseToughness:    c.BaseToughness,
		CounterPower:     cp,
		CounterToughness: ct,
	}
}

// activeEffects returns the effects that still apply given stripped sources.
// Player-level queries use it so a stripped permanent grants nothing.
func (e *Engine) activeEffects() []effects.Effect {
	s := e.state
	return slices.DeleteFunc(slices.Clone(s.ActiveEffects), func(ef effects.Effect) bool {
		if ef.Duration != effects.DurationWhileOnBattlefield {
			return false
		}
		src, ok := s.Permanent(ef.SourceID)
		return ok && src.AbilitiesRemoved
	})
}

// boardView answers the layer system's questions about the game.
type boardView struct {
	s *GameState
}

func (b boardView) SourcePresent(sourceID string) bool {
	if _, ok := b.s.Permanent(sourceID); ok {
		return true
	}
	return b.s.emblem(sourceID)
}

// CountMatching counts with the characteristics from the previous pass, so a
// count never depends on effects applied later in the same pass.
func (b boardView) CountMatching(zone effects.CountZone, scope effects.CountScope, controllerID, cardType, subtype string) int {
	n := 0
	for _, p := range b.s.Players {
		switch scope {
		case effects.ScopeController:
			if p.ID != controllerID {
				continue
			}
		case effects.ScopeOpponents:
			if p.ID == controllerID {
				continue
			}
		}
		var z *Zone
		switch zone {
		case effects.ZoneGraveyard:
			z = p.Graveyard
		case effects.ZoneHand:
			z = p.Hand
		default:
			z = p.Battlefield
		}
		for _, c := range z.Cards {
			if cardType != "" && !c.HasType(cardType) {
				continue
			}
			if subtype != "" && !c.HasSubtype(subtype) {
				continue
			}
			n++
		}
	}
	return n
}

package targeting

import (
	"fmt"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// Validator checks targets against a card.TargetSpec on behalf of the player
// who controls the spell or ability.
type Validator struct {
	gameState GameStateAccessor
}

// NewValidator creates a validator over the given game.
func NewValidator(gameState GameStateAccessor) *Validator {
	return &Validator{gameState: gameState}
}

// ValidateCard checks that cardID is a legal target.
func (v *Validator) ValidateCard(cardID string, spec card.TargetSpec, controllerID string) error {
	if !spec.AllowsCards() {
		return fmt.Errorf("%w: %s does not allow cards", ErrIllegalTarget, spec.Kind)
	}
	c, ok := v.gameState.FindCardForTarget(cardID)
	if !ok {
		return fmt.Errorf("%w: card %s not found", ErrIllegalTarget, cardID)
	}
	return checkCard(c, spec, controllerID)
}

// ValidatePlayer checks that playerID is a legal target.
func (v *Validator) ValidatePlayer(playerID string, spec card.TargetSpec, controllerID string) error {
	if !spec.AllowsPlayers() {
		return fmt.Errorf("%w: %s does not allow players", ErrIllegalTarget, spec.Kind)
	}
	p, ok := v.gameState.FindPlayerForTarget(playerID)
	if !ok {
		return fmt.Errorf("%w: player %s not found", ErrIllegalTarget, playerID)
	}
	return checkPlayer(p, spec, controllerID)
}

// Candidates lists every legal card and player target, in the accessor's
// order.
func (v *Validator) Candidates(spec card.TargetSpec, controllerID string) (cardIDs, playerIDs []string) {
	if spec.AllowsCards() {
		for _, c := range v.gameState.CardsForTarget() {
			if checkCard(c, spec, controllerID) == nil {
				cardIDs = append(cardIDs, c.ID)
			}
		}
	}
	if spec.AllowsPlayers() {
		for _, p := range v.gameState.PlayersForTarget() {
			if checkPlayer(p, spec, controllerID) == nil {
				playerIDs = append(playerIDs, p.ID)
			}
		}
	}
	return cardIDs, playerIDs
}

// HasLegalTarget reports whether at least one candidate exists.
func (v *Validator) HasLegalTarget(spec card.TargetSpec, controllerID string) bool {
	cards, players := v.Candidates(spec, controllerID)
	return len(cards)+len(players) > 0
}

func checkCard(c CardInfo, spec card.TargetSpec, controllerID string) error {
	switch spec.Kind {
	case card.TargetCreature, card.TargetCreatureOrPlayer:
		if c.Zone != rules.ZoneBattlefield || !c.hasType("Creature") {
			return fmt.Errorf("%w: %s is not a creature on the battlefield", ErrIllegalTarget, c.Name)
		}
	case card.TargetPermanent:
		if c.Zone != rules.ZoneBattlefield {
			return fmt.Errorf("%w: %s is not a permanent", ErrIllegalTarget, c.Name)
		}
	case card.TargetSpell:
		if c.Zone != rules.ZoneStack {
			return fmt.Errorf("%w: %s is not on the stack", ErrIllegalTarget, c.Name)
		}
	case card.TargetGraveyardCard:
		if c.Zone != rules.ZoneGraveyard {
			return fmt.Errorf("%w: %s is not in a graveyard", ErrIllegalTarget, c.Name)
		}
	default:
		return fmt.Errorf("%w: %s cannot be a card", ErrIllegalTarget, spec.Kind)
	}
	if spec.CardType != "" && !c.hasType(spec.CardType) {
		return fmt.Errorf("%w: %s is not a %s", ErrIllegalTarget, c.Name, spec.CardType)
	}
	if spec.Subtype != "" && !c.hasSubtype(spec.Subtype) {
		return fmt.Errorf("%w: %s is not a %s", ErrIllegalTarget, c.Name, spec.Subtype)
	}
	subject := c.ControllerID
	if c.Zone == rules.ZoneGraveyard {
		subject = c.OwnerID
	}
	if !controllerMatches(spec.Controller, subject, controllerID) {
		return fmt.Errorf("%w: %s has the wrong controller", ErrIllegalTarget, c.Name)
	}
	if c.Zone == rules.ZoneBattlefield {
		if c.Keywords.Has(effects.Shroud) {
			return fmt.Errorf("%w: %s has shroud", ErrIllegalTarget, c.Name)
		}
		if c.Keywords.Has(effects.Hexproof) && c.ControllerID != controllerID {
			return fmt.Errorf("%w: %s has hexproof", ErrIllegalTarget, c.Name)
		}
	}
	return nil
}

func checkPlayer(p PlayerInfo, spec card.TargetSpec, controllerID string) error {
	if p.Lost {
		return fmt.Errorf("%w: %s has lost the game", ErrIllegalTarget, p.Name)
	}
	if p.Shroud {
		return fmt.Errorf("%w: %s has shroud", ErrIllegalTarget, p.Name)
	}
	if !controllerMatches(spec.Controller, p.ID, controllerID) {
		return fmt.Errorf("%w: %s is not an allowed player", ErrIllegalTarget, p.Name)
	}
	return nil
}

func controllerMatches(scope effects.ControllerScope, subject, controllerID string) bool {
	switch scope {
	case effects.You:
		return subject == controllerID
	case effects.Opponents:
		return subject != controllerID
	}
	return true
}

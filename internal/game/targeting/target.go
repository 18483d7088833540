// Package targeting decides which cards and players a spell or ability may
// target.
package targeting

import (
	"errors"
	"slices"
	"strings"

	"github.com/magefree/mage-rules-go/internal/game/effects"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// ErrIllegalTarget is wrapped by every validation failure.
var ErrIllegalTarget = errors.New("illegal target")

// CardInfo is what target validation needs to know about a card.
type CardInfo struct {
	ID           string
	Name         string
	Zone         rules.Zone
	ControllerID string
	OwnerID      string
	Types        []string
	Subtypes     []string
	Keywords     effects.KeywordSet
}

func (c CardInfo) hasType(t string) bool {
	return slices.ContainsFunc(c.Types, func(s string) bool { return strings.EqualFold(s, t) })
}

func (c CardInfo) hasSubtype(t string) bool {
	return slices.ContainsFunc(c.Subtypes, func(s string) bool { return strings.EqualFold(s, t) })
}

// PlayerInfo is what target validation needs to know about a player.
type PlayerInfo struct {
	ID     string
	Name   string
	Lost   bool
	Shroud bool
}

// GameStateAccessor exposes the targetable parts of a game.
type GameStateAccessor interface {
	// FindCardForTarget finds a card on the battlefield, on the stack or in a
	// graveyard.
	FindCardForTarget(cardID string) (CardInfo, bool)
	FindPlayerForTarget(playerID string) (PlayerInfo, bool)
	// CardsForTarget lists every card in a targetable zone in a stable order.
	CardsForTarget() []CardInfo
	PlayersForTarget() []PlayerInfo
}

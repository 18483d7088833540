package game

import (
	"context"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/mana"
)

// DecisionProvider supplies every choice a player makes. A nil result (or a
// nil *TargetInfo, *mana.Color, map) is a decline, not an error. Returned
// errors abort the game loop.
type DecisionProvider interface {
	GetAction(ctx context.Context, state *GameState, playerID string) (Action, error)
	ChooseTarget(ctx context.Context, state *GameState, playerID string, req TargetRequest) (*TargetInfo, error)
	ChooseCards(ctx context.Context, state *GameState, playerID string, choice CardChoice) ([]*GameCard, error)
	ChooseManaColor(ctx context.Context, playerID string, options []mana.Color) (*mana.Color, error)
	ChooseGenericPayment(ctx context.Context, playerID string, amount int, available map[mana.Color]int) (map[mana.Color]int, error)
	GetMulliganDecision(ctx context.Context, playerID string, hand []*GameCard, mulligans int) (MulliganDecision, error)
}

// TargetRequest lists the legal targets for one spell or ability.
type TargetRequest struct {
	SourceID string
	Source   string
	Spec     card.TargetSpec
	CardIDs  []string
	Players  []string
}

// TargetInfo is a chosen target: a card or a player.
type TargetInfo struct {
	CardID   string `json:"card_id,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
}

func (t *TargetInfo) String() string {
	if t == nil {
		return "no target"
	}
	if t.PlayerID != "" {
		return "player " + t.PlayerID
	}
	return "card " + t.CardID
}

func (t *TargetInfo) id() string {
	if t.PlayerID != "" {
		return t.PlayerID
	}
	return t.CardID
}

// ChoiceReason says why ChooseCards is being asked.
type ChoiceReason string

const (
	ChooseAttackers       ChoiceReason = "attackers"
	ChooseBlockers        ChoiceReason = "blockers"
	ChooseDamageOrder     ChoiceReason = "damage_order"
	ChooseDiscard         ChoiceReason = "discard"
	ChooseDelve           ChoiceReason = "delve"
	ChooseBottom          ChoiceReason = "bottom"
	ChooseSearch          ChoiceReason = "search"
	ChooseReturnPermanent ChoiceReason = "return_permanent"
)

// CardChoice asks for between Min and Max cards from Candidates.
type CardChoice struct {
	Reason     ChoiceReason
	Prompt     string
	Candidates []*GameCard
	Min        int
	Max        int
	// AttackerID is set for blocker and damage-order choices.
	AttackerID string
}

// MulliganDecision is the answer to a mulligan prompt.
type MulliganDecision int

const (
	Keep MulliganDecision = iota
	Mulligan
)

func (d MulliganDecision) String() string {
	if d == Mulligan {
		return "mulligan"
	}
	return "keep"
}

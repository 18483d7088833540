package game

import (
	"fmt"

	"github.com/magefree/mage-rules-go/internal/game/mana"
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// ActionKind is what a player asks to do while holding priority.
type ActionKind string

const (
	ActionPass                   ActionKind = "Pass"
	ActionPlayLand               ActionKind = "PlayLand"
	ActionPlayCard               ActionKind = "PlayCard"
	ActionCastSpell              ActionKind = "CastSpell"
	ActionTapCard                ActionKind = "TapCard"
	ActionUntapCard              ActionKind = "UntapCard"
	ActionMoveCard               ActionKind = "MoveCard"
	ActionActivateAbility        ActionKind = "ActivateAbility"
	ActionActivateLoyaltyAbility ActionKind = "ActivateLoyaltyAbility"
	ActionActivateFetch          ActionKind = "ActivateFetch"
	ActionCycle                  ActionKind = "Cycle"
	ActionPayManaFromPool        ActionKind = "PayManaFromPool"
	ActionPayLife                ActionKind = "PayLife"
	ActionCancelCast             ActionKind = "CancelCast"
)

// Action is one player request. Which fields matter depends on Kind.
type Action struct {
	Kind           ActionKind `json:"kind"`
	PlayerID       string     `json:"player_id"`
	CardID         string     `json:"card_id,omitempty"`
	TargetID       string     `json:"target_id,omitempty"`
	TargetPlayerID string     `json:"target_player_id,omitempty"`
	From           rules.Zone `json:"from,omitempty"`
	To             rules.Zone `json:"to,omitempty"`
	// AbilityIndex selects an activated, loyalty or mana ability.
	AbilityIndex     int        `json:"ability_index,omitempty"`
	Color            mana.Color `json:"color,omitempty"`
	UseAlternateCost bool       `json:"use_alternate_cost,omitempty"`
	// X is the value chosen for {X} in the cost.
	X int `json:"x,omitempty"`
}

// Pass is shorthand for a pass action.
func Pass(playerID string) Action {
	return Action{Kind: ActionPass, PlayerID: playerID}
}

func (a Action) String() string {
	if a.CardID == "" {
		return fmt.Sprintf("%s by %s", a.Kind, a.PlayerID)
	}
	return fmt.Sprintf("%s %s by %s", a.Kind, a.CardID, a.PlayerID)
}

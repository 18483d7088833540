// Package remote lets players take part in a game over a websocket. Each seat
// is a game.DecisionProvider that forwards every decision to its client as a
// JSON request and waits for the matching response.
package remote

import (
	"encoding/json"

	"github.com/magefree/mage-rules-go/internal/game"
	"github.com/magefree/mage-rules-go/internal/game/mana"
)

// MessageType names a frame on the wire.
type MessageType string

const (
	// Server to client.
	TypeWelcome        MessageType = "welcome"
	TypeAction         MessageType = "action"
	TypeTarget         MessageType = "target"
	TypeCards          MessageType = "cards"
	TypeManaColor      MessageType = "mana_color"
	TypeGenericPayment MessageType = "generic_payment"
	TypeMulligan       MessageType = "mulligan"
	TypeState          MessageType = "state"
	TypeGameOver       MessageType = "game_over"

	// Client to server.
	TypeResponse MessageType = "response"
)

// Message is one websocket frame. Requests carry a Seq that the response
// must echo.
type Message struct {
	Type     MessageType     `json:"type"`
	Seq      uint64          `json:"seq,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// ActionRequest asks for the next action while holding priority.
type ActionRequest struct {
	View GameView `json:"view"`
}

// TargetRequest asks for one target.
type TargetRequest struct {
	Source   string   `json:"source"`
	SourceID string   `json:"source_id"`
	CardIDs  []string `json:"card_ids"`
	Players  []string `json:"players"`
	View     GameView `json:"view"`
}

// CardsRequest asks for between Min and Max of the candidate cards.
type CardsRequest struct {
	Reason     game.ChoiceReason `json:"reason"`
	Prompt     string            `json:"prompt"`
	Candidates []CardView        `json:"candidates"`
	Min        int               `json:"min"`
	Max        int               `json:"max"`
	AttackerID string            `json:"attacker_id,omitempty"`
	View       GameView          `json:"view"`
}

// ManaColorRequest asks which color a mana ability should produce.
type ManaColorRequest struct {
	Options []mana.Color `json:"options"`
}

// GenericPaymentRequest asks how to pay Amount generic mana from Available.
type GenericPaymentRequest struct {
	Amount    int                `json:"amount"`
	Available map[mana.Color]int `json:"available"`
}

// MulliganRequest shows the opening hand.
type MulliganRequest struct {
	Hand      []CardView `json:"hand"`
	Mulligans int        `json:"mulligans"`
}

// CardsResponse lists chosen card ids.
type CardsResponse struct {
	CardIDs []string `json:"card_ids"`
}

// ManaColorResponse is empty to decline.
type ManaColorResponse struct {
	Color mana.Color `json:"color,omitempty"`
}

// GenericPaymentResponse is nil to decline.
type GenericPaymentResponse struct {
	Allocation map[mana.Color]int `json:"allocation"`
}

// MulliganResponse answers a mulligan prompt.
type MulliganResponse struct {
	Mulligan bool `json:"mulligan"`
}

// GameOverNotice is sent to both seats when the game ends.
type GameOverNotice struct {
	Winner   string `json:"winner,omitempty"`
	Draw     bool   `json:"draw"`
	Checksum string `json:"checksum"`
}

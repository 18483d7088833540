package game

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/magefree/mage-rules-go/internal/game/mana"
)

// ErrUnknownPlayer is returned for actions naming a player not in the game.
// It indicates a host bug and is never logged to the game log.
var ErrUnknownPlayer = errors.New("unknown player")

// ErrMidCastPending is returned when a cast starts while another is unpaid.
var ErrMidCastPending = mana.ErrMidCastPending

// RejectCode classifies why an action was refused.
type RejectCode string

const (
	CodeWrongTiming      RejectCode = "WRONG_TIMING"
	CodeInsufficientMana RejectCode = "INSUFFICIENT_MANA"
	CodeInvalidTarget    RejectCode = "INVALID_TARGET"
	CodeNoLegalTargets   RejectCode = "NO_LEGAL_TARGETS"
	CodeAbilityUsed      RejectCode = "ABILITY_USED"
	CodeCostUnmet        RejectCode = "COST_UNMET"
	CodeNotFound         RejectCode = "NOT_FOUND"
	CodeNoPriority       RejectCode = "NO_PRIORITY"
	CodeGameOver         RejectCode = "GAME_OVER"
	CodeNotMidCast       RejectCode = "NOT_MID_CAST"
	// CodeDeclined means the player backed out of a choice the action needed.
	// Nothing changed.
	CodeDeclined RejectCode = "DECLINED"
)

var grpcCodes = map[RejectCode]codes.Code{
	CodeWrongTiming:      codes.FailedPrecondition,
	CodeInsufficientMana: codes.FailedPrecondition,
	CodeInvalidTarget:    codes.InvalidArgument,
	CodeNoLegalTargets:   codes.FailedPrecondition,
	CodeAbilityUsed:      codes.FailedPrecondition,
	CodeCostUnmet:        codes.FailedPrecondition,
	CodeNotFound:         codes.NotFound,
	CodeNoPriority:       codes.PermissionDenied,
	CodeGameOver:         codes.Aborted,
	CodeNotMidCast:       codes.FailedPrecondition,
	CodeDeclined:         codes.Canceled,
}

// RejectedError reports an illegal action. The game state is unchanged and
// the acting player keeps priority.
type RejectedError struct {
	Code   RejectCode
	Reason string
	cause  error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected (%s): %s", e.Code, e.Reason)
}

func (e *RejectedError) Unwrap() error {
	return e.cause
}

// GRPCStatus lets status.FromError and the grpc server convert rejections.
func (e *RejectedError) GRPCStatus() *status.Status {
	code, ok := grpcCodes[e.Code]
	if !ok {
		code = codes.Unknown
	}
	return status.New(code, e.Error())
}

// IsRejected reports whether err is a rejection and returns it.
func IsRejected(err error) (*RejectedError, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

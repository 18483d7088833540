package rules

import (
	"fmt"
	"strings"
)

// Phase is one entry of the fixed turn sequence.
type Phase int

const (
	PhaseUntap Phase = iota
	PhaseUpkeep
	PhaseDraw
	PhaseMain1
	PhaseCombat
	PhaseMain2
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseUntap:  "UNTAP",
	PhaseUpkeep: "UPKEEP",
	PhaseDraw:   "DRAW",
	PhaseMain1:  "MAIN1",
	PhaseCombat: "COMBAT",
	PhaseMain2:  "MAIN2",
	PhaseEnd:    "END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// IsMain reports whether sorcery-speed actions are possible in p.
func (p Phase) IsMain() bool {
	return p == PhaseMain1 || p == PhaseMain2
}

// PhaseDef describes how a phase behaves.
type PhaseDef struct {
	Phase              Phase
	GrantsPriority     bool
	HasTurnBasedAction bool
}

var turnSequence = []PhaseDef{
	{Phase: PhaseUntap, GrantsPriority: false, HasTurnBasedAction: true},
	{Phase: PhaseUpkeep, GrantsPriority: true},
	{Phase: PhaseDraw, GrantsPriority: true, HasTurnBasedAction: true},
	{Phase: PhaseMain1, GrantsPriority: true},
	{Phase: PhaseCombat, GrantsPriority: true},
	{Phase: PhaseMain2, GrantsPriority: true},
	{Phase: PhaseEnd, GrantsPriority: true},
}

// Sequence returns a copy of the fixed phase sequence.
func Sequence() []PhaseDef {
	return append([]PhaseDef(nil), turnSequence...)
}

// TurnManager tracks the turn number, the active and priority players and the
// current phase.
type TurnManager struct {
	orderIndex     int
	turnNumber     int
	activePlayer   string
	priorityPlayer string
}

// NewTurnManager creates a turn manager at turn 1, untap phase.
func NewTurnManager(activePlayer string) *TurnManager {
	active := strings.TrimSpace(activePlayer)
	return &TurnManager{
		turnNumber:     1,
		activePlayer:   active,
		priorityPlayer: active,
	}
}

// Current returns the definition of the phase in progress.
func (tm *TurnManager) Current() PhaseDef {
	return turnSequence[tm.orderIndex]
}

// CurrentPhase returns the phase in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return tm.Current().Phase
}

// TurnNumber returns the 1-based turn number.
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the player whose turn it is.
func (tm *TurnManager) ActivePlayer() string {
	return tm.activePlayer
}

// PriorityPlayer returns the player holding priority.
func (tm *TurnManager) PriorityPlayer() string {
	return tm.priorityPlayer
}

// SetPriority hands priority to player.
func (tm *TurnManager) SetPriority(player string) {
	tm.priorityPlayer = strings.TrimSpace(player)
}

// AdvancePhase moves to the next phase and returns it. ok is false once the
// end phase has completed; the caller then starts a new turn with BeginTurn.
func (tm *TurnManager) AdvancePhase() (PhaseDef, bool) {
	if tm.orderIndex+1 >= len(turnSequence) {
		return PhaseDef{}, false
	}
	tm.orderIndex++
	tm.priorityPlayer = tm.activePlayer
	return tm.Current(), true
}

// Reset returns to the untap phase without touching the turn number.
func (tm *TurnManager) Reset() {
	tm.orderIndex = 0
	tm.priorityPlayer = tm.activePlayer
}

// BeginTurn starts the next turn for activePlayer at the untap phase.
func (tm *TurnManager) BeginTurn(activePlayer string) {
	tm.turnNumber++
	if next := strings.TrimSpace(activePlayer); next != "" {
		tm.activePlayer = next
	}
	tm.Reset()
}

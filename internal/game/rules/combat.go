package rules

import "fmt"

// CombatStep is a step of the combat phase.
type CombatStep int

const (
	CombatNone CombatStep = iota
	CombatBeginning
	CombatDeclareAttackers
	CombatDeclareBlockers
	CombatDamage
	CombatEnd
)

var combatStepNames = map[CombatStep]string{
	CombatNone:             "NONE",
	CombatBeginning:        "BEGIN_COMBAT",
	CombatDeclareAttackers: "DECLARE_ATTACKERS",
	CombatDeclareBlockers:  "DECLARE_BLOCKERS",
	CombatDamage:           "COMBAT_DAMAGE",
	CombatEnd:              "END_COMBAT",
}

func (s CombatStep) String() string {
	if name, ok := combatStepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("COMBAT_STEP_%d", int(s))
}

// CombatMachine walks the combat steps in order.
type CombatMachine struct {
	step CombatStep
}

// Step returns the current step; CombatNone outside combat.
func (m *CombatMachine) Step() CombatStep {
	return m.step
}

// Begin enters the beginning of combat step.
func (m *CombatMachine) Begin() error {
	if m.step != CombatNone {
		return fmt.Errorf("combat already in progress (%s)", m.step)
	}
	m.step = CombatBeginning
	return nil
}

// Advance moves to the next step. After CombatEnd it leaves combat and
// returns false.
func (m *CombatMachine) Advance() (CombatStep, bool) {
	switch m.step {
	case CombatNone:
		return CombatNone, false
	case CombatEnd:
		m.step = CombatNone
		return CombatNone, false
	default:
		m.step++
		return m.step, true
	}
}

// SkipTo jumps forward to step, used when no attackers are declared.
func (m *CombatMachine) SkipTo(step CombatStep) error {
	if step < m.step || m.step == CombatNone {
		return fmt.Errorf("cannot move combat from %s to %s", m.step, step)
	}
	m.step = step
	return nil
}

// Reset leaves combat immediately.
func (m *CombatMachine) Reset() {
	m.step = CombatNone
}

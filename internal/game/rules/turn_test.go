package rules

import "testing"

func TestTurnManagerSequence(t *testing.T) {
	tm := NewTurnManager("Alice")

	expected := []PhaseDef{
		{PhaseUntap, false, true},
		{PhaseUpkeep, true, false},
		{PhaseDraw, true, true},
		{PhaseMain1, true, false},
		{PhaseCombat, true, false},
		{PhaseMain2, true, false},
		{PhaseEnd, true, false},
	}

	for i, exp := range expected {
		if got := tm.Current(); got != exp {
			t.Fatalf("phase %d: expected %+v, got %+v", i, exp, got)
		}
		if i < len(expected)-1 {
			if _, ok := tm.AdvancePhase(); !ok {
				t.Fatalf("phase %d: unexpected rollover", i)
			}
		}
	}

	if _, ok := tm.AdvancePhase(); ok {
		t.Fatal("expected AdvancePhase to signal rollover after END")
	}
	if tm.CurrentPhase() != PhaseEnd {
		t.Fatalf("rollover must not move the phase, got %s", tm.CurrentPhase())
	}
}

func TestTurnManagerBeginTurn(t *testing.T) {
	tm := NewTurnManager("Alice")
	tm.AdvancePhase()
	tm.SetPriority("Bob")

	tm.BeginTurn("Bob")

	if tm.TurnNumber() != 2 {
		t.Fatalf("expected turn 2, got %d", tm.TurnNumber())
	}
	if tm.ActivePlayer() != "Bob" || tm.PriorityPlayer() != "Bob" {
		t.Fatalf("expected Bob active with priority, got %s/%s", tm.ActivePlayer(), tm.PriorityPlayer())
	}
	if tm.CurrentPhase() != PhaseUntap {
		t.Fatalf("expected UNTAP, got %s", tm.CurrentPhase())
	}
}

func TestTurnManagerAdvanceResetsPriority(t *testing.T) {
	tm := NewTurnManager("Alice")
	tm.SetPriority("Bob")
	def, _ := tm.AdvancePhase()
	if def.Phase != PhaseUpkeep {
		t.Fatalf("expected UPKEEP, got %s", def.Phase)
	}
	if tm.PriorityPlayer() != "Alice" {
		t.Fatalf("priority should return to the active player, got %s", tm.PriorityPlayer())
	}
}

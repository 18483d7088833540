package watchers

import (
	"testing"

	"github.com/magefree/mage-rules-go/internal/game/rules"
)

func TestTurnWatcherTalliesPerPlayer(t *testing.T) {
	w := NewTurnWatcher()
	alice := w.Track("alice")
	bob := w.Track("bob")

	w.Watch(rules.NewEvent(rules.EventLandPlayed, "forest", "alice"))
	w.Watch(rules.NewEvent(rules.EventSpellCast, "bolt", "alice"))
	w.Watch(rules.NewEvent(rules.EventDrawCard, "", "bob"))
	w.Watch(rules.NewEvent(rules.EventDrawCard, "", "bob"))
	w.Watch(rules.Event{Type: rules.EventLifeLost, PlayerID: "bob", Amount: 3})

	if alice.LandsPlayed != 1 || alice.SpellsCast != 1 {
		t.Fatalf("unexpected alice stats %+v", *alice)
	}
	if bob.Draws != 2 {
		t.Fatalf("expected 2 draws for bob, got %d", bob.Draws)
	}
	if bob.LifeLost != 3 {
		t.Fatalf("expected 3 life lost for bob, got %d", bob.LifeLost)
	}
}

func TestTurnWatcherCountsOnlyCreatureDeaths(t *testing.T) {
	w := NewTurnWatcher()
	s := w.Track("alice")

	w.Watch(rules.Event{Type: rules.EventDies, PlayerID: "alice", CardTypes: []string{"Creature"}})
	w.Watch(rules.Event{Type: rules.EventDies, PlayerID: "alice", CardTypes: []string{"Planeswalker"}})

	if s.CreaturesDied != 1 {
		t.Fatalf("expected 1 creature death, got %d", s.CreaturesDied)
	}
}

func TestTurnWatcherResetKeepsPointer(t *testing.T) {
	w := NewTurnWatcher()
	s := w.Track("alice")
	w.Watch(rules.NewEvent(rules.EventLandPlayed, "forest", "alice"))

	w.Reset("alice")

	if s.LandsPlayed != 0 {
		t.Fatalf("expected reset stats, got %+v", *s)
	}
	if w.Stats("alice") != s {
		t.Fatal("reset must keep the tracked pointer")
	}
	if w.Track("alice") != s {
		t.Fatal("Track must return the existing stats")
	}
}

func TestTurnWatcherIgnoresUntrackedPlayers(t *testing.T) {
	w := NewTurnWatcher()
	w.Watch(rules.NewEvent(rules.EventLandPlayed, "forest", "carol"))
	if w.Stats("carol") != nil {
		t.Fatal("untracked player must not get stats")
	}
}

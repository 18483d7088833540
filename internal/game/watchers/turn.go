// Package watchers keeps running tallies of game events that rules text asks
// about, such as "if you've played a land this turn".
package watchers

import (
	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// Watcher observes every event the engine emits.
type Watcher interface {
	Watch(event rules.Event)
}

// TurnStats are one player's counters for the current turn.
type TurnStats struct {
	LandsPlayed   int
	SpellsCast    int
	CreaturesDied int
	Draws         int
	LifeLost      int
	LifeGained    int
}

// TurnWatcher tallies per-player TurnStats. Stats are handed out as pointers
// so a player can hold its own and read it directly.
type TurnWatcher struct {
	stats map[string]*TurnStats
}

// NewTurnWatcher creates a watcher with no tracked players.
func NewTurnWatcher() *TurnWatcher {
	return &TurnWatcher{stats: make(map[string]*TurnStats)}
}

// Track starts tallying for playerID and returns the live stats.
func (w *TurnWatcher) Track(playerID string) *TurnStats {
	if s, ok := w.stats[playerID]; ok {
		return s
	}
	s := &TurnStats{}
	w.stats[playerID] = s
	return s
}

// Stats returns the live stats for playerID, or nil if untracked.
func (w *TurnWatcher) Stats(playerID string) *TurnStats {
	return w.stats[playerID]
}

// Watch implements Watcher.
func (w *TurnWatcher) Watch(event rules.Event) {
	s, ok := w.stats[event.PlayerID]
	if !ok {
		return
	}
	switch event.Type {
	case rules.EventLandPlayed:
		s.LandsPlayed++
	case rules.EventSpellCast:
		s.SpellsCast++
	case rules.EventDies:
		if event.HasType("Creature") {
			s.CreaturesDied++
		}
	case rules.EventDrawCard:
		s.Draws++
	case rules.EventLifeLost:
		s.LifeLost += event.Amount
	case rules.EventLifeGained:
		s.LifeGained += event.Amount
	}
}

// Reset zeroes playerID's counters in place, at the start of their turn.
func (w *TurnWatcher) Reset(playerID string) {
	if s, ok := w.stats[playerID]; ok {
		*s = TurnStats{}
	}
}

package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/magefree/mage-rules-go/internal/game/rules"
)

// ReplayEntry is one accepted action and the checksum of the state it left.
type ReplayEntry struct {
	Seq      int
	Turn     int
	Phase    rules.Phase
	Action   Action
	Checksum string
}

// Replay is the journal of every accepted action in a game, in order. It can
// be stepped through and saved to disk.
type Replay struct {
	GameID       string
	Entries      []ReplayEntry
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty journal.
func NewReplay(gameID string) *Replay {
	return &Replay{GameID: gameID}
}

// Record appends an accepted action.
func (r *Replay) Record(turn int, phase rules.Phase, a Action, checksum string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Entries = append(r.Entries, ReplayEntry{
		Seq:      len(r.Entries) + 1,
		Turn:     turn,
		Phase:    phase,
		Action:   a,
		Checksum: checksum,
	})
}

// Start rewinds to the first entry.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the entry at the cursor and advances, or nil at the end.
func (r *Replay) Next() *ReplayEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Entries) {
		entry := r.Entries[r.CurrentIndex]
		r.CurrentIndex++
		return &entry
	}
	return nil
}

// Previous steps the cursor back and returns that entry, or nil at the start.
func (r *Replay) Previous() *ReplayEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		entry := r.Entries[r.CurrentIndex]
		return &entry
	}
	return nil
}

// Skip moves the cursor by count, clamped to the journal.
func (r *Replay) Skip(count int) *ReplayEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := min(max(r.CurrentIndex+count, 0), len(r.Entries)-1)
	if idx < 0 {
		return nil
	}
	r.CurrentIndex = idx
	entry := r.Entries[idx]
	return &entry
}

// Size returns the number of recorded actions.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Entries)
}

type replayMetadata struct {
	GameID     string
	Timestamp  time.Time
	Version    int
	EntryCount int
}

const replayVersion = 1

// SaveToFile writes the journal to <directory>/<game id>.replay as gzipped
// gob.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("create replay directory: %w", err)
	}
	file, err := os.Create(filepath.Join(directory, r.GameID+".replay"))
	if err != nil {
		return fmt.Errorf("create replay file: %w", err)
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	enc := gob.NewEncoder(zw)
	meta := replayMetadata{
		GameID:     r.GameID,
		Timestamp:  time.Now(),
		Version:    replayVersion,
		EntryCount: len(r.Entries),
	}
	if err := enc.Encode(&meta); err != nil {
		return fmt.Errorf("encode replay metadata: %w", err)
	}
	for i := range r.Entries {
		if err := enc.Encode(&r.Entries[i]); err != nil {
			return fmt.Errorf("encode replay entry %d: %w", i, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush replay file: %w", err)
	}
	return nil
}

// LoadReplayFromFile reads a journal written by SaveToFile.
func LoadReplayFromFile(directory, gameID string) (*Replay, error) {
	file, err := os.Open(filepath.Join(directory, gameID+".replay"))
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)
	var meta replayMetadata
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode replay metadata: %w", err)
	}
	if meta.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", meta.Version)
	}

	r := NewReplay(meta.GameID)
	r.Entries = make([]ReplayEntry, 0, meta.EntryCount)
	for i := 0; i < meta.EntryCount; i++ {
		var entry ReplayEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("decode replay entry %d: %w", i, err)
		}
		r.Entries = append(r.Entries, entry)
	}
	return r, nil
}

package rules

import (
	"errors"
)

// ErrStackEmpty is returned when popping an empty stack.
var ErrStackEmpty = errors.New("stack empty")

// StackEntry is anything that can wait on the stack: a cast spell or a
// triggered or activated ability.
type StackEntry interface {
	EntryID() string
	Controller() string
	Describe() string
}

// StackManager is a strict LIFO of pending entries.
type StackManager struct {
	items []StackEntry
}

// NewStackManager creates an empty stack.
func NewStackManager() *StackManager {
	return &StackManager{
		items: make([]StackEntry, 0, 16),
	}
}

// Push adds an entry to the top of the stack.
func (sm *StackManager) Push(entry StackEntry) {
	sm.items = append(sm.items, entry)
}

// Pop removes and returns the top entry.
func (sm *StackManager) Pop() (StackEntry, error) {
	if len(sm.items) == 0 {
		return nil, ErrStackEmpty
	}
	idx := len(sm.items) - 1
	entry := sm.items[idx]
	sm.items[idx] = nil
	sm.items = sm.items[:idx]
	return entry, nil
}

// Remove deletes an entry from anywhere in the stack by ID. Only explicit
// effects such as counterspells use it.
func (sm *StackManager) Remove(id string) (StackEntry, bool) {
	for idx := len(sm.items) - 1; idx >= 0; idx-- {
		if sm.items[idx].EntryID() == id {
			entry := sm.items[idx]
			sm.items = append(sm.items[:idx], sm.items[idx+1:]...)
			return entry, true
		}
	}
	return nil, false
}

// Peek returns the top entry without removing it.
func (sm *StackManager) Peek() (StackEntry, bool) {
	if len(sm.items) == 0 {
		return nil, false
	}
	return sm.items[len(sm.items)-1], true
}

// Find looks an entry up by ID.
func (sm *StackManager) Find(id string) (StackEntry, bool) {
	for _, e := range sm.items {
		if e.EntryID() == id {
			return e, true
		}
	}
	return nil, false
}

// List returns a copy of all entries, topmost last.
func (sm *StackManager) List() []StackEntry {
	cpy := make([]StackEntry, len(sm.items))
	copy(cpy, sm.items)
	return cpy
}

// Len returns the number of entries.
func (sm *StackManager) Len() int {
	return len(sm.items)
}

// IsEmpty reports whether the stack is empty.
func (sm *StackManager) IsEmpty() bool {
	return len(sm.items) == 0
}

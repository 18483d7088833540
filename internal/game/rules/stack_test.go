package rules

import (
	"fmt"
	"testing"
)

type testEntry struct {
	id, controller string
}

func (e testEntry) EntryID() string    { return e.id }
func (e testEntry) Controller() string { return e.controller }
func (e testEntry) Describe() string   { return "entry " + e.id }

func TestStackManagerPushPop(t *testing.T) {
	sm := NewStackManager()
	sm.Push(testEntry{"first", "Alice"})
	sm.Push(testEntry{"second", "Bob"})

	top, ok := sm.Peek()
	if !ok || top.EntryID() != "second" {
		t.Fatalf("expected second on top, got %v", top)
	}

	item, err := sm.Pop()
	if err != nil {
		t.Fatalf("unexpected error popping top: %v", err)
	}
	if item.EntryID() != "second" {
		t.Fatalf("expected LIFO order (second), got %s", item.EntryID())
	}
	item, err = sm.Pop()
	if err != nil || item.EntryID() != "first" {
		t.Fatalf("expected first, got %v (%v)", item, err)
	}
	if _, err := sm.Pop(); err != ErrStackEmpty {
		t.Fatalf("expected ErrStackEmpty, got %v", err)
	}
}

func TestStackManagerHoldsEveryEntryInOrder(t *testing.T) {
	for _, n := range []int{1, 5, 32} {
		sm := NewStackManager()
		for i := 0; i < n; i++ {
			sm.Push(testEntry{fmt.Sprint(i), "Alice"})
		}
		if sm.Len() != n {
			t.Fatalf("expected %d entries, got %d", n, sm.Len())
		}
		for i := n - 1; i >= 0; i-- {
			e, err := sm.Pop()
			if err != nil {
				t.Fatal(err)
			}
			if e.EntryID() != fmt.Sprint(i) {
				t.Fatalf("expected %d, got %s", i, e.EntryID())
			}
		}
	}
}

func TestStackManagerRemove(t *testing.T) {
	sm := NewStackManager()
	sm.Push(testEntry{"a", "Alice"})
	sm.Push(testEntry{"b", "Alice"})
	sm.Push(testEntry{"c", "Bob"})

	if _, ok := sm.Remove("b"); !ok {
		t.Fatal("expected to remove b")
	}
	list := sm.List()
	if len(list) != 2 || list[0].EntryID() != "a" || list[1].EntryID() != "c" {
		t.Fatalf("unexpected stack after remove: %v", list)
	}
	if _, ok := sm.Remove("zzz"); ok {
		t.Fatal("removing a missing entry must fail")
	}
}

// Package catalog supplies card definitions to the engine: an in-memory
// registry, YAML loading and the built-in sample cards. Persistent stores live
// in the sqlite and postgres subpackages.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/card"
)

var (
	// ErrNotFound is returned when no definition has the requested name.
	ErrNotFound = errors.New("card not found")
	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("card already registered")
)

// Store is a persistent catalogue.
type Store interface {
	Put(ctx context.Context, def *card.Definition) error
	Get(ctx context.Context, name string) (*card.Definition, error)
	List(ctx context.Context) ([]*card.Definition, error)
	Close() error
}

// Registry is a thread-safe in-memory catalogue keyed by case-folded name.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]*card.Definition
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		defs:   make(map[string]*card.Definition),
		logger: logger,
	}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register validates and adds definitions. Nothing is added if any of them
// is invalid or already present.
func (r *Registry) Register(defs ...*card.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d == nil {
			return errors.New("nil definition")
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("invalid definition: %w", err)
		}
		k := key(d.Name)
		if _, ok := r.defs[k]; ok || seen[k] {
			return fmt.Errorf("%w: %s", ErrDuplicate, d.Name)
		}
		seen[k] = true
	}
	for _, d := range defs {
		r.defs[key(d.Name)] = d
	}
	r.logger.Debug("cards registered", zap.Int("count", len(defs)), zap.Int("total", len(r.defs)))
	return nil
}

// Lookup implements card.Catalogue.
func (r *Registry) Lookup(name string) (*card.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.defs[key(name)]
	return d, ok
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for _, d := range r.defs {
		names = append(names, d.Name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered cards.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// LoadFrom registers every definition held by store.
func (r *Registry) LoadFrom(ctx context.Context, store Store) error {
	defs, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list cards: %w", err)
	}
	return r.Register(defs...)
}

// All returns every registered definition, sorted by name.
func (r *Registry) All() []*card.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*card.Definition, 0, len(r.defs))
	for _, d := range r.defs {
		defs = append(defs, d)
	}
	slices.SortFunc(defs, func(a, b *card.Definition) int { return strings.Compare(a.Name, b.Name) })
	return defs
}

// SaveTo writes every registered definition to store.
func (r *Registry) SaveTo(ctx context.Context, store Store) error {
	for _, d := range r.All() {
		if err := store.Put(ctx, d); err != nil {
			return fmt.Errorf("save %s: %w", d.Name, err)
		}
	}
	return nil
}

// DeckEntry is one line of a deck list.
type DeckEntry struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// Deck is a named deck list.
type Deck struct {
	Name  string      `yaml:"name"`
	Cards []DeckEntry `yaml:"cards"`
}

// Resolve expands the list into one definition per card, in list order.
func (d Deck) Resolve(c card.Catalogue) ([]*card.Definition, error) {
	var out []*card.Definition
	var errs []error
	for _, e := range d.Cards {
		def, ok := c.Lookup(e.Name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNotFound, e.Name))
			continue
		}
		n := max(e.Count, 1)
		for range n {
			out = append(out, def)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("deck %q: %w", d.Name, err)
	}
	return out, nil
}

// Size returns the number of cards in the list.
func (d Deck) Size() int {
	n := 0
	for _, e := range d.Cards {
		n += max(e.Count, 1)
	}
	return n
}

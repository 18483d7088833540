// Package sqlite provides an embedded, file-backed card catalogue.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/magefree/mage-rules-go/internal/catalog"
	"github.com/magefree/mage-rules-go/internal/game/card"
)

//go:embed schema.sql
var schema string

// Store persists card definitions in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the database at path, creating the schema if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Put inserts or replaces a definition.
func (s *Store) Put(ctx context.Context, def *card.Definition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob, err := catalog.EncodeDefinition(def)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO card_definitions (name_key, name, definition, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name_key) DO UPDATE SET
		   name = excluded.name,
		   definition = excluded.definition,
		   updated_at = excluded.updated_at`,
		nameKey(def.Name), def.Name, blob, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", def.Name, err)
	}
	return nil
}

// Get loads one definition by name, case-insensitively.
func (s *Store) Get(ctx context.Context, name string) (*card.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var blob []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT definition FROM card_definitions WHERE name_key = ?`, nameKey(name),
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return catalog.DecodeDefinition(blob)
}

// List loads every definition ordered by name.
func (s *Store) List(ctx context.Context) ([]*card.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT definition FROM card_definitions ORDER BY name_key`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var out []*card.Definition
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		def, err := catalog.DecodeDefinition(blob)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

var _ catalog.Store = (*Store)(nil)

// Package postgres provides a card catalogue shared through PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/catalog"
	"github.com/magefree/mage-rules-go/internal/game/card"
)

//go:embed schema.sql
var schema string

const upsert = `
	INSERT INTO card_definitions (name_key, name, definition, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (name_key) DO UPDATE SET
		name = EXCLUDED.name,
		definition = EXCLUDED.definition,
		updated_at = EXCLUDED.updated_at`

// Store persists card definitions in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open connects to url, checks the connection and creates the schema.
func Open(ctx context.Context, url string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("database url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	stats := pool.Stat()
	logger.Info("catalogue database connected",
		zap.Int32("total_conns", stats.TotalConns()),
		zap.Int32("idle_conns", stats.IdleConns()),
	)
	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Put inserts or replaces a definition.
func (s *Store) Put(ctx context.Context, def *card.Definition) error {
	blob, err := catalog.EncodeDefinition(def)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, upsert, nameKey(def.Name), def.Name, string(blob))
	if err != nil {
		return fmt.Errorf("put %s: %w", def.Name, err)
	}
	return nil
}

// PutAll writes definitions in batches, one transaction per batch.
func (s *Store) PutAll(ctx context.Context, defs []*card.Definition, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	imported := 0
	for i := 0; i < len(defs); i += batchSize {
		batch := defs[i:min(i+batchSize, len(defs))]
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return imported, fmt.Errorf("begin: %w", err)
		}
		b := &pgx.Batch{}
		for _, def := range batch {
			blob, err := catalog.EncodeDefinition(def)
			if err != nil {
				_ = tx.Rollback(ctx)
				return imported, err
			}
			b.Queue(upsert, nameKey(def.Name), def.Name, string(blob))
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			_ = tx.Rollback(ctx)
			return imported, fmt.Errorf("write batch: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return imported, fmt.Errorf("commit batch: %w", err)
		}
		imported += len(batch)
		s.logger.Debug("catalogue batch written", zap.Int("imported", imported), zap.Int("total", len(defs)))
	}
	return imported, nil
}

// Get loads one definition by name, case-insensitively.
func (s *Store) Get(ctx context.Context, name string) (*card.Definition, error) {
	var blob string
	err := s.pool.QueryRow(ctx,
		`SELECT definition FROM card_definitions WHERE name_key = $1`, nameKey(name),
	).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return catalog.DecodeDefinition([]byte(blob))
}

// List loads every definition ordered by name.
func (s *Store) List(ctx context.Context) ([]*card.Definition, error) {
	rows, err := s.pool.Query(ctx, `SELECT definition FROM card_definitions ORDER BY name_key`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	blobs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan cards: %w", err)
	}
	out := make([]*card.Definition, 0, len(blobs))
	for _, blob := range blobs {
		def, err := catalog.DecodeDefinition([]byte(blob))
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

var _ catalog.Store = (*Store)(nil)

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/magefree/mage-rules-go/internal/catalog"
	"github.com/magefree/mage-rules-go/internal/catalog/postgres"
	"github.com/magefree/mage-rules-go/internal/catalog/sqlite"
	"github.com/magefree/mage-rules-go/internal/game/card"
)

// Imports card definitions into a catalogue store.
//
//	go run ./scripts [cards.yaml]
//
// DATABASE_URL selects PostgreSQL, SQLITE_PATH selects SQLite. With no file
// argument the built-in cards are imported.
func main() {
	ctx := context.Background()

	reg := catalog.NewRegistry(nil)
	source := "built-in cards"
	if len(os.Args) > 1 {
		absPath, err := filepath.Abs(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to get absolute path: %v", err)
		}
		source = absPath
		if err := reg.LoadFile(absPath); err != nil {
			log.Fatalf("Failed to load cards: %v", err)
		}
	} else {
		builtin, err := catalog.Builtin(nil)
		if err != nil {
			log.Fatalf("Failed to load built-in cards: %v", err)
		}
		reg = builtin
	}

	fmt.Println("=== Card Definition Import ===")
	fmt.Printf("Source: %s\n", source)
	fmt.Printf("Found %d cards\n", reg.Len())

	startTime := time.Now()
	imported, err := importAll(ctx, reg.All())
	if err != nil {
		log.Fatalf("Import failed after %d cards: %v", imported, err)
	}
	duration := time.Since(startTime)

	fmt.Println("\n=== Import Complete ===")
	fmt.Printf("Imported: %d cards\n", imported)
	fmt.Printf("Time taken: %s\n", duration)
}

func importAll(ctx context.Context, defs []*card.Definition) (int, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		fmt.Println("Connecting to PostgreSQL...")
		store, err := postgres.Open(ctx, url, nil)
		if err != nil {
			return 0, err
		}
		defer store.Close()
		return store.PutAll(ctx, defs, 1000)
	}

	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "cards.db"
	}
	fmt.Printf("Opening SQLite database %s...\n", path)
	store, err := sqlite.Open(path)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	for i, def := range defs {
		if err := store.Put(ctx, def); err != nil {
			return i, err
		}
	}
	return len(defs), nil
}

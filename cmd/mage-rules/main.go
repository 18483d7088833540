package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/magefree/mage-rules-go/internal/catalog"
	"github.com/magefree/mage-rules-go/internal/catalog/postgres"
	"github.com/magefree/mage-rules-go/internal/catalog/sqlite"
	"github.com/magefree/mage-rules-go/internal/config"
	"github.com/magefree/mage-rules-go/internal/game"
	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/remote"
)

var (
	configPath = flag.String("config", "", "path to configuration file")
	deck1Path  = flag.String("deck1", "", "deck list for the first player to connect")
	deck2Path  = flag.String("deck2", "", "deck list for the second player to connect")
	version    = "dev" // set via ldflags during build
)

// sampleDeck is dealt to a seat with no deck list.
var sampleDeck = catalog.Deck{
	Name: "Sample Stompy",
	Cards: []catalog.DeckEntry{
		{Name: "Forest", Count: 16},
		{Name: "Mountain", Count: 8},
		{Name: "Llanowar Elves", Count: 4},
		{Name: "Grizzly Bears", Count: 4},
		{Name: "Craw Wurm", Count: 4},
		{Name: "Giant Growth", Count: 4},
		{Name: "Lightning Bolt", Count: 4},
		{Name: "Goblin Piker", Count: 4},
		{Name: "Glorious Anthem", Count: 2},
	},
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting rules host",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("rules host stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("rules host stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	cards, closeStore, err := loadCatalogue(ctx, cfg.Catalog, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("card catalogue ready", zap.Int("cards", cards.Len()))

	decks := make([][]*card.Definition, 2)
	for i, path := range []string{*deck1Path, *deck2Path} {
		list := sampleDeck
		if path != "" {
			if list, err = catalog.LoadDeckFile(path); err != nil {
				return err
			}
		}
		if decks[i], err = list.Resolve(cards); err != nil {
			return err
		}
		logger.Info("deck loaded", zap.String("deck", list.Name), zap.Int("cards", len(decks[i])))
	}

	hub := remote.NewHub(cfg.Remote.ReadTimeout, logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{
		Addr:              cfg.Remote.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("starting websocket listener", zap.String("address", cfg.Remote.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("websocket listener error", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	seats, err := hub.WaitForSeats(ctx, 2)
	hub.Close()
	if err != nil {
		return err
	}
	players := make([]game.PlayerConfig, len(seats))
	for i, s := range seats {
		players[i] = game.PlayerConfig{ID: s.PlayerID, Name: s.Name, Deck: decks[i], Provider: s.Provider}
	}

	e, err := game.NewEngine(players, cfg.GameOptions(), cards, logger)
	if err != nil {
		return err
	}
	state := e.State()
	logger.Info("game starting", zap.String("game_id", state.ID))

	gameErr := e.RunGame(ctx)
	checksum := e.Checksum()
	remote.Broadcast(seats, remote.TypeGameOver, remote.GameOverNotice{
		Winner:   state.Winner,
		Draw:     state.IsDraw,
		Checksum: checksum,
	})
	logger.Info("game finished",
		zap.String("game_id", state.ID),
		zap.String("winner", state.Winner),
		zap.Bool("draw", state.IsDraw),
		zap.Int("turns", state.TurnNumber()),
		zap.Int("actions", e.Replay().Size()),
		zap.String("checksum", checksum),
	)

	if dir := cfg.Replay.Directory; dir != "" {
		if err := e.Replay().SaveToFile(dir); err != nil {
			logger.Warn("failed to save replay", zap.Error(err))
		} else {
			logger.Info("replay saved", zap.String("directory", dir))
		}
	}
	for _, s := range seats {
		_ = s.Provider.Close()
	}
	return gameErr
}

// loadCatalogue builds the registry. A configured store is the source of
// truth and is seeded with the built-in cards when empty; the YAML file adds
// cards on top.
func loadCatalogue(ctx context.Context, cfg config.CatalogConfig, logger *zap.Logger) (*catalog.Registry, func(), error) {
	var store catalog.Store
	switch {
	case cfg.PostgresURL != "":
		s, err := postgres.Open(ctx, cfg.PostgresURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres catalogue: %w", err)
		}
		store = s
	case cfg.SQLitePath != "":
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite catalogue: %w", err)
		}
		store = s
	}
	closeStore := func() {}
	if store != nil {
		closeStore = func() { _ = store.Close() }
	}

	builtin, err := catalog.Builtin(logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	reg := builtin
	if store != nil {
		reg = catalog.NewRegistry(logger)
		if err := reg.LoadFrom(ctx, store); err != nil {
			closeStore()
			return nil, nil, err
		}
		if reg.Len() == 0 {
			logger.Info("seeding empty catalogue store", zap.Int("cards", builtin.Len()))
			if err := builtin.SaveTo(ctx, store); err != nil {
				closeStore()
				return nil, nil, err
			}
			reg = builtin
		}
	}

	if cfg.YAMLPath != "" {
		if err := reg.LoadFile(cfg.YAMLPath); err != nil {
			closeStore()
			return nil, nil, err
		}
	}
	return reg, closeStore, nil
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

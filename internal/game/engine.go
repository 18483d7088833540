// Package game is the rules engine: it owns a two-player game, runs turns,
// priority, the stack and combat, and asks DecisionProviders for every
// player choice.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game/card"
	"github.com/magefree/mage-rules-go/internal/game/targeting"
)

const tracerName = "github.com/magefree/mage-rules-go/internal/game"

// Options are the rule knobs a host may change.
type Options struct {
	StartingLife         int
	OpeningHand          int
	MaxHandSize          int
	FirstPlayerSkipsDraw bool
	// MaxRejections caps consecutive rejected actions from one provider
	// before they count as a pass. Zero disables the cap.
	MaxRejections int
	// ShuffleSeed seeds library shuffles; zero picks a time-based seed.
	ShuffleSeed int64
}

// DefaultOptions returns the standard two-player rules.
func DefaultOptions() Options {
	return Options{
		StartingLife:         20,
		OpeningHand:          7,
		MaxHandSize:          7,
		FirstPlayerSkipsDraw: true,
		MaxRejections:        64,
	}
}

// PlayerConfig describes one seat. Deck is the library in order, bottom
// first; StartGame shuffles it.
type PlayerConfig struct {
	ID       string
	Name     string
	Deck     []*card.Definition
	Provider DecisionProvider
}

// Engine runs one game. It is not safe for concurrent use; the host loop
// owns it.
type Engine struct {
	state     *GameState
	providers map[string]DecisionProvider
	catalogue card.Catalogue
	opts      Options
	logger    *zap.Logger
	tracer    trace.Tracer
	rng       *rand.Rand
	targets   *targeting.Validator
	replay    *Replay
}

// NewEngine builds a game for exactly two players. catalogue may be nil if no
// card in the game transforms. A nil logger disables logging.
func NewEngine(players []PlayerConfig, opts Options, catalogue card.Catalogue, logger *zap.Logger) (*Engine, error) {
	if len(players) != 2 {
		return nil, fmt.Errorf("a game needs exactly 2 players, got %d", len(players))
	}
	if players[0].ID == "" || players[1].ID == "" || players[0].ID == players[1].ID {
		return nil, errors.New("players need distinct non-empty ids")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := opts.ShuffleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	seats := make([]*Player, 0, len(players))
	providers := make(map[string]DecisionProvider, len(players))
	for _, pc := range players {
		if pc.Provider == nil {
			return nil, fmt.Errorf("player %s has no decision provider", pc.ID)
		}
		name := pc.Name
		if name == "" {
			name = pc.ID
		}
		p := newPlayer(pc.ID, name, opts.StartingLife)
		for _, def := range pc.Deck {
			if def == nil {
				return nil, fmt.Errorf("player %s: nil card definition in deck", pc.ID)
			}
			p.Library.add(newGameCard(def, p.ID))
		}
		seats = append(seats, p)
		providers[pc.ID] = pc.Provider
	}

	e := &Engine{
		state:     newGameState(seats),
		providers: providers,
		catalogue: catalogue,
		opts:      opts,
		tracer:    otel.Tracer(tracerName),
		rng:       rand.New(rand.NewSource(seed)),
	}
	e.logger = logger.With(zap.String("game_id", e.state.ID))
	e.targets = targeting.NewValidator(targetView{e.state})
	e.replay = NewReplay(e.state.ID)
	return e, nil
}

// State returns the live game state. Callers must not mutate it.
func (e *Engine) State() *GameState {
	return e.state
}

// Replay returns the journal of accepted actions.
func (e *Engine) Replay() *Replay {
	return e.replay
}

func (e *Engine) provider(playerID string) DecisionProvider {
	return e.providers[playerID]
}

// logf appends to the game log and mirrors the line to the structured log.
func (e *Engine) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.state.addLog(msg)
	e.logger.Debug(msg,
		zap.Int("turn", e.state.TurnNumber()),
		zap.String("phase", e.state.Phase().String()),
	)
}

// reject logs a refused action and returns the error for it.
func (e *Engine) reject(p *Player, code RejectCode, format string, args ...any) error {
	return e.rejectWith(p, code, nil, format, args...)
}

func (e *Engine) rejectWith(p *Player, code RejectCode, cause error, format string, args ...any) error {
	reason := fmt.Sprintf(format, args...)
	e.state.addLog(fmt.Sprintf("Rejected %s: %s", p.Name, reason))
	e.logger.Warn("action rejected",
		zap.String("player_id", p.ID),
		zap.String("code", string(code)),
		zap.String("reason", reason),
		zap.Int("turn", e.state.TurnNumber()),
		zap.String("phase", e.state.Phase().String()),
	)
	return &RejectedError{Code: code, Reason: reason, cause: cause}
}

// causedBy records the player behind what happens next.
func (e *Engine) causedBy(playerID string) {
	e.state.LastCausedBy = playerID
}

// loseGame marks p as having lost and ends the game when decided.
func (e *Engine) loseGame(p *Player, reason string) {
	if p.Lost {
		return
	}
	p.Lost = true
	e.logf("%s loses the game (%s)", p.Name, reason)
	e.settleGameOver()
}

func (e *Engine) settleGameOver() {
	s := e.state
	var alive []*Player
	for _, p := range s.Players {
		if !p.Lost {
			alive = append(alive, p)
		}
	}
	switch len(alive) {
	case 0:
		s.IsGameOver, s.IsDraw, s.Winner = true, true, ""
		e.logf("The game is a draw")
	case 1:
		s.IsGameOver, s.Winner = true, alive[0].Name
		e.logf("%s wins the game", alive[0].Name)
	default:
		return
	}
	e.logger.Info("game over",
		zap.String("winner", s.Winner),
		zap.Bool("draw", s.IsDraw),
		zap.Int("turn", s.TurnNumber()),
	)
}

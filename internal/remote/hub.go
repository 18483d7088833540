package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Seat is a connected player waiting for a game.
type Seat struct {
	PlayerID string
	Name     string
	Provider *Provider
}

// Welcome is the first frame a client receives.
type Welcome struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// Hub accepts websocket connections at /ws?player=<id>&name=<name> and hands
// them out as seats. A player id may only be seated once at a time.
type Hub struct {
	readTimeout time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	seated   map[string]*Provider
	register chan Seat

	closeOnce sync.Once
	closed    chan struct{}
}

// NewHub creates a hub whose providers wait readTimeout for each answer.
func NewHub(readTimeout time.Duration, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		readTimeout: readTimeout,
		logger:      logger,
		seated:      make(map[string]*Provider),
		register:    make(chan Seat, 8),
		closed:      make(chan struct{}),
	}
}

// Close stops seating players. Connections still waiting for a seat are
// dropped and later ones are refused. Seats already handed out stay open.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.closed) })
}

// ServeHTTP upgrades the request and queues the new seat.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	playerID := strings.TrimSpace(r.URL.Query().Get("player"))
	if playerID == "" {
		http.Error(w, "player query parameter is required", http.StatusBadRequest)
		return
	}
	select {
	case <-h.closed:
		http.Error(w, "no seats available", http.StatusServiceUnavailable)
		return
	default:
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = playerID
	}

	h.mu.Lock()
	_, taken := h.seated[playerID]
	h.mu.Unlock()
	if taken {
		http.Error(w, "player already connected", http.StatusConflict)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	prov := NewProvider(conn, playerID, h.readTimeout, h.logger)

	h.mu.Lock()
	if _, taken := h.seated[playerID]; taken {
		h.mu.Unlock()
		_ = prov.Close()
		return
	}
	h.seated[playerID] = prov
	h.mu.Unlock()

	go func() {
		<-prov.Done()
		h.mu.Lock()
		if h.seated[playerID] == prov {
			delete(h.seated, playerID)
		}
		h.mu.Unlock()
		h.logger.Info("player disconnected", zap.String("player_id", playerID))
	}()

	if err := prov.Send(TypeWelcome, Welcome{PlayerID: playerID, Name: name}); err != nil {
		_ = prov.Close()
		return
	}
	h.logger.Info("player connected", zap.String("player_id", playerID), zap.String("name", name))
	select {
	case h.register <- Seat{PlayerID: playerID, Name: name, Provider: prov}:
	case <-prov.Done():
	case <-h.closed:
		h.logger.Info("no seat left for player", zap.String("player_id", playerID))
		_ = prov.Close()
	case <-r.Context().Done():
		_ = prov.Close()
	}
}

// WaitForSeats blocks until n players are connected. Seats whose connection
// dropped while waiting are skipped.
func (h *Hub) WaitForSeats(ctx context.Context, n int) ([]Seat, error) {
	seats := make([]Seat, 0, n)
	for len(seats) < n {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case s := <-h.register:
			seats = append(seats, s)
		}
		seats = connected(seats)
	}
	return seats, nil
}

func connected(seats []Seat) []Seat {
	out := seats[:0]
	for _, s := range seats {
		select {
		case <-s.Provider.Done():
		default:
			out = append(out, s)
		}
	}
	return out
}

// Broadcast sends one frame to every seat, ignoring write failures.
func Broadcast(seats []Seat, t MessageType, payload any) {
	raw, _ := json.Marshal(payload)
	for _, s := range seats {
		_ = s.Provider.send(Message{Type: t, PlayerID: s.PlayerID, Data: raw}, nil)
	}
}

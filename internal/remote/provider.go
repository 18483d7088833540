package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/magefree/mage-rules-go/internal/game"
	"github.com/magefree/mage-rules-go/internal/game/mana"
)

var (
	// ErrDisconnected is returned once the client's connection is gone.
	ErrDisconnected = errors.New("player disconnected")
	// errTimeout is handled inside the provider by answering with the
	// default for the decision.
	errTimeout = errors.New("decision timed out")
)

const writeWait = 10 * time.Second

// Provider is one remote seat.
type Provider struct {
	conn        *websocket.Conn
	playerID    string
	readTimeout time.Duration
	logger      *zap.Logger

	writeMu   sync.Mutex
	seq       atomic.Uint64
	responses chan Message
	done      chan struct{}
	closeOnce sync.Once
	readErr   error
}

// NewProvider serves decisions for playerID over conn and starts reading.
// A zero readTimeout waits for answers forever.
func NewProvider(conn *websocket.Conn, playerID string, readTimeout time.Duration, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		conn:        conn,
		playerID:    playerID,
		readTimeout: readTimeout,
		logger:      logger.With(zap.String("player_id", playerID)),
		responses:   make(chan Message, 16),
		done:        make(chan struct{}),
	}
	go p.readPump()
	return p
}

// PlayerID returns the seat this provider answers for.
func (p *Provider) PlayerID() string { return p.playerID }

// Done is closed when the connection drops.
func (p *Provider) Done() <-chan struct{} { return p.done }

func (p *Provider) readPump() {
	for {
		var msg Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			_ = p.closeWith(err)
			return
		}
		if msg.Type != TypeResponse {
			p.logger.Debug("ignoring client frame", zap.String("type", string(msg.Type)))
			continue
		}
		select {
		case p.responses <- msg:
		default:
			p.logger.Warn("dropping unsolicited response", zap.Uint64("seq", msg.Seq))
		}
	}
}

// Close drops the connection.
func (p *Provider) Close() error {
	return p.closeWith(nil)
}

// closeWith records why the connection ended before waking waiters.
func (p *Provider) closeWith(cause error) error {
	var err error
	p.closeOnce.Do(func() {
		p.readErr = cause
		close(p.done)
		err = p.conn.Close()
	})
	return err
}

// Send writes one frame without waiting for a reply.
func (p *Provider) Send(t MessageType, payload any) error {
	return p.send(Message{Type: t, PlayerID: p.playerID}, payload)
}

func (p *Provider) send(msg Message, payload any) error {
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", msg.Type, err)
		}
		msg.Data = raw
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := p.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	return nil
}

// ask sends a request and decodes the matching response into out.
func (p *Provider) ask(ctx context.Context, t MessageType, payload, out any) error {
	seq := p.seq.Add(1)
	if err := p.send(Message{Type: t, Seq: seq, PlayerID: p.playerID}, payload); err != nil {
		return err
	}

	var timeout <-chan time.Time
	if p.readTimeout > 0 {
		timer := time.NewTimer(p.readTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			if p.readErr != nil {
				return fmt.Errorf("%w: %v", ErrDisconnected, p.readErr)
			}
			return ErrDisconnected
		case <-timeout:
			return errTimeout
		case msg := <-p.responses:
			if msg.Seq != seq {
				p.logger.Debug("discarding stale response", zap.Uint64("seq", msg.Seq), zap.Uint64("want", seq))
				continue
			}
			if len(msg.Data) == 0 || out == nil {
				return nil
			}
			if err := json.Unmarshal(msg.Data, out); err != nil {
				p.logger.Warn("malformed response", zap.String("type", string(t)), zap.Error(err))
				return nil
			}
			return nil
		}
	}
}

// defaulted turns a timeout into the default answer.
func (p *Provider) defaulted(err error, t MessageType) error {
	if errors.Is(err, errTimeout) {
		p.logger.Warn("no answer in time; using the default", zap.String("type", string(t)))
		return nil
	}
	return err
}

// GetAction implements game.DecisionProvider. A timeout passes.
func (p *Provider) GetAction(ctx context.Context, state *game.GameState, playerID string) (game.Action, error) {
	var a game.Action
	err := p.ask(ctx, TypeAction, ActionRequest{View: NewView(state, playerID)}, &a)
	if err != nil {
		return game.Pass(playerID), p.defaulted(err, TypeAction)
	}
	if a.Kind == "" {
		a.Kind = game.ActionPass
	}
	// A client may only act for its own seat.
	a.PlayerID = playerID
	return a, nil
}

// ChooseTarget implements game.DecisionProvider. An empty answer declines.
func (p *Provider) ChooseTarget(ctx context.Context, state *game.GameState, playerID string, req game.TargetRequest) (*game.TargetInfo, error) {
	var t game.TargetInfo
	err := p.ask(ctx, TypeTarget, TargetRequest{
		Source:   req.Source,
		SourceID: req.SourceID,
		CardIDs:  req.CardIDs,
		Players:  req.Players,
		View:     NewView(state, playerID),
	}, &t)
	if err != nil {
		return nil, p.defaulted(err, TypeTarget)
	}
	if t.CardID == "" && t.PlayerID == "" {
		return nil, nil
	}
	return &t, nil
}

// ChooseCards implements game.DecisionProvider. Unknown ids are dropped; the
// engine checks the count.
func (p *Provider) ChooseCards(ctx context.Context, state *game.GameState, playerID string, choice game.CardChoice) ([]*game.GameCard, error) {
	var resp CardsResponse
	err := p.ask(ctx, TypeCards, CardsRequest{
		Reason:     choice.Reason,
		Prompt:     choice.Prompt,
		Candidates: cardViews(choice.Candidates),
		Min:        choice.Min,
		Max:        choice.Max,
		AttackerID: choice.AttackerID,
		View:       NewView(state, playerID),
	}, &resp)
	if err != nil {
		return nil, p.defaulted(err, TypeCards)
	}
	byID := make(map[string]*game.GameCard, len(choice.Candidates))
	for _, c := range choice.Candidates {
		byID[c.ID] = c
	}
	picked := make([]*game.GameCard, 0, len(resp.CardIDs))
	for _, id := range resp.CardIDs {
		if c, ok := byID[id]; ok {
			picked = append(picked, c)
		}
	}
	return picked, nil
}

// ChooseManaColor implements game.DecisionProvider.
func (p *Provider) ChooseManaColor(ctx context.Context, playerID string, options []mana.Color) (*mana.Color, error) {
	var resp ManaColorResponse
	if err := p.ask(ctx, TypeManaColor, ManaColorRequest{Options: options}, &resp); err != nil {
		return nil, p.defaulted(err, TypeManaColor)
	}
	if resp.Color == "" {
		return nil, nil
	}
	return &resp.Color, nil
}

// ChooseGenericPayment implements game.DecisionProvider.
func (p *Provider) ChooseGenericPayment(ctx context.Context, playerID string, amount int, available map[mana.Color]int) (map[mana.Color]int, error) {
	var resp GenericPaymentResponse
	err := p.ask(ctx, TypeGenericPayment, GenericPaymentRequest{Amount: amount, Available: available}, &resp)
	if err != nil {
		return nil, p.defaulted(err, TypeGenericPayment)
	}
	return resp.Allocation, nil
}

// GetMulliganDecision implements game.DecisionProvider. A timeout keeps.
func (p *Provider) GetMulliganDecision(ctx context.Context, playerID string, hand []*game.GameCard, mulligans int) (game.MulliganDecision, error) {
	var resp MulliganResponse
	err := p.ask(ctx, TypeMulligan, MulliganRequest{Hand: cardViews(hand), Mulligans: mulligans}, &resp)
	if err != nil {
		return game.Keep, p.defaulted(err, TypeMulligan)
	}
	if resp.Mulligan {
		return game.Mulligan, nil
	}
	return game.Keep, nil
}

var _ game.DecisionProvider = (*Provider)(nil)

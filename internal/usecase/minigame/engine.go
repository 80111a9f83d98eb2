package minigame

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/duetapp/duet-backend/internal/usecase/session"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// StateTTL bounds how long an abandoned game may linger in the store.
	StateTTL time.Duration
	// HeadsupTurnTimeout is the per-turn answer window.
	HeadsupTurnTimeout time.Duration
	// TriviaWindow is the shared per-question answer window.
	TriviaWindow time.Duration
	// RevealDelay is how long a revealing phase is shown before the game
	// auto-advances.
	RevealDelay time.Duration
	// TeardownDelay lets clients render a decided board before the game
	// is torn down.
	TeardownDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		StateTTL:           30 * time.Minute,
		HeadsupTurnTimeout: 60 * time.Second,
		TriviaWindow:       15 * time.Second,
		RevealDelay:        5 * time.Second,
		TeardownDelay:      3 * time.Second,
	}
}

// Engine runs the four in-call minigames. All four share one shape: state
// lives in the shared store with a TTL, transitions come from a validated
// player action or a server-owned countdown, and every transition is
// broadcast to both room members. Invalid actions are dropped silently;
// they are indistinguishable from benign network races.
type Engine struct {
	rooms  store.RoomStore
	games  store.GameStore
	broker store.Broker
	timers *session.RoomTimers
	cfg    Config
	randn  func(n int) int
}

func NewEngine(rooms store.RoomStore, games store.GameStore, broker store.Broker, timers *session.RoomTimers, cfg Config) *Engine {
	return &Engine{
		rooms:  rooms,
		games:  games,
		broker: broker,
		timers: timers,
		cfg:    cfg,
		randn:  rand.Intn,
	}
}

// RequestGame relays a game invitation to the peer.
func (e *Engine) RequestGame(ctx context.Context, roomID, fromID string, gameID domain.GameID) error {
	if !gameID.Valid() {
		log.Debug().Str("room", roomID).Str("game", string(gameID)).Msg("dropping request for unknown game")
		return nil
	}
	ev, err := store.NewEvent("game-request", map[string]string{"gameId": string(gameID)})
	if err != nil {
		return err
	}
	ev.From = fromID
	return e.broker.PublishRoom(ctx, roomID, ev)
}

// CancelRequest withdraws a pending game invitation.
func (e *Engine) CancelRequest(ctx context.Context, roomID, fromID string) error {
	return e.broker.PublishRoom(ctx, roomID, store.Event{Event: "cancel-game-request", From: fromID})
}

// StartGame assigns roles with a coin flip, writes the initial state and
// broadcasts game-started.
func (e *Engine) StartGame(ctx context.Context, roomID string, gameID domain.GameID) error {
	if !gameID.Valid() {
		log.Debug().Str("room", roomID).Str("game", string(gameID)).Msg("dropping start of unknown game")
		return nil
	}
	room, err := e.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}

	players := [2]string{room.User1, room.User2}
	if e.randn(2) == 1 {
		players[0], players[1] = players[1], players[0]
	}

	state := &State{GameID: gameID}
	switch gameID {
	case domain.GameHeadsup:
		state.Headsup = e.newHeadsup(players)
	case domain.GameTicTacToe:
		state.TicTacToe = newTicTacToe(players)
	case domain.GameTwoTruthsLie:
		state.TwoTruths = newTwoTruths(players)
	case domain.GameTrivia:
		state.Trivia = e.newTrivia(players)
	}

	if err := e.save(ctx, roomID, state); err != nil {
		return err
	}
	if err := e.broadcast(ctx, roomID, "game-started", map[string]interface{}{
		"gameId":    gameID,
		"gameState": state,
	}); err != nil {
		return err
	}

	switch gameID {
	case domain.GameHeadsup:
		e.armHeadsupTimer(roomID)
	case domain.GameTrivia:
		e.armTriviaTimer(roomID)
	}
	log.Info().Str("room", roomID).Str("game", string(gameID)).Msg("game started")
	return nil
}

// EndGame is the shared decommission path for every variant: broadcast
// game-ended, cancel the pending game timer, delete the TTL'd state.
func (e *Engine) EndGame(ctx context.Context, roomID string) error {
	e.timers.Cancel(session.GameTimerKey(roomID))
	if err := e.games.Delete(ctx, roomID); err != nil {
		return err
	}
	return e.broker.PublishRoom(ctx, roomID, store.Event{Event: "game-ended"})
}

func (e *Engine) load(ctx context.Context, roomID string, gameID domain.GameID) (*State, bool) {
	raw, err := e.games.Load(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("load game state")
		return nil, false
	}
	state, err := decodeState(raw)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("corrupt game state")
		return nil, false
	}
	if state == nil || state.GameID != gameID {
		return nil, false
	}
	return state, true
}

func (e *Engine) save(ctx context.Context, roomID string, state *State) error {
	raw, err := encodeState(state)
	if err != nil {
		return err
	}
	return e.games.Save(ctx, roomID, raw, e.cfg.StateTTL)
}

func (e *Engine) broadcast(ctx context.Context, roomID, event string, payload interface{}) error {
	ev, err := store.NewEvent(event, payload)
	if err != nil {
		return err
	}
	return e.broker.PublishRoom(ctx, roomID, ev)
}

// drop logs and swallows an invalid player action. Client bugs and stale
// frames are no-ops, not protocol faults.
func drop(roomID, userID, reason string) {
	log.Debug().Str("room", roomID).Str("user", userID).Str("reason", reason).Msg("dropping game action")
}

// normalizeAnswer compares answers case- and whitespace-insensitively.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

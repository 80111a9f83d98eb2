package minigame

import (
	"context"
	"testing"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/duetapp/duet-backend/internal/store/storetest"
	"github.com/duetapp/duet-backend/internal/usecase/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gameFixture struct {
	engine *Engine
	rooms  *storetest.Rooms
	games  *storetest.Games
	broker *storetest.Broker
	timers *session.RoomTimers
}

// newGameFixture builds an engine with a pinned coin flip (players keep
// room order, draws pick the first unused entry) and short delays.
func newGameFixture(t *testing.T) *gameFixture {
	t.Helper()
	f := &gameFixture{
		rooms:  storetest.NewRooms(),
		games:  storetest.NewGames(),
		broker: storetest.NewBroker(),
		timers: session.NewRoomTimers(),
	}
	cfg := Config{
		StateTTL:           time.Minute,
		HeadsupTurnTimeout: time.Minute,
		TriviaWindow:       time.Minute,
		RevealDelay:        10 * time.Millisecond,
		TeardownDelay:      10 * time.Millisecond,
	}
	f.engine = NewEngine(f.rooms, f.games, f.broker, f.timers, cfg)
	f.engine.randn = func(int) int { return 0 }

	require.NoError(t, f.rooms.Create(context.Background(), &domain.Room{
		ID:    "r1",
		User1: "alice",
		User2: "bob",
	}))
	return f
}

func (f *gameFixture) state(t *testing.T, gameID domain.GameID) *State {
	t.Helper()
	state, ok := f.engine.load(context.Background(), "r1", gameID)
	require.True(t, ok, "expected an active %s game", gameID)
	return state
}

func (f *gameFixture) putState(t *testing.T, state *State) {
	t.Helper()
	require.NoError(t, f.engine.save(context.Background(), "r1", state))
}

// waitFor blocks until the room channel carries the event or fails the test.
func (f *gameFixture) waitFor(t *testing.T, event string) store.Event {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		for _, ev := range f.broker.Events("room:r1") {
			if ev.Event == event {
				return ev
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("event %q never published", event)
	return store.Event{}
}

func TestRequestGame(t *testing.T) {
	ctx := context.Background()

	t.Run("valid request is relayed with sender", func(t *testing.T) {
		f := newGameFixture(t)
		require.NoError(t, f.engine.RequestGame(ctx, "r1", "alice", domain.GameTicTacToe))

		ev, ok := f.broker.LastEvent("room:r1")
		require.True(t, ok)
		assert.Equal(t, "game-request", ev.Event)
		assert.Equal(t, "alice", ev.From)
	})

	t.Run("unknown game id is dropped", func(t *testing.T) {
		f := newGameFixture(t)
		require.NoError(t, f.engine.RequestGame(ctx, "r1", "alice", "chess"))
		_, ok := f.broker.LastEvent("room:r1")
		assert.False(t, ok)
	})

	t.Run("cancel is relayed", func(t *testing.T) {
		f := newGameFixture(t)
		require.NoError(t, f.engine.CancelRequest(ctx, "r1", "bob"))
		ev, ok := f.broker.LastEvent("room:r1")
		require.True(t, ok)
		assert.Equal(t, "cancel-game-request", ev.Event)
		assert.Equal(t, "bob", ev.From)
	})
}

func TestStartGame(t *testing.T) {
	ctx := context.Background()

	t.Run("initializes each variant", func(t *testing.T) {
		for _, gameID := range []domain.GameID{
			domain.GameHeadsup, domain.GameTicTacToe, domain.GameTwoTruthsLie, domain.GameTrivia,
		} {
			f := newGameFixture(t)
			require.NoError(t, f.engine.StartGame(ctx, "r1", gameID))

			ev, ok := f.broker.LastEvent("room:r1")
			require.True(t, ok)
			assert.Equal(t, "game-started", ev.Event)

			state := f.state(t, gameID)
			assert.Equal(t, gameID, state.GameID)
		}
	})

	t.Run("coin flip decides roles", func(t *testing.T) {
		f := newGameFixture(t)
		f.engine.randn = func(int) int { return 1 }
		require.NoError(t, f.engine.StartGame(ctx, "r1", domain.GameTicTacToe))

		state := f.state(t, domain.GameTicTacToe)
		assert.Equal(t, "bob", state.TicTacToe.PlayerX)
		assert.Equal(t, "alice", state.TicTacToe.PlayerO)
	})

	t.Run("unknown game id is dropped", func(t *testing.T) {
		f := newGameFixture(t)
		require.NoError(t, f.engine.StartGame(ctx, "r1", "chess"))
		raw, err := f.games.Load(ctx, "r1")
		require.NoError(t, err)
		assert.Nil(t, raw)
	})
}

func TestEndGame(t *testing.T) {
	ctx := context.Background()
	f := newGameFixture(t)
	require.NoError(t, f.engine.StartGame(ctx, "r1", domain.GameTicTacToe))

	require.NoError(t, f.engine.EndGame(ctx, "r1"))

	ev, ok := f.broker.LastEvent("room:r1")
	require.True(t, ok)
	assert.Equal(t, "game-ended", ev.Event)

	raw, err := f.games.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, "hot dog", normalizeAnswer("  Hot   DOG "))
	assert.Equal(t, normalizeAnswer("Pizza"), normalizeAnswer("pizza"))
}

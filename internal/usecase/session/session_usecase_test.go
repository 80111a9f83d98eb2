package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/duetapp/duet-backend/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatches struct {
	mu      sync.Mutex
	created []*domain.Match
	deleted [][2]string
}

func (f *fakeMatches) Create(_ context.Context, match *domain.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, match)
	return nil
}

func (f *fakeMatches) GetByUsers(_ context.Context, _, _ string) (*domain.Match, error) {
	return nil, domain.ErrMatchNotFound
}

func (f *fakeMatches) GetActiveMatches(_ context.Context, _ string) ([]*domain.Match, error) {
	return nil, nil
}

func (f *fakeMatches) DeleteByUsers(_ context.Context, user1ID, user2ID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, [2]string{user1ID, user2ID})
	return nil
}

type sessionFixture struct {
	uc      *UseCase
	rooms   *storetest.Rooms
	votes   *storetest.Votes
	broker  *storetest.Broker
	matches *fakeMatches
	timers  *RoomTimers
}

func newSessionFixture(t *testing.T, cfg Config) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		rooms:   storetest.NewRooms(),
		votes:   storetest.NewVotes(),
		broker:  storetest.NewBroker(),
		matches: &fakeMatches{},
		timers:  NewRoomTimers(),
	}
	f.uc = NewUseCase(f.rooms, f.votes, f.broker, f.matches, f.timers, cfg)
	require.NoError(t, f.rooms.Create(context.Background(), &domain.Room{
		ID:        "r1",
		User1:     "alice",
		User2:     "bob",
		MatchType: domain.MatchTypeRomantic,
	}))
	return f
}

func defaultSessionConfig() Config {
	return Config{
		AnswerTimeout:    time.Minute,
		CallAgainTimeout: time.Minute,
		RoomMaxAge:       time.Hour,
	}
}

func TestVoteMatrix(t *testing.T) {
	ctx := context.Background()

	t.Run("lone vote prompts the peer", func(t *testing.T) {
		f := newSessionFixture(t, defaultSessionConfig())
		require.NoError(t, f.uc.VoteMatch(ctx, "r1", "alice"))

		ev, ok := f.broker.LastEvent("room:r1")
		require.True(t, ok)
		assert.Equal(t, "user-match", ev.Event)
		assert.Equal(t, "alice", ev.From)
	})

	t.Run("both match concludes and persists", func(t *testing.T) {
		f := newSessionFixture(t, defaultSessionConfig())
		require.NoError(t, f.uc.VoteMatch(ctx, "r1", "alice"))
		require.NoError(t, f.uc.VoteMatch(ctx, "r1", "bob"))

		ev, ok := f.broker.LastEvent("room:r1")
		require.True(t, ok)
		assert.Equal(t, "match", ev.Event)

		require.Len(t, f.matches.created, 1)
		assert.Equal(t, domain.MatchTypeRomantic, f.matches.created[0].MatchType)
		assert.True(t, f.matches.created[0].IsActive)

		// Round is cleared, so a fresh vote starts over.
		votes, err := f.votes.All(ctx, store.VoteMatch, "r1")
		require.NoError(t, err)
		assert.Empty(t, votes)
	})

	t.Run("match plus call-again downgrades to call-again", func(t *testing.T) {
		f := newSessionFixture(t, defaultSessionConfig())
		require.NoError(t, f.uc.VoteMatch(ctx, "r1", "alice"))
		require.NoError(t, f.uc.VoteCallAgain(ctx, "r1", "bob"))

		ev, ok := f.broker.LastEvent("room:r1")
		require.True(t, ok)
		assert.Equal(t, "call-again", ev.Event)
		assert.Empty(t, f.matches.created)
	})

	t.Run("standing match vote survives a call-again round", func(t *testing.T) {
		f := newSessionFixture(t, defaultSessionConfig())
		require.NoError(t, f.uc.VoteMatch(ctx, "r1", "alice"))
		require.NoError(t, f.uc.VoteCallAgain(ctx, "r1", "bob"))

		// Bob upgrades to match: alice's vote still stands, so the
		// round concludes as a mutual match.
		require.NoError(t, f.uc.VoteMatch(ctx, "r1", "bob"))

		ev, ok := f.broker.LastEvent("room:r1")
		require.True(t, ok)
		assert.Equal(t, "match", ev.Event)
		require.Len(t, f.matches.created, 1)
	})

	t.Run("both call-again concludes call-again", func(t *testing.T) {
		f := newSessionFixture(t, defaultSessionConfig())
		require.NoError(t, f.uc.VoteCallAgain(ctx, "r1", "alice"))
		require.NoError(t, f.uc.VoteCallAgain(ctx, "r1", "bob"))

		ev, ok := f.broker.LastEvent("room:r1")
		require.True(t, ok)
		assert.Equal(t, "call-again", ev.Event)
	})

	t.Run("retracted vote does not conclude", func(t *testing.T) {
		f := newSessionFixture(t, defaultSessionConfig())
		require.NoError(t, f.uc.VoteMatch(ctx, "r1", "alice"))
		require.NoError(t, f.uc.Unmatch(ctx, "r1", "alice"))
		require.NoError(t, f.uc.VoteMatch(ctx, "r1", "bob"))

		ev, ok := f.broker.LastEvent("room:r1")
		require.True(t, ok)
		assert.Equal(t, "user-match", ev.Event)
		assert.Empty(t, f.matches.created)
	})

	t.Run("non-member cannot vote", func(t *testing.T) {
		f := newSessionFixture(t, defaultSessionConfig())
		err := f.uc.VoteMatch(ctx, "r1", "mallory")
		assert.ErrorIs(t, err, domain.ErrNotRoomMember)
	})
}

func TestAnswerTimeout(t *testing.T) {
	ctx := context.Background()
	cfg := defaultSessionConfig()
	cfg.AnswerTimeout = 20 * time.Millisecond
	f := newSessionFixture(t, cfg)

	events, _, err := f.broker.SubscribeRoom(ctx, "r1")
	require.NoError(t, err)

	require.NoError(t, f.uc.VoteCallAgain(ctx, "r1", "alice"))

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Event != "timeout" {
				continue
			}
			votes, err := f.votes.All(ctx, store.VoteCallAgain, "r1")
			require.NoError(t, err)
			assert.Empty(t, votes)
			return
		case <-deadline:
			t.Fatal("timeout event never published")
		}
	}
}

func TestDeleteMatch(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t, defaultSessionConfig())

	require.NoError(t, f.uc.DeleteMatch(ctx, "r1", "alice"))

	require.Len(t, f.matches.deleted, 1)
	ev, ok := f.broker.LastEvent("room:r1")
	require.True(t, ok)
	assert.Equal(t, "match-deleted", ev.Event)
	assert.Equal(t, "alice", ev.From)
}

func TestSoftLeave(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t, defaultSessionConfig())

	require.NoError(t, f.uc.SoftLeave(ctx, "r1", "alice"))

	media, err := f.rooms.Attr(ctx, "r1", "media:alice")
	require.NoError(t, err)
	assert.Equal(t, "off", media)

	ev, ok := f.broker.LastEvent("room:r1")
	require.True(t, ok)
	assert.Equal(t, "user-left", ev.Event)

	// The room itself survives a soft leave.
	_, err = f.rooms.Get(ctx, "r1")
	assert.NoError(t, err)
}

func TestLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("peer remains, room survives", func(t *testing.T) {
		f := newSessionFixture(t, defaultSessionConfig())
		require.NoError(t, f.rooms.Join(ctx, "r1", "alice"))
		require.NoError(t, f.rooms.Join(ctx, "r1", "bob"))

		require.NoError(t, f.uc.Leave(ctx, "r1", "alice"))

		_, err := f.rooms.Get(ctx, "r1")
		assert.NoError(t, err)
		ev, ok := f.broker.LastEvent("room:r1")
		require.True(t, ok)
		assert.Equal(t, "user-left", ev.Event)
	})

	t.Run("leave cancels pending timers with the peer still present", func(t *testing.T) {
		f := newSessionFixture(t, defaultSessionConfig())
		require.NoError(t, f.rooms.Join(ctx, "r1", "alice"))
		require.NoError(t, f.rooms.Join(ctx, "r1", "bob"))

		var reconnectFired, gameFired atomic.Bool
		f.timers.Set(ReconnectTimerKey("r1"), 30*time.Millisecond, func() { reconnectFired.Store(true) })
		f.timers.Set(GameTimerKey("r1"), 30*time.Millisecond, func() { gameFired.Store(true) })

		require.NoError(t, f.uc.Leave(ctx, "r1", "alice"))

		time.Sleep(60 * time.Millisecond)
		assert.False(t, reconnectFired.Load())
		assert.False(t, gameFired.Load())

		_, err := f.rooms.Get(ctx, "r1")
		assert.NoError(t, err)
	})

	t.Run("last member out destroys the room", func(t *testing.T) {
		f := newSessionFixture(t, defaultSessionConfig())
		require.NoError(t, f.rooms.Join(ctx, "r1", "alice"))

		require.NoError(t, f.uc.Leave(ctx, "r1", "alice"))

		_, err := f.rooms.Get(ctx, "r1")
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
		assert.Equal(t, []string{"r1"}, f.rooms.Purged())
	})
}

func TestSetBackground(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t, defaultSessionConfig())

	require.NoError(t, f.uc.SetBackground(ctx, "r1", "alice", "beach"))

	value, err := f.rooms.Attr(ctx, "r1", "background")
	require.NoError(t, err)
	assert.Equal(t, "beach", value)

	ev, ok := f.broker.LastEvent("room:r1")
	require.True(t, ok)
	assert.Equal(t, "background-changed", ev.Event)
	assert.Equal(t, "alice", ev.From)
}

package matchmaking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/duetapp/duet-backend/internal/compat"
	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users map[string]*domain.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUsers) SetBanned(_ context.Context, id string, banned bool) error {
	user, ok := f.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.IsBanned = banned
	return nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
}

func (f *fakeProfiles) Create(_ context.Context, profile *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeProfiles) Update(_ context.Context, profile *domain.Profile) error {
	return f.Create(context.Background(), profile)
}

func (f *fakeProfiles) UpdateWeights(_ context.Context, userID string, weights []float64, strength int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	profile.Weights = weights
	profile.Strength = strength
	return nil
}

type fakeBlocks struct {
	blocked map[string][]string
}

func (f *fakeBlocks) BlockedUserIDs(_ context.Context, userID string) ([]string, error) {
	return f.blocked[userID], nil
}

type fakeReports struct {
	involved map[string][]string
}

func (f *fakeReports) Create(_ context.Context, _ *domain.Report) error { return nil }

func (f *fakeReports) InvolvedUserIDs(_ context.Context, userID string) ([]string, error) {
	return f.involved[userID], nil
}

type failingRooms struct {
	*storetest.Rooms
}

func (f *failingRooms) Create(_ context.Context, _ *domain.Room) error {
	return errors.New("store unavailable")
}

type matchFixture struct {
	uc       *UseCase
	queues   *storetest.Queues
	rooms    *storetest.Rooms
	invites  *storetest.Invites
	broker   *storetest.Broker
	users    *fakeUsers
	profiles *fakeProfiles
	blocks   *fakeBlocks
	reports  *fakeReports
}

func newMatchFixture() *matchFixture {
	f := &matchFixture{
		queues:   storetest.NewQueues(),
		rooms:    storetest.NewRooms(),
		invites:  storetest.NewInvites(),
		broker:   storetest.NewBroker(),
		users:    &fakeUsers{users: make(map[string]*domain.User)},
		profiles: &fakeProfiles{profiles: make(map[string]*domain.Profile)},
		blocks:   &fakeBlocks{blocked: make(map[string][]string)},
		reports:  &fakeReports{involved: make(map[string][]string)},
	}
	scorer := compat.NewScorer(compat.DefaultSchema())
	f.uc = NewUseCase(
		f.queues, f.rooms, f.invites, f.broker,
		f.users, f.profiles, f.blocks, f.reports,
		scorer, 20, time.Minute,
	)
	return f
}

func (f *matchFixture) failRoomCreation() {
	scorer := compat.NewScorer(compat.DefaultSchema())
	f.uc = NewUseCase(
		f.queues, &failingRooms{f.rooms}, f.invites, f.broker,
		f.users, f.profiles, f.blocks, f.reports,
		scorer, 20, time.Minute,
	)
}

func (f *matchFixture) addUser(id, gender, preference string) {
	f.users.users[id] = &domain.User{ID: id, Gender: gender, Preference: preference}
}

func TestEnqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("banned users are rejected", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("alice", "female", "everyone")
		f.users.users["alice"].IsBanned = true

		err := f.uc.Enqueue(ctx, "alice", domain.MatchTypeFriend)
		assert.ErrorIs(t, err, domain.ErrUserBanned)
	})

	t.Run("re-enqueue moves the user across queues", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("alice", "female", "everyone")

		require.NoError(t, f.uc.Enqueue(ctx, "alice", domain.MatchTypeFriend))
		require.NoError(t, f.uc.Enqueue(ctx, "alice", domain.MatchTypeRomantic))

		friends, err := f.queues.Peek(ctx, domain.MatchTypeFriend, 10)
		require.NoError(t, err)
		assert.Empty(t, friends)

		romantic, err := f.queues.Peek(ctx, domain.MatchTypeRomantic, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, romantic)
	})
}

func TestPairFriends(t *testing.T) {
	ctx := context.Background()

	t.Run("pairs the first two in order", func(t *testing.T) {
		f := newMatchFixture()
		for _, id := range []string{"alice", "bob", "carol"} {
			f.addUser(id, "female", "everyone")
			require.NoError(t, f.uc.Enqueue(ctx, id, domain.MatchTypeFriend))
		}

		room, err := f.uc.TryPair(ctx, domain.MatchTypeFriend)
		require.NoError(t, err)
		require.NotNil(t, room)
		assert.Equal(t, "alice", room.User1)
		assert.Equal(t, "bob", room.User2)
		assert.Equal(t, domain.MatchTypeFriend, room.MatchType)

		// Both sides get room-found on their user channels.
		for _, id := range []string{"alice", "bob"} {
			ev, ok := f.broker.LastEvent("user:" + id)
			require.True(t, ok)
			assert.Equal(t, "room-found", ev.Event)
		}

		// Carol stays queued.
		left, err := f.queues.Peek(ctx, domain.MatchTypeFriend, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"carol"}, left)
	})

	t.Run("lone user is pushed back", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("alice", "female", "everyone")
		require.NoError(t, f.uc.Enqueue(ctx, "alice", domain.MatchTypeFriend))

		room, err := f.uc.TryPair(ctx, domain.MatchTypeFriend)
		require.NoError(t, err)
		assert.Nil(t, room)

		left, err := f.queues.Peek(ctx, domain.MatchTypeFriend, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, left)
	})

	t.Run("room creation failure returns both users to the queue", func(t *testing.T) {
		f := newMatchFixture()
		f.failRoomCreation()
		for _, id := range []string{"alice", "bob"} {
			f.addUser(id, "female", "everyone")
			require.NoError(t, f.uc.Enqueue(ctx, id, domain.MatchTypeFriend))
		}

		room, err := f.uc.TryPair(ctx, domain.MatchTypeFriend)
		require.Error(t, err)
		assert.Nil(t, room)

		left, err := f.queues.Peek(ctx, domain.MatchTypeFriend, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, left)
	})
}

func TestPairRomantic(t *testing.T) {
	ctx := context.Background()

	t.Run("best scoring candidate wins over queue order", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("head", "female", "everyone")
		f.addUser("first", "male", "everyone")
		f.addUser("second", "male", "everyone")

		schema := compat.DefaultSchema()
		weights, strength := compat.NewScorer(schema).UpdateWeights(nil, 0, domain.ModuleSelections{"petPreference": "dogs"})
		f.profiles.profiles["head"] = &domain.Profile{
			UserID: "head", Weights: weights, Strength: strength,
		}
		f.profiles.profiles["first"] = &domain.Profile{
			UserID: "first", Selections: domain.ModuleSelections{"petPreference": "cats"},
		}
		f.profiles.profiles["second"] = &domain.Profile{
			UserID: "second", Selections: domain.ModuleSelections{"petPreference": "dogs"},
		}

		for _, id := range []string{"head", "first", "second"} {
			require.NoError(t, f.uc.Enqueue(ctx, id, domain.MatchTypeRomantic))
		}

		room, err := f.uc.TryPair(ctx, domain.MatchTypeRomantic)
		require.NoError(t, err)
		require.NotNil(t, room)
		assert.Equal(t, "head", room.User1)
		assert.Equal(t, "second", room.User2)

		// The losing candidate stays queued.
		left, err := f.queues.Peek(ctx, domain.MatchTypeRomantic, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"first"}, left)
	})

	t.Run("orientation incompatible candidates are skipped", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("head", "female", "male")
		f.addUser("candidate", "female", "everyone")

		require.NoError(t, f.uc.Enqueue(ctx, "head", domain.MatchTypeRomantic))
		require.NoError(t, f.uc.Enqueue(ctx, "candidate", domain.MatchTypeRomantic))

		room, err := f.uc.TryPair(ctx, domain.MatchTypeRomantic)
		require.NoError(t, err)
		assert.Nil(t, room)

		// Nobody lost their place.
		left, err := f.queues.Peek(ctx, domain.MatchTypeRomantic, 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"head", "candidate"}, left)
	})

	t.Run("blocked candidates are skipped", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("head", "female", "everyone")
		f.addUser("candidate", "male", "everyone")
		f.blocks.blocked["head"] = []string{"candidate"}

		require.NoError(t, f.uc.Enqueue(ctx, "head", domain.MatchTypeRomantic))
		require.NoError(t, f.uc.Enqueue(ctx, "candidate", domain.MatchTypeRomantic))

		room, err := f.uc.TryPair(ctx, domain.MatchTypeRomantic)
		require.NoError(t, err)
		assert.Nil(t, room)
	})

	t.Run("pairing updates both weight vectors", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("head", "female", "everyone")
		f.addUser("candidate", "male", "everyone")
		f.profiles.profiles["head"] = &domain.Profile{
			UserID: "head", Selections: domain.ModuleSelections{"petPreference": "dogs"},
		}
		f.profiles.profiles["candidate"] = &domain.Profile{
			UserID: "candidate", Selections: domain.ModuleSelections{"petPreference": "cats"},
		}

		require.NoError(t, f.uc.Enqueue(ctx, "head", domain.MatchTypeRomantic))
		require.NoError(t, f.uc.Enqueue(ctx, "candidate", domain.MatchTypeRomantic))

		room, err := f.uc.TryPair(ctx, domain.MatchTypeRomantic)
		require.NoError(t, err)
		require.NotNil(t, room)

		assert.Equal(t, 1, f.profiles.profiles["head"].Strength)
		assert.Equal(t, 1, f.profiles.profiles["candidate"].Strength)
		assert.NotEmpty(t, f.profiles.profiles["head"].Weights)
	})

	t.Run("empty queue is a quiet no-op", func(t *testing.T) {
		f := newMatchFixture()
		room, err := f.uc.TryPair(ctx, domain.MatchTypeRomantic)
		require.NoError(t, err)
		assert.Nil(t, room)
	})

	t.Run("room creation failure restores head and claimed candidate", func(t *testing.T) {
		f := newMatchFixture()
		f.failRoomCreation()
		f.addUser("head", "female", "everyone")
		f.addUser("candidate", "male", "everyone")
		require.NoError(t, f.uc.Enqueue(ctx, "head", domain.MatchTypeRomantic))
		require.NoError(t, f.uc.Enqueue(ctx, "candidate", domain.MatchTypeRomantic))

		room, err := f.uc.TryPair(ctx, domain.MatchTypeRomantic)
		require.NoError(t, err)
		assert.Nil(t, room)

		left, err := f.queues.Peek(ctx, domain.MatchTypeRomantic, 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"head", "candidate"}, left)
	})
}

func TestDirectCalls(t *testing.T) {
	ctx := context.Background()

	t.Run("invite notifies the callee", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("bob", "male", "everyone")

		invite, err := f.uc.InviteDirect(ctx, "alice", "bob", domain.MatchTypeFriend)
		require.NoError(t, err)

		ev, ok := f.broker.LastEvent("user:bob")
		require.True(t, ok)
		assert.Equal(t, "direct-call-invite", ev.Event)
		assert.NotEmpty(t, invite.ID)
	})

	t.Run("accept creates the room", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("bob", "male", "everyone")
		invite, err := f.uc.InviteDirect(ctx, "alice", "bob", domain.MatchTypeRomantic)
		require.NoError(t, err)

		room, err := f.uc.AcceptDirect(ctx, "bob", invite.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", room.User1)
		assert.Equal(t, "bob", room.User2)

		// The invite is single-use.
		_, err = f.uc.AcceptDirect(ctx, "bob", invite.ID)
		assert.ErrorIs(t, err, domain.ErrInviteNotFound)
	})

	t.Run("only the callee may accept", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("bob", "male", "everyone")
		invite, err := f.uc.InviteDirect(ctx, "alice", "bob", domain.MatchTypeFriend)
		require.NoError(t, err)

		_, err = f.uc.AcceptDirect(ctx, "mallory", invite.ID)
		assert.ErrorIs(t, err, domain.ErrInviteNotFound)

		// The failed attempt did not consume the invite.
		_, err = f.uc.AcceptDirect(ctx, "bob", invite.ID)
		assert.NoError(t, err)
	})

	t.Run("concurrent accepts create exactly one room", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("bob", "male", "everyone")
		invite, err := f.uc.InviteDirect(ctx, "alice", "bob", domain.MatchTypeRomantic)
		require.NoError(t, err)

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.uc.AcceptDirect(ctx, "bob", invite.ID); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("decline notifies the caller", func(t *testing.T) {
		f := newMatchFixture()
		f.addUser("bob", "male", "everyone")
		invite, err := f.uc.InviteDirect(ctx, "alice", "bob", domain.MatchTypeFriend)
		require.NoError(t, err)

		require.NoError(t, f.uc.DeclineDirect(ctx, "bob", invite.ID))

		ev, ok := f.broker.LastEvent("user:alice")
		require.True(t, ok)
		assert.Equal(t, "direct-call-declined", ev.Event)
	})
}

package minigame

import (
	"context"
	"testing"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHeadsup(t *testing.T) *gameFixture {
	t.Helper()
	f := newGameFixture(t)
	require.NoError(t, f.engine.StartGame(context.Background(), "r1", domain.GameHeadsup))
	return f
}

func strptr(s string) *string { return &s }

func TestAnswerHeadsup(t *testing.T) {
	ctx := context.Background()

	t.Run("correct answer scores and swaps the guesser", func(t *testing.T) {
		f := startHeadsup(t)
		item := f.state(t, domain.GameHeadsup).Headsup.Item

		require.NoError(t, f.engine.AnswerHeadsup(ctx, "r1", "alice", strptr(item)))

		hs := f.state(t, domain.GameHeadsup).Headsup
		assert.Equal(t, 1, hs.NumCorrect)
		assert.Equal(t, 2, hs.Turn)
		assert.Equal(t, "bob", hs.Guesser)
		assert.NotEqual(t, item, hs.Item)
		assert.Contains(t, hs.UsedItems, item)
	})

	t.Run("answers compare case and whitespace insensitively", func(t *testing.T) {
		f := startHeadsup(t)
		item := f.state(t, domain.GameHeadsup).Headsup.Item

		require.NoError(t, f.engine.AnswerHeadsup(ctx, "r1", "alice", strptr("  "+item+" ")))
		assert.Equal(t, 1, f.state(t, domain.GameHeadsup).Headsup.NumCorrect)
	})

	t.Run("wrong answer advances without scoring", func(t *testing.T) {
		f := startHeadsup(t)
		require.NoError(t, f.engine.AnswerHeadsup(ctx, "r1", "alice", strptr("definitely wrong")))

		hs := f.state(t, domain.GameHeadsup).Headsup
		assert.Equal(t, 0, hs.NumCorrect)
		assert.Equal(t, 2, hs.Turn)
		assert.Equal(t, "bob", hs.Guesser)
	})

	t.Run("only the guesser may answer", func(t *testing.T) {
		f := startHeadsup(t)
		require.NoError(t, f.engine.AnswerHeadsup(ctx, "r1", "bob", strptr("giraffe")))
		assert.Equal(t, 1, f.state(t, domain.GameHeadsup).Headsup.Turn)
	})

	t.Run("turn timeout advances with a nil answer", func(t *testing.T) {
		f := startHeadsup(t)
		f.engine.cfg.HeadsupTurnTimeout = 10 * time.Millisecond
		// Re-arm with the shortened window.
		f.engine.armHeadsupTimer("r1")

		f.waitFor(t, "headsup-advanced")
		require.Eventually(t, func() bool {
			return f.state(t, domain.GameHeadsup).Headsup.Turn == 2
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, 0, f.state(t, domain.GameHeadsup).Headsup.NumCorrect)
	})

	t.Run("final turn finishes the game", func(t *testing.T) {
		f := startHeadsup(t)
		state := f.state(t, domain.GameHeadsup)
		state.Headsup.Turn = headsupMaxTurns
		f.putState(t, state)

		require.NoError(t, f.engine.AnswerHeadsup(ctx, "r1", "alice", nil))

		f.waitFor(t, "game-ended")
		raw, err := f.games.Load(ctx, "r1")
		require.NoError(t, err)
		assert.Nil(t, raw)
	})
}

package minigame

import (
	"context"
	"testing"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTicTacToe(t *testing.T) *gameFixture {
	t.Helper()
	f := newGameFixture(t)
	require.NoError(t, f.engine.StartGame(context.Background(), "r1", domain.GameTicTacToe))
	return f
}

func TestMoveTicTacToe(t *testing.T) {
	ctx := context.Background()

	t.Run("alternates turns", func(t *testing.T) {
		f := startTicTacToe(t)
		require.NoError(t, f.engine.MoveTicTacToe(ctx, "r1", "alice", 0))

		state := f.state(t, domain.GameTicTacToe)
		assert.Equal(t, "X", state.TicTacToe.Board[0])
		assert.Equal(t, "bob", state.TicTacToe.Turn)

		ev, ok := f.broker.LastEvent("room:r1")
		require.True(t, ok)
		assert.Equal(t, "tictactoe-advanced", ev.Event)
	})

	t.Run("rejected moves leave the board untouched", func(t *testing.T) {
		f := startTicTacToe(t)
		require.NoError(t, f.engine.MoveTicTacToe(ctx, "r1", "alice", 0))
		before := f.state(t, domain.GameTicTacToe).TicTacToe.Board

		// Out of turn, occupied cell, out of range, stranger.
		require.NoError(t, f.engine.MoveTicTacToe(ctx, "r1", "alice", 1))
		require.NoError(t, f.engine.MoveTicTacToe(ctx, "r1", "bob", 0))
		require.NoError(t, f.engine.MoveTicTacToe(ctx, "r1", "bob", 9))
		require.NoError(t, f.engine.MoveTicTacToe(ctx, "r1", "bob", -1))

		after := f.state(t, domain.GameTicTacToe).TicTacToe
		assert.Equal(t, before, after.Board)
		assert.Equal(t, "bob", after.Turn)
	})

	t.Run("three in a row wins and tears down", func(t *testing.T) {
		f := startTicTacToe(t)
		moves := []struct {
			player string
			cell   int
		}{
			{"alice", 0}, {"bob", 3}, {"alice", 1}, {"bob", 4}, {"alice", 2},
		}
		for _, m := range moves {
			require.NoError(t, f.engine.MoveTicTacToe(ctx, "r1", m.player, m.cell))
		}

		state := f.state(t, domain.GameTicTacToe).TicTacToe
		assert.True(t, state.Decided)
		assert.Equal(t, "alice", state.Winner)
		assert.False(t, state.Tie)

		// Further moves are ignored.
		require.NoError(t, f.engine.MoveTicTacToe(ctx, "r1", "bob", 5))
		assert.Empty(t, f.state(t, domain.GameTicTacToe).TicTacToe.Board[5])

		f.waitFor(t, "game-ended")
	})

	t.Run("full board without a line is a tie", func(t *testing.T) {
		f := startTicTacToe(t)
		moves := []struct {
			player string
			cell   int
		}{
			{"alice", 0}, {"bob", 1}, {"alice", 2}, {"bob", 4}, {"alice", 3},
			{"bob", 5}, {"alice", 7}, {"bob", 6}, {"alice", 8},
		}
		for _, m := range moves {
			require.NoError(t, f.engine.MoveTicTacToe(ctx, "r1", m.player, m.cell))
		}

		state := f.state(t, domain.GameTicTacToe).TicTacToe
		assert.True(t, state.Decided)
		assert.True(t, state.Tie)
		assert.Empty(t, state.Winner)
	})

	t.Run("winning line beats tie on the last cell", func(t *testing.T) {
		f := startTicTacToe(t)
		// The ninth move fills the board and completes column 2,5,8.
		moves := []struct {
			player string
			cell   int
		}{
			{"alice", 2}, {"bob", 0}, {"alice", 5}, {"bob", 3}, {"alice", 1},
			{"bob", 4}, {"alice", 6}, {"bob", 7}, {"alice", 8},
		}
		for _, m := range moves {
			require.NoError(t, f.engine.MoveTicTacToe(ctx, "r1", m.player, m.cell))
		}

		state := f.state(t, domain.GameTicTacToe).TicTacToe
		assert.True(t, state.Decided)
		assert.Equal(t, "alice", state.Winner)
		assert.False(t, state.Tie)
	})
}

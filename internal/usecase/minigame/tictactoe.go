package minigame

import (
	"context"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/usecase/session"
	"github.com/rs/zerolog/log"
)

// The eight winning lines of the 3x3 board.
var ticTacToeLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func newTicTacToe(players [2]string) *TicTacToeState {
	// The coin flip already shuffled players; X always moves first.
	return &TicTacToeState{
		PlayerX: players[0],
		PlayerO: players[1],
		Turn:    players[0],
	}
}

// MoveTicTacToe applies one move. Out-of-turn moves, occupied cells and
// out-of-range indices leave the board untouched.
func (e *Engine) MoveTicTacToe(ctx context.Context, roomID, userID string, cell int) error {
	state, ok := e.load(ctx, roomID, domain.GameTicTacToe)
	if !ok {
		drop(roomID, userID, "no active tictactoe game")
		return nil
	}
	ttt := state.TicTacToe
	if ttt.Decided {
		drop(roomID, userID, "move after game decided")
		return nil
	}
	if userID != ttt.Turn {
		drop(roomID, userID, "move out of turn")
		return nil
	}
	if cell < 0 || cell >= len(ttt.Board) {
		drop(roomID, userID, "cell index out of range")
		return nil
	}
	if ttt.Board[cell] != "" {
		drop(roomID, userID, "cell already occupied")
		return nil
	}

	mark := "O"
	if userID == ttt.PlayerX {
		mark = "X"
	}
	ttt.Board[cell] = mark

	// A full line of identical marks is always checked before the tie.
	if winner := winningMark(ttt.Board); winner != "" {
		ttt.Decided = true
		if winner == "X" {
			ttt.Winner = ttt.PlayerX
		} else {
			ttt.Winner = ttt.PlayerO
		}
	} else if boardFull(ttt.Board) {
		ttt.Decided = true
		ttt.Tie = true
	} else {
		if ttt.Turn == ttt.PlayerX {
			ttt.Turn = ttt.PlayerO
		} else {
			ttt.Turn = ttt.PlayerX
		}
	}

	if err := e.save(ctx, roomID, state); err != nil {
		return err
	}
	if err := e.broadcast(ctx, roomID, "tictactoe-advanced", map[string]interface{}{
		"gameState": state,
		"cell":      cell,
		"mark":      mark,
	}); err != nil {
		return err
	}

	if ttt.Decided {
		// Grace delay so both clients can render the final board.
		e.timers.Set(session.GameTimerKey(roomID), e.cfg.TeardownDelay, func() {
			if err := e.EndGame(context.Background(), roomID); err != nil {
				log.Error().Err(err).Str("room", roomID).Msg("tictactoe teardown")
			}
		})
	}
	return nil
}

func winningMark(board [9]string) string {
	for _, line := range ticTacToeLines {
		mark := board[line[0]]
		if mark != "" && mark == board[line[1]] && mark == board[line[2]] {
			return mark
		}
	}
	return ""
}

func boardFull(board [9]string) bool {
	for _, cell := range board {
		if cell == "" {
			return false
		}
	}
	return true
}

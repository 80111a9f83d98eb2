package minigame

import (
	"context"
	"strings"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/usecase/session"
	"github.com/rs/zerolog/log"
)

// Three rounds of two turns each: every player submits once per round.
const twoTruthsMaxTurns = 6

func newTwoTruths(players [2]string) *TwoTruthsState {
	return &TwoTruthsState{
		Players:   players,
		Turn:      1,
		Round:     1,
		Phase:     PhaseSubmitting,
		Submitter: players[0],
		Guesser:   players[1],
		LieIndex:  -1,
		Scores:    map[string]int{players[0]: 0, players[1]: 0},
	}
}

// SubmitStatements accepts the submitter's three statements and the index
// of the lie, then opens the guessing phase.
func (e *Engine) SubmitStatements(ctx context.Context, roomID, userID string, statements []string, lieIndex int) error {
	state, ok := e.load(ctx, roomID, domain.GameTwoTruthsLie)
	if !ok {
		drop(roomID, userID, "no active twotruthslie game")
		return nil
	}
	tt := state.TwoTruths
	if tt.Phase != PhaseSubmitting {
		drop(roomID, userID, "submit outside submitting phase")
		return nil
	}
	if userID != tt.Submitter {
		drop(roomID, userID, "submit from non-submitting player")
		return nil
	}
	if len(statements) != 3 {
		drop(roomID, userID, "wrong statement count")
		return nil
	}
	for _, s := range statements {
		if strings.TrimSpace(s) == "" {
			drop(roomID, userID, "empty statement")
			return nil
		}
	}
	if lieIndex < 0 || lieIndex >= len(statements) {
		drop(roomID, userID, "lie index out of range")
		return nil
	}

	tt.Statements = statements
	tt.LieIndex = lieIndex
	tt.Phase = PhaseGuessing

	if err := e.save(ctx, roomID, state); err != nil {
		return err
	}
	return e.broadcast(ctx, roomID, "twotruthslie-changed", map[string]interface{}{
		"gameState": state,
	})
}

// GuessLie resolves the guesser's pick: a correct lie index scores the
// guesser, anything else scores the submitter. The revealing phase then
// auto-advances to the next turn.
func (e *Engine) GuessLie(ctx context.Context, roomID, userID string, guessedIndex int) error {
	state, ok := e.load(ctx, roomID, domain.GameTwoTruthsLie)
	if !ok {
		drop(roomID, userID, "no active twotruthslie game")
		return nil
	}
	tt := state.TwoTruths
	if tt.Phase != PhaseGuessing {
		drop(roomID, userID, "guess outside guessing phase")
		return nil
	}
	if userID != tt.Guesser {
		drop(roomID, userID, "guess from non-guessing player")
		return nil
	}
	if guessedIndex < 0 || guessedIndex >= len(tt.Statements) {
		drop(roomID, userID, "guess index out of range")
		return nil
	}

	correct := guessedIndex == tt.LieIndex
	if correct {
		tt.Scores[tt.Guesser]++
	} else {
		tt.Scores[tt.Submitter]++
	}
	tt.Phase = PhaseRevealing

	if err := e.save(ctx, roomID, state); err != nil {
		return err
	}
	if err := e.broadcast(ctx, roomID, "twotruthslie-changed", map[string]interface{}{
		"gameState":    state,
		"guessedIndex": guessedIndex,
		"lieIndex":     tt.LieIndex,
		"correct":      correct,
	}); err != nil {
		return err
	}

	e.timers.Set(session.GameTimerKey(roomID), e.cfg.RevealDelay, func() {
		if err := e.advanceTwoTruths(context.Background(), roomID); err != nil {
			log.Error().Err(err).Str("room", roomID).Msg("twotruthslie advance")
		}
	})
	return nil
}

func (e *Engine) advanceTwoTruths(ctx context.Context, roomID string) error {
	state, ok := e.load(ctx, roomID, domain.GameTwoTruthsLie)
	if !ok {
		return nil
	}
	tt := state.TwoTruths
	if tt.Phase != PhaseRevealing {
		return nil
	}

	if tt.Turn >= twoTruthsMaxTurns {
		if err := e.broadcast(ctx, roomID, "twotruthslie-changed", map[string]interface{}{
			"gameState": state,
			"finished":  true,
		}); err != nil {
			return err
		}
		return e.EndGame(ctx, roomID)
	}

	tt.Turn++
	tt.Round = (tt.Turn + 1) / 2
	tt.Submitter, tt.Guesser = tt.Guesser, tt.Submitter
	tt.Statements = nil
	tt.LieIndex = -1
	tt.Phase = PhaseSubmitting

	if err := e.save(ctx, roomID, state); err != nil {
		return err
	}
	return e.broadcast(ctx, roomID, "twotruthslie-changed", map[string]interface{}{
		"gameState": state,
	})
}

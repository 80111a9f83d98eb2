package minigame

import (
	"context"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/usecase/session"
	"github.com/rs/zerolog/log"
)

const triviaMaxQuestions = 10

func (e *Engine) newTrivia(players [2]string) *TriviaState {
	state := &TriviaState{
		Players:     players,
		QuestionNum: 1,
		Answers:     map[string]int{},
		Phase:       PhaseAnswering,
	}
	e.drawTriviaQuestion(state)
	return state
}

// drawTriviaQuestion loads a question unused in this game instance.
func (e *Engine) drawTriviaQuestion(state *TriviaState) {
	used := make(map[int]struct{}, len(state.UsedQuestions))
	for _, i := range state.UsedQuestions {
		used[i] = struct{}{}
	}
	fresh := make([]int, 0, len(triviaQuestions))
	for i := range triviaQuestions {
		if _, ok := used[i]; !ok {
			fresh = append(fresh, i)
		}
	}
	pick := fresh[e.randn(len(fresh))]
	state.UsedQuestions = append(state.UsedQuestions, pick)

	q := triviaQuestions[pick]
	state.Question = q.Prompt
	state.Options = q.Options
	state.CorrectIndex = q.Answer
}

// AnswerTrivia locks one player's answer for the current question. The
// round resolves when both have answered or the window timer fires,
// whichever comes first.
func (e *Engine) AnswerTrivia(ctx context.Context, roomID, userID string, answerIndex int) error {
	state, ok := e.load(ctx, roomID, domain.GameTrivia)
	if !ok {
		drop(roomID, userID, "no active trivia game")
		return nil
	}
	tr := state.Trivia
	if tr.Phase != PhaseAnswering {
		drop(roomID, userID, "answer outside answering phase")
		return nil
	}
	if !tr.isPlayer(userID) {
		drop(roomID, userID, "answer from non-player")
		return nil
	}
	if tr.answered(userID) {
		drop(roomID, userID, "answer already locked")
		return nil
	}
	if answerIndex < 0 || answerIndex >= len(tr.Options) {
		drop(roomID, userID, "answer index out of range")
		return nil
	}

	tr.Answers[userID] = answerIndex
	if err := e.save(ctx, roomID, state); err != nil {
		return err
	}

	if len(tr.Answers) == 2 {
		return e.revealTrivia(ctx, roomID)
	}
	return e.broadcast(ctx, roomID, "trivia-changed", map[string]interface{}{
		"gameState": state,
	})
}

// revealTrivia flips the round to revealing, scores the team (a point if
// either player is correct) and schedules the next question or the end.
func (e *Engine) revealTrivia(ctx context.Context, roomID string) error {
	state, ok := e.load(ctx, roomID, domain.GameTrivia)
	if !ok {
		return nil
	}
	tr := state.Trivia
	if tr.Phase != PhaseAnswering {
		return nil
	}
	e.timers.Cancel(session.GameTimerKey(roomID))

	results := make(map[string]bool, 2)
	teamCorrect := false
	for _, player := range tr.Players {
		answer, ok := tr.Answers[player]
		correct := ok && answer == tr.CorrectIndex
		results[player] = correct
		if correct {
			teamCorrect = true
		}
	}
	if teamCorrect {
		tr.Score++
	}
	tr.Phase = PhaseRevealing

	if err := e.save(ctx, roomID, state); err != nil {
		return err
	}
	if err := e.broadcast(ctx, roomID, "trivia-advanced", map[string]interface{}{
		"gameState":   state,
		"results":     results,
		"teamCorrect": teamCorrect,
	}); err != nil {
		return err
	}

	e.timers.Set(session.GameTimerKey(roomID), e.cfg.RevealDelay, func() {
		if err := e.nextTriviaQuestion(context.Background(), roomID); err != nil {
			log.Error().Err(err).Str("room", roomID).Msg("trivia advance")
		}
	})
	return nil
}

func (e *Engine) nextTriviaQuestion(ctx context.Context, roomID string) error {
	state, ok := e.load(ctx, roomID, domain.GameTrivia)
	if !ok {
		return nil
	}
	tr := state.Trivia
	if tr.Phase != PhaseRevealing {
		return nil
	}

	if tr.QuestionNum >= triviaMaxQuestions {
		if err := e.broadcast(ctx, roomID, "trivia-advanced", map[string]interface{}{
			"gameState": state,
			"finished":  true,
		}); err != nil {
			return err
		}
		return e.EndGame(ctx, roomID)
	}

	tr.QuestionNum++
	tr.Answers = map[string]int{}
	tr.Phase = PhaseAnswering
	e.drawTriviaQuestion(tr)

	if err := e.save(ctx, roomID, state); err != nil {
		return err
	}
	if err := e.broadcast(ctx, roomID, "trivia-changed", map[string]interface{}{
		"gameState": state,
	}); err != nil {
		return err
	}
	e.armTriviaTimer(roomID)
	return nil
}

// armTriviaTimer starts the shared answer window. On fire the round
// resolves with whatever answers were locked in time.
func (e *Engine) armTriviaTimer(roomID string) {
	e.timers.Set(session.GameTimerKey(roomID), e.cfg.TriviaWindow, func() {
		if err := e.revealTrivia(context.Background(), roomID); err != nil {
			log.Error().Err(err).Str("room", roomID).Msg("trivia window timeout")
		}
	})
}

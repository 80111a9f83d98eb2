package minigame

import (
	"context"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/usecase/session"
	"github.com/rs/zerolog/log"
)

const headsupMaxTurns = 10

func (e *Engine) newHeadsup(players [2]string) *HeadsupState {
	state := &HeadsupState{
		Players: players,
		Guesser: players[0],
		Turn:    1,
	}
	state.Item = e.drawHeadsupItem(state)
	return state
}

// drawHeadsupItem picks an item never used before in this game instance.
func (e *Engine) drawHeadsupItem(state *HeadsupState) string {
	used := make(map[string]struct{}, len(state.UsedItems))
	for _, item := range state.UsedItems {
		used[item] = struct{}{}
	}
	fresh := make([]string, 0, len(headsupItems))
	for _, item := range headsupItems {
		if _, ok := used[item]; !ok {
			fresh = append(fresh, item)
		}
	}
	item := fresh[e.randn(len(fresh))]
	state.UsedItems = append(state.UsedItems, item)
	return item
}

// AnswerHeadsup handles a guess from the player whose forehead item is
// up. A nil answer is the server-side turn timeout. Either way the turn
// advances, the guesser swaps, and a fresh item is drawn; the score moves
// only on a correct answer.
func (e *Engine) AnswerHeadsup(ctx context.Context, roomID, userID string, answer *string) error {
	state, ok := e.load(ctx, roomID, domain.GameHeadsup)
	if !ok {
		drop(roomID, userID, "no active headsup game")
		return nil
	}
	hs := state.Headsup
	if userID != hs.Guesser {
		drop(roomID, userID, "answer from non-guessing player")
		return nil
	}

	outgoing := hs.Item
	correct := answer != nil && normalizeAnswer(*answer) == normalizeAnswer(outgoing)
	if correct {
		hs.NumCorrect++
	}

	if hs.Turn >= headsupMaxTurns {
		if err := e.broadcast(ctx, roomID, "headsup-advanced", map[string]interface{}{
			"gameState": state,
			"item":      outgoing,
			"correct":   correct,
			"finished":  true,
		}); err != nil {
			return err
		}
		return e.EndGame(ctx, roomID)
	}

	hs.Turn++
	if hs.Guesser == hs.Players[0] {
		hs.Guesser = hs.Players[1]
	} else {
		hs.Guesser = hs.Players[0]
	}
	hs.Item = e.drawHeadsupItem(hs)

	if err := e.save(ctx, roomID, state); err != nil {
		return err
	}
	if err := e.broadcast(ctx, roomID, "headsup-advanced", map[string]interface{}{
		"gameState": state,
		"item":      outgoing,
		"correct":   correct,
		"finished":  false,
	}); err != nil {
		return err
	}
	e.armHeadsupTimer(roomID)
	return nil
}

// armHeadsupTimer starts the per-turn countdown. On fire the turn
// advances with a nil answer on behalf of the current guesser.
func (e *Engine) armHeadsupTimer(roomID string) {
	e.timers.Set(session.GameTimerKey(roomID), e.cfg.HeadsupTurnTimeout, func() {
		ctx := context.Background()
		state, ok := e.load(ctx, roomID, domain.GameHeadsup)
		if !ok {
			return
		}
		if err := e.AnswerHeadsup(ctx, roomID, state.Headsup.Guesser, nil); err != nil {
			log.Error().Err(err).Str("room", roomID).Msg("headsup turn timeout")
		}
	})
}

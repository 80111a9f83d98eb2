package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/repository"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/rs/zerolog/log"
)

// Timer key namespaces. The minigame engine shares the same RoomTimers
// instance so room cleanup can cancel everything pending for a room.
func ReconnectTimerKey(roomID string) string { return "reconnect:" + roomID }
func GameTimerKey(roomID string) string     { return "game:" + roomID }

type Config struct {
	// AnswerTimeout bounds how long a cast vote may wait for the peer's
	// answer before the call times out.
	AnswerTimeout time.Duration
	// CallAgainTimeout is the longer reconnect window armed after both
	// sides agree to call again.
	CallAgainTimeout time.Duration
	// RoomMaxAge is the sweep threshold for rooms orphaned by a crash.
	RoomMaxAge time.Duration
}

// UseCase drives the call continuation protocol: call-again/match voting,
// soft leaves, disconnect cleanup and the room max-age sweep.
type UseCase struct {
	rooms   store.RoomStore
	votes   store.VoteStore
	broker  store.Broker
	matches repository.MatchRepository
	timers  *RoomTimers
	cfg     Config
}

func NewUseCase(
	rooms store.RoomStore,
	votes store.VoteStore,
	broker store.Broker,
	matches repository.MatchRepository,
	timers *RoomTimers,
	cfg Config,
) *UseCase {
	return &UseCase{
		rooms:   rooms,
		votes:   votes,
		broker:  broker,
		matches: matches,
		timers:  timers,
		cfg:     cfg,
	}
}

// VoteCallAgain records a "call again" vote and evaluates the round.
func (uc *UseCase) VoteCallAgain(ctx context.Context, roomID, userID string) error {
	return uc.vote(ctx, store.VoteCallAgain, roomID, userID)
}

// VoteMatch records a "match" vote and evaluates the round.
func (uc *UseCase) VoteMatch(ctx context.Context, roomID, userID string) error {
	return uc.vote(ctx, store.VoteMatch, roomID, userID)
}

func (uc *UseCase) vote(ctx context.Context, kind store.VoteKind, roomID, userID string) error {
	room, err := uc.memberRoom(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if err := uc.votes.Set(ctx, kind, roomID, userID, true); err != nil {
		return err
	}
	return uc.evaluate(ctx, room, kind, userID)
}

// Uncall retracts a pending call-again vote. Idempotent.
func (uc *UseCase) Uncall(ctx context.Context, roomID, userID string) error {
	return uc.votes.ClearUser(ctx, store.VoteCallAgain, roomID, userID)
}

// Unmatch retracts a pending match vote. Idempotent.
func (uc *UseCase) Unmatch(ctx context.Context, roomID, userID string) error {
	return uc.votes.ClearUser(ctx, store.VoteMatch, roomID, userID)
}

// evaluate applies the voting matrix after every cast vote:
//
//	both match                    -> terminal "match", stop the timer
//	one match + one call-again    -> "call-again" (match implies willingness)
//	both call-again               -> "call-again"
//	only one side voted           -> hold, prompt the peer, (re)arm timer
func (uc *UseCase) evaluate(ctx context.Context, room *domain.Room, castKind store.VoteKind, voterID string) error {
	matchVotes, err := uc.votes.All(ctx, store.VoteMatch, room.ID)
	if err != nil {
		return err
	}
	callVotes, err := uc.votes.All(ctx, store.VoteCallAgain, room.ID)
	if err != nil {
		return err
	}

	u1, u2 := room.User1, room.User2
	if matchVotes[u1] && matchVotes[u2] {
		return uc.concludeMatch(ctx, room)
	}

	voted := func(u string) bool { return matchVotes[u] || callVotes[u] }
	if voted(u1) && voted(u2) {
		return uc.concludeCallAgain(ctx, room)
	}

	// Held vote: prompt the peer to act and bound their answer window.
	eventName := "user-call-again"
	if castKind == store.VoteMatch {
		eventName = "user-match"
	}
	ev := store.Event{Event: eventName, From: voterID}
	if err := uc.broker.PublishRoom(ctx, room.ID, ev); err != nil {
		return err
	}
	uc.armReconnectTimer(room.ID, uc.cfg.AnswerTimeout)
	return nil
}

func (uc *UseCase) concludeMatch(ctx context.Context, room *domain.Room) error {
	uc.timers.Cancel(ReconnectTimerKey(room.ID))

	match := &domain.Match{
		User1ID:   room.User1,
		User2ID:   room.User2,
		MatchType: room.MatchType,
		IsActive:  true,
	}
	if err := uc.matches.Create(ctx, match); err != nil {
		return fmt.Errorf("persist match for room %s: %w", room.ID, err)
	}

	ev, err := store.NewEvent("match", map[string]string{"matchType": string(room.MatchType)})
	if err != nil {
		return err
	}
	if err := uc.broker.PublishRoom(ctx, room.ID, ev); err != nil {
		return err
	}
	return uc.clearRound(ctx, room.ID)
}

// concludeCallAgain keeps the cast votes in place: a standing match vote
// must still count when the peer later upgrades call-again to match, so
// only the terminal match outcome and the timeout clear the round.
func (uc *UseCase) concludeCallAgain(ctx context.Context, room *domain.Room) error {
	ev := store.Event{Event: "call-again"}
	if err := uc.broker.PublishRoom(ctx, room.ID, ev); err != nil {
		return err
	}
	uc.armReconnectTimer(room.ID, uc.cfg.CallAgainTimeout)
	return nil
}

func (uc *UseCase) clearRound(ctx context.Context, roomID string) error {
	if err := uc.votes.Clear(ctx, store.VoteMatch, roomID); err != nil {
		return err
	}
	return uc.votes.Clear(ctx, store.VoteCallAgain, roomID)
}

// armReconnectTimer (re)starts the server-owned timeout for the room. On
// fire it unconditionally emits the terminal timeout event and drops any
// half-finished voting round.
func (uc *UseCase) armReconnectTimer(roomID string, d time.Duration) {
	uc.timers.Set(ReconnectTimerKey(roomID), d, func() {
		ctx := context.Background()
		if err := uc.broker.PublishRoom(ctx, roomID, store.Event{Event: "timeout"}); err != nil {
			log.Error().Err(err).Str("room", roomID).Msg("broadcast timeout")
		}
		if err := uc.clearRound(ctx, roomID); err != nil {
			log.Error().Err(err).Str("room", roomID).Msg("clear votes after timeout")
		}
	})
}

// ActiveMatches lists the user's persisted matches.
func (uc *UseCase) ActiveMatches(ctx context.Context, userID string) ([]*domain.Match, error) {
	return uc.matches.GetActiveMatches(ctx, userID)
}

// DeleteMatch clears the match round and deletes the persisted match row
// between the two room members.
func (uc *UseCase) DeleteMatch(ctx context.Context, roomID, userID string) error {
	room, err := uc.memberRoom(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if err := uc.votes.Clear(ctx, store.VoteMatch, roomID); err != nil {
		return err
	}
	if err := uc.matches.DeleteByUsers(ctx, room.User1, room.User2); err != nil && !errors.Is(err, domain.ErrMatchNotFound) {
		return err
	}
	return uc.broker.PublishRoom(ctx, roomID, store.Event{Event: "match-deleted", From: userID})
}

// SoftLeave silences the leaving party without tearing the room down:
// media flags are cleared, the peer is notified, and any pending
// reconnect timeout is cancelled. Used for timeout-triggered holds.
func (uc *UseCase) SoftLeave(ctx context.Context, roomID, userID string) error {
	if _, err := uc.memberRoom(ctx, roomID, userID); err != nil {
		return err
	}
	if err := uc.rooms.SetAttr(ctx, roomID, "media:"+userID, "off"); err != nil {
		return err
	}
	uc.timers.Cancel(ReconnectTimerKey(roomID))

	ev, err := store.NewEvent("user-left", map[string]string{"userId": userID})
	if err != nil {
		return err
	}
	ev.From = userID
	return uc.broker.PublishRoom(ctx, roomID, ev)
}

// Leave handles an explicit leave-room or a dropped connection. Pending
// vote and minigame timers die with the leaver: a one-player game must
// not keep advancing and a timeout must not fire into a half-empty room.
// The peer is notified; when the room empties, the room and all
// auxiliary state are destroyed.
func (uc *UseCase) Leave(ctx context.Context, roomID, userID string) error {
	remaining, err := uc.rooms.Leave(ctx, roomID, userID)
	if err != nil {
		return err
	}

	uc.timers.Cancel(ReconnectTimerKey(roomID))
	uc.timers.Cancel(GameTimerKey(roomID))

	ev, evErr := store.NewEvent("user-left", map[string]string{"userId": userID})
	if evErr == nil {
		ev.From = userID
		if err := uc.broker.PublishRoom(ctx, roomID, ev); err != nil {
			log.Warn().Err(err).Str("room", roomID).Msg("notify peer of leave")
		}
	}

	if remaining == 0 {
		return uc.Cleanup(ctx, roomID)
	}
	return nil
}

// Cleanup cancels every pending timer for the room and purges the room
// record with all its auxiliary keys.
func (uc *UseCase) Cleanup(ctx context.Context, roomID string) error {
	uc.timers.Cancel(ReconnectTimerKey(roomID))
	uc.timers.Cancel(GameTimerKey(roomID))
	if err := uc.rooms.Purge(ctx, roomID); err != nil {
		return err
	}
	log.Info().Str("room", roomID).Msg("room destroyed")
	return nil
}

// SetBackground stores the shared call background and relays the change
// to the peer.
func (uc *UseCase) SetBackground(ctx context.Context, roomID, userID, background string) error {
	if _, err := uc.memberRoom(ctx, roomID, userID); err != nil {
		return err
	}
	if err := uc.rooms.SetAttr(ctx, roomID, "background", background); err != nil {
		return err
	}
	ev, err := store.NewEvent("background-changed", map[string]string{"background": background})
	if err != nil {
		return err
	}
	ev.From = userID
	return uc.broker.PublishRoom(ctx, roomID, ev)
}

// StartSweeper periodically purges rooms past the max-age threshold.
// Rooms normally die with their last connection; the sweep only catches
// ones orphaned by a process crash.
func (uc *UseCase) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged, err := uc.rooms.SweepExpired(ctx, uc.cfg.RoomMaxAge)
				if err != nil {
					log.Error().Err(err).Msg("room sweep failed")
					continue
				}
				for _, roomID := range purged {
					uc.timers.Cancel(ReconnectTimerKey(roomID))
					uc.timers.Cancel(GameTimerKey(roomID))
					log.Warn().Str("room", roomID).Msg("swept expired room")
				}
			}
		}
	}()
}

func (uc *UseCase) memberRoom(ctx context.Context, roomID, userID string) (*domain.Room, error) {
	room, err := uc.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasUser(userID) {
		return nil, domain.ErrNotRoomMember
	}
	return room, nil
}

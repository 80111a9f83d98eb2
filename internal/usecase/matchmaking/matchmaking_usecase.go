package matchmaking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/duetapp/duet-backend/internal/compat"
	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/repository"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type UseCase struct {
	queues   store.QueueStore
	rooms    store.RoomStore
	invites  store.InviteStore
	broker   store.Broker
	users    repository.UserRepository
	profiles repository.ProfileRepository
	blocks   repository.BlockRepository
	reports  repository.ReportRepository
	scorer   *compat.Scorer

	maxCandidates int
	inviteTTL     time.Duration
}

func NewUseCase(
	queues store.QueueStore,
	rooms store.RoomStore,
	invites store.InviteStore,
	broker store.Broker,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	blocks repository.BlockRepository,
	reports repository.ReportRepository,
	scorer *compat.Scorer,
	maxCandidates int,
	inviteTTL time.Duration,
) *UseCase {
	return &UseCase{
		queues:        queues,
		rooms:         rooms,
		invites:       invites,
		broker:        broker,
		users:         users,
		profiles:      profiles,
		blocks:        blocks,
		reports:       reports,
		scorer:        scorer,
		maxCandidates: maxCandidates,
		inviteTTL:     inviteTTL,
	}
}

// Enqueue puts the user at the tail of the match-type queue. A user is in
// at most one queue at a time, so any stale entry is removed first.
func (uc *UseCase) Enqueue(ctx context.Context, userID string, matchType domain.MatchType) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsBanned {
		return domain.ErrUserBanned
	}
	for _, mt := range []domain.MatchType{domain.MatchTypeFriend, domain.MatchTypeRomantic} {
		if _, err := uc.queues.Remove(ctx, mt, userID); err != nil {
			return err
		}
	}
	return uc.queues.Enqueue(ctx, matchType, userID)
}

// Cancel removes the user from the queue. Idempotent: a no-op when the
// entry is already gone, which makes it safe against an in-flight pairing
// racing the cancellation.
func (uc *UseCase) Cancel(ctx context.Context, userID string, matchType domain.MatchType) error {
	_, err := uc.queues.Remove(ctx, matchType, userID)
	return err
}

// TryPair attempts one pairing round for the match type. It returns the
// created room, or nil when no pair is available yet. Transient store
// failures degrade to "no pair yet" with the popped head pushed back, so
// no waiting user is ever lost.
func (uc *UseCase) TryPair(ctx context.Context, matchType domain.MatchType) (*domain.Room, error) {
	switch matchType {
	case domain.MatchTypeFriend:
		return uc.pairFriends(ctx)
	case domain.MatchTypeRomantic:
		return uc.pairRomantic(ctx)
	default:
		return nil, domain.ErrInvalidMatchType
	}
}

// pairFriends pops two entries FIFO. A lone waiting user is pushed back,
// never lost.
func (uc *UseCase) pairFriends(ctx context.Context) (*domain.Room, error) {
	first, err := uc.queues.PopHead(ctx, domain.MatchTypeFriend)
	if err != nil || first == "" {
		return nil, err
	}
	second, err := uc.queues.PopHead(ctx, domain.MatchTypeFriend)
	if err != nil || second == "" {
		uc.restoreHead(ctx, domain.MatchTypeFriend, first)
		return nil, err
	}
	room, err := uc.createRoom(ctx, first, second, domain.MatchTypeFriend)
	if err != nil {
		uc.restoreHead(ctx, domain.MatchTypeFriend, second)
		uc.restoreHead(ctx, domain.MatchTypeFriend, first)
		return nil, err
	}
	return room, nil
}

// pairRomantic pops the queue head, scores a bounded window of candidates
// for them, and claims the best one. The scan is a plain read; only the
// claim (an atomic first-occurrence removal) decides ownership, so
// concurrent pairing attempts across processes cannot both win the same
// candidate.
func (uc *UseCase) pairRomantic(ctx context.Context) (*domain.Room, error) {
	head, err := uc.queues.PopHead(ctx, domain.MatchTypeRomantic)
	if err != nil || head == "" {
		return nil, err
	}

	noPair := func() (*domain.Room, error) {
		uc.restoreHead(ctx, domain.MatchTypeRomantic, head)
		return nil, nil
	}

	candidates, err := uc.queues.Peek(ctx, domain.MatchTypeRomantic, uc.maxCandidates)
	if err != nil {
		return noPair()
	}
	if len(candidates) == 0 {
		return noPair()
	}

	headUser, err := uc.loadMatchUser(ctx, head)
	if err != nil {
		return noPair()
	}

	type scored struct {
		userID string
		score  float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, candidateID := range candidates {
		candidate, err := uc.loadMatchUser(ctx, candidateID)
		if err != nil {
			log.Warn().Err(err).Str("user", candidateID).Msg("skipping unloadable candidate")
			continue
		}
		score := uc.scorer.Score(headUser, candidate, domain.MatchTypeRomantic)
		if score == compat.ScoreReject {
			continue
		}
		ranked = append(ranked, scored{userID: candidateID, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	for _, candidate := range ranked {
		claimed, err := uc.queues.Remove(ctx, domain.MatchTypeRomantic, candidate.userID)
		if err != nil {
			return noPair()
		}
		if !claimed {
			// Another pairing attempt got there first.
			continue
		}
		room, err := uc.createRoom(ctx, head, candidate.userID, domain.MatchTypeRomantic)
		if err != nil {
			// The candidate was already claimed out of the queue; give
			// their spot back along with the head's.
			uc.restoreHead(ctx, domain.MatchTypeRomantic, candidate.userID)
			return noPair()
		}
		uc.learnFromPairing(ctx, head, candidate.userID)
		return room, nil
	}
	return noPair()
}

// restoreHead returns a popped or claimed user to the front of the queue
// after a failed pairing attempt.
func (uc *UseCase) restoreHead(ctx context.Context, matchType domain.MatchType, userID string) {
	if err := uc.queues.PushHead(ctx, matchType, userID); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("failed to restore queue head")
	}
}

func (uc *UseCase) createRoom(ctx context.Context, user1, user2 string, matchType domain.MatchType) (*domain.Room, error) {
	room := &domain.Room{
		ID:        uuid.New().String(),
		User1:     user1,
		User2:     user2,
		MatchType: matchType,
		CreatedAt: time.Now(),
	}
	if err := uc.rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	ev, err := store.NewEvent("room-found", map[string]string{"roomId": room.ID})
	if err != nil {
		return nil, err
	}
	for _, userID := range room.Members() {
		if err := uc.broker.PublishUser(ctx, userID, ev); err != nil {
			log.Error().Err(err).Str("user", userID).Str("room", room.ID).Msg("failed to deliver room-found")
		}
	}

	log.Info().Str("room", room.ID).Str("user1", user1).Str("user2", user2).
		Str("match_type", string(matchType)).Msg("room created")
	return room, nil
}

// learnFromPairing folds each user's features into the other's running
// weight mean. Best effort: a failed update never blocks the pairing.
func (uc *UseCase) learnFromPairing(ctx context.Context, user1, user2 string) {
	p1, err1 := uc.profiles.GetByUserID(ctx, user1)
	p2, err2 := uc.profiles.GetByUserID(ctx, user2)
	if err1 != nil || err2 != nil {
		return
	}

	w1, s1 := uc.scorer.UpdateWeights(p1.Weights, p1.Strength, p2.Selections)
	if err := uc.profiles.UpdateWeights(ctx, user1, w1, s1); err != nil {
		log.Warn().Err(err).Str("user", user1).Msg("weight update failed")
	}
	w2, s2 := uc.scorer.UpdateWeights(p2.Weights, p2.Strength, p1.Selections)
	if err := uc.profiles.UpdateWeights(ctx, user2, w2, s2); err != nil {
		log.Warn().Err(err).Str("user", user2).Msg("weight update failed")
	}
}

func (uc *UseCase) loadMatchUser(ctx context.Context, userID string) (*compat.MatchUser, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	mu := &compat.MatchUser{
		User:     user,
		Blocked:  make(map[string]struct{}),
		Reported: make(map[string]struct{}),
	}

	profile, err := uc.profiles.GetByUserID(ctx, userID)
	if err == nil {
		mu.Profile = profile
	}

	blocked, err := uc.blocks.BlockedUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range blocked {
		mu.Blocked[id] = struct{}{}
	}

	reported, err := uc.reports.InvolvedUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range reported {
		mu.Reported[id] = struct{}{}
	}
	return mu, nil
}

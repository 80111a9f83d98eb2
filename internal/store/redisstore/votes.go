package redisstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/duetapp/duet-backend/internal/store"
	"github.com/redis/go-redis/v9"
)

type voteStore struct {
	client *redis.Client
}

func NewVoteStore(client *redis.Client) store.VoteStore {
	return &voteStore{client: client}
}

func (s *voteStore) Set(ctx context.Context, kind store.VoteKind, roomID, userID string, value bool) error {
	if err := s.client.HSet(ctx, votesKey(kind, roomID), userID, strconv.FormatBool(value)).Err(); err != nil {
		return fmt.Errorf("set %s vote in room %s: %w", kind, roomID, err)
	}
	return nil
}

func (s *voteStore) All(ctx context.Context, kind store.VoteKind, roomID string) (map[string]bool, error) {
	fields, err := s.client.HGetAll(ctx, votesKey(kind, roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get %s votes in room %s: %w", kind, roomID, err)
	}
	votes := make(map[string]bool, len(fields))
	for userID, raw := range fields {
		votes[userID] = raw == "true"
	}
	return votes, nil
}

func (s *voteStore) ClearUser(ctx context.Context, kind store.VoteKind, roomID, userID string) error {
	if err := s.client.HDel(ctx, votesKey(kind, roomID), userID).Err(); err != nil {
		return fmt.Errorf("clear %s vote of %s in room %s: %w", kind, userID, roomID, err)
	}
	return nil
}

func (s *voteStore) Clear(ctx context.Context, kind store.VoteKind, roomID string) error {
	if err := s.client.Del(ctx, votesKey(kind, roomID)).Err(); err != nil {
		return fmt.Errorf("clear %s votes in room %s: %w", kind, roomID, err)
	}
	return nil
}

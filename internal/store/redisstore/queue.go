package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/redis/go-redis/v9"
)

type queueStore struct {
	client *redis.Client
}

func NewQueueStore(client *redis.Client) store.QueueStore {
	return &queueStore{client: client}
}

func (s *queueStore) Enqueue(ctx context.Context, matchType domain.MatchType, userID string) error {
	if err := s.client.RPush(ctx, queueKey(matchType), userID).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", matchType, err)
	}
	return nil
}

func (s *queueStore) PopHead(ctx context.Context, matchType domain.MatchType) (string, error) {
	head, err := s.client.LPop(ctx, queueKey(matchType)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("pop %s queue head: %w", matchType, err)
	}
	return head, nil
}

func (s *queueStore) PushHead(ctx context.Context, matchType domain.MatchType, userID string) error {
	if err := s.client.LPush(ctx, queueKey(matchType), userID).Err(); err != nil {
		return fmt.Errorf("push back %s queue head: %w", matchType, err)
	}
	return nil
}

func (s *queueStore) Peek(ctx context.Context, matchType domain.MatchType, n int) ([]string, error) {
	entries, err := s.client.LRange(ctx, queueKey(matchType), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("peek %s queue: %w", matchType, err)
	}
	return entries, nil
}

// Remove relies on LREM being a single atomic command: when two pairing
// attempts race for the same candidate, exactly one sees a removal count
// of 1.
func (s *queueStore) Remove(ctx context.Context, matchType domain.MatchType, userID string) (bool, error) {
	removed, err := s.client.LRem(ctx, queueKey(matchType), 1, userID).Result()
	if err != nil {
		return false, fmt.Errorf("remove from %s queue: %w", matchType, err)
	}
	return removed > 0, nil
}

package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/duetapp/duet-backend/internal/store"
	"github.com/redis/go-redis/v9"
)

type gameStore struct {
	client *redis.Client
}

func NewGameStore(client *redis.Client) store.GameStore {
	return &gameStore{client: client}
}

func (s *gameStore) Save(ctx context.Context, roomID string, state []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, gameKey(roomID), state, ttl).Err(); err != nil {
		return fmt.Errorf("save game state for room %s: %w", roomID, err)
	}
	return nil
}

func (s *gameStore) Load(ctx context.Context, roomID string) ([]byte, error) {
	state, err := s.client.Get(ctx, gameKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load game state for room %s: %w", roomID, err)
	}
	return state, nil
}

func (s *gameStore) Delete(ctx context.Context, roomID string) error {
	if err := s.client.Del(ctx, gameKey(roomID)).Err(); err != nil {
		return fmt.Errorf("delete game state for room %s: %w", roomID, err)
	}
	return nil
}

type promptStore struct {
	client *redis.Client
}

func NewPromptStore(client *redis.Client) store.PromptStore {
	return &promptStore{client: client}
}

func (s *promptStore) Add(ctx context.Context, roomID, prompt string) error {
	if err := s.client.RPush(ctx, promptsKey(roomID), prompt).Err(); err != nil {
		return fmt.Errorf("cache prompt for room %s: %w", roomID, err)
	}
	return nil
}

func (s *promptStore) All(ctx context.Context, roomID string) ([]string, error) {
	prompts, err := s.client.LRange(ctx, promptsKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read prompt cache for room %s: %w", roomID, err)
	}
	return prompts, nil
}

func (s *promptStore) Delete(ctx context.Context, roomID string) error {
	if err := s.client.Del(ctx, promptsKey(roomID)).Err(); err != nil {
		return fmt.Errorf("delete prompt cache for room %s: %w", roomID, err)
	}
	return nil
}

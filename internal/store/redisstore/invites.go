package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/redis/go-redis/v9"
)

type inviteStore struct {
	client *redis.Client
}

func NewInviteStore(client *redis.Client) store.InviteStore {
	return &inviteStore{client: client}
}

func (s *inviteStore) Save(ctx context.Context, invite *store.DirectInvite, ttl time.Duration) error {
	payload, err := json.Marshal(invite)
	if err != nil {
		return fmt.Errorf("marshal invite %s: %w", invite.ID, err)
	}
	if err := s.client.Set(ctx, inviteKey(invite.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save invite %s: %w", invite.ID, err)
	}
	return nil
}

func (s *inviteStore) Load(ctx context.Context, inviteID string) (*store.DirectInvite, error) {
	payload, err := s.client.Get(ctx, inviteKey(inviteID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, fmt.Errorf("load invite %s: %w", inviteID, err)
	}
	var invite store.DirectInvite
	if err := json.Unmarshal(payload, &invite); err != nil {
		return nil, fmt.Errorf("unmarshal invite %s: %w", inviteID, err)
	}
	return &invite, nil
}

// Take consumes the invite in one round trip. GETDEL makes the invite
// single-use even when two answers arrive at once.
func (s *inviteStore) Take(ctx context.Context, inviteID string) (*store.DirectInvite, error) {
	payload, err := s.client.GetDel(ctx, inviteKey(inviteID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, fmt.Errorf("take invite %s: %w", inviteID, err)
	}
	var invite store.DirectInvite
	if err := json.Unmarshal(payload, &invite); err != nil {
		return nil, fmt.Errorf("unmarshal invite %s: %w", inviteID, err)
	}
	return &invite, nil
}

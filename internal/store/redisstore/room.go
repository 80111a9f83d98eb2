package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/redis/go-redis/v9"
)

type roomStore struct {
	client *redis.Client
}

func NewRoomStore(client *redis.Client) store.RoomStore {
	return &roomStore{client: client}
}

func (s *roomStore) Create(ctx context.Context, room *domain.Room) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, roomKey(room.ID), map[string]interface{}{
		"user1":      room.User1,
		"user2":      room.User2,
		"match_type": string(room.MatchType),
		"created_at": strconv.FormatInt(room.CreatedAt.Unix(), 10),
	})
	pipe.SAdd(ctx, roomIndexKey, room.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create room %s: %w", room.ID, err)
	}
	return nil
}

func (s *roomStore) Get(ctx context.Context, roomID string) (*domain.Room, error) {
	fields, err := s.client.HGetAll(ctx, roomKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", roomID, err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrRoomNotFound
	}
	createdAt, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	return &domain.Room{
		ID:        roomID,
		User1:     fields["user1"],
		User2:     fields["user2"],
		MatchType: domain.MatchType(fields["match_type"]),
		CreatedAt: time.Unix(createdAt, 0),
	}, nil
}

func (s *roomStore) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	room, err := s.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}
	return room.HasUser(userID), nil
}

func (s *roomStore) Join(ctx context.Context, roomID, userID string) error {
	if err := s.client.SAdd(ctx, presentKey(roomID), userID).Err(); err != nil {
		return fmt.Errorf("join room %s: %w", roomID, err)
	}
	return nil
}

func (s *roomStore) Leave(ctx context.Context, roomID, userID string) (int, error) {
	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, presentKey(roomID), userID)
	card := pipe.SCard(ctx, presentKey(roomID))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("leave room %s: %w", roomID, err)
	}
	return int(card.Val()), nil
}

func (s *roomStore) Present(ctx context.Context, roomID string) ([]string, error) {
	members, err := s.client.SMembers(ctx, presentKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("room %s presence: %w", roomID, err)
	}
	return members, nil
}

func (s *roomStore) SetAttr(ctx context.Context, roomID, field, value string) error {
	if err := s.client.HSet(ctx, attrsKey(roomID), field, value).Err(); err != nil {
		return fmt.Errorf("set room %s attr %s: %w", roomID, field, err)
	}
	return nil
}

func (s *roomStore) Attr(ctx context.Context, roomID, field string) (string, error) {
	value, err := s.client.HGet(ctx, attrsKey(roomID), field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("get room %s attr %s: %w", roomID, field, err)
	}
	return value, nil
}

func (s *roomStore) ClearAttr(ctx context.Context, roomID, field string) error {
	if err := s.client.HDel(ctx, attrsKey(roomID), field).Err(); err != nil {
		return fmt.Errorf("clear room %s attr %s: %w", roomID, field, err)
	}
	return nil
}

// Purge removes the room record and the whole per-room key family. Vote,
// game and prompt keys share the room id prefix so one DEL covers them.
func (s *roomStore) Purge(ctx context.Context, roomID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx,
		roomKey(roomID),
		presentKey(roomID),
		attrsKey(roomID),
		votesKey(store.VoteCallAgain, roomID),
		votesKey(store.VoteMatch, roomID),
		gameKey(roomID),
		promptsKey(roomID),
	)
	pipe.SRem(ctx, roomIndexKey, roomID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("purge room %s: %w", roomID, err)
	}
	return nil
}

func (s *roomStore) SweepExpired(ctx context.Context, maxAge time.Duration) ([]string, error) {
	ids, err := s.client.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list active rooms: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	var purged []string
	for _, id := range ids {
		room, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrRoomNotFound) {
			// Record already gone, drop the dangling index entry.
			_ = s.client.SRem(ctx, roomIndexKey, id).Err()
			continue
		}
		if err != nil {
			return purged, err
		}
		if room.CreatedAt.Before(cutoff) {
			if err := s.Purge(ctx, id); err != nil {
				return purged, err
			}
			purged = append(purged, id)
		}
	}
	return purged, nil
}

package redisstore

import (
	"fmt"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
)

// Key layout. Everything belonging to a room hangs off its id so Purge can
// delete the whole family at once.
func queueKey(matchType domain.MatchType) string {
	return fmt.Sprintf("queue:%s", matchType)
}

func roomKey(roomID string) string {
	return fmt.Sprintf("room:%s", roomID)
}

func presentKey(roomID string) string {
	return fmt.Sprintf("room:%s:present", roomID)
}

func attrsKey(roomID string) string {
	return fmt.Sprintf("room:%s:attrs", roomID)
}

func votesKey(kind store.VoteKind, roomID string) string {
	return fmt.Sprintf("room:%s:votes:%s", roomID, kind)
}

func gameKey(roomID string) string {
	return fmt.Sprintf("room:%s:game", roomID)
}

func promptsKey(roomID string) string {
	return fmt.Sprintf("room:%s:prompts", roomID)
}

func inviteKey(inviteID string) string {
	return fmt.Sprintf("invite:%s", inviteID)
}

func roomChannel(roomID string) string {
	return fmt.Sprintf("events:room:%s", roomID)
}

func userChannel(userID string) string {
	return fmt.Sprintf("events:user:%s", userID)
}

// roomIndexKey is a set of active room ids, kept so the max-age sweep does
// not have to SCAN the whole keyspace.
const roomIndexKey = "rooms:active"

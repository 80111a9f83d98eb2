package store

import (
	"context"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
)

// QueueStore is the per-match-type FIFO of waiting users. It lives in the
// shared store so pairing attempts from different server processes observe
// the same queue; Remove is the atomic claim that makes the scan-then-claim
// pairing pattern race-safe.
type QueueStore interface {
	// Enqueue appends the user to the tail of the queue.
	Enqueue(ctx context.Context, matchType domain.MatchType, userID string) error
	// PopHead atomically removes and returns the head, or "" when empty.
	PopHead(ctx context.Context, matchType domain.MatchType) (string, error)
	// PushHead puts a user back at the head of the queue.
	PushHead(ctx context.Context, matchType domain.MatchType, userID string) error
	// Peek reads up to n entries from the head without removing them.
	Peek(ctx context.Context, matchType domain.MatchType, n int) ([]string, error)
	// Remove atomically removes the first occurrence of userID. It reports
	// whether this caller removed it; exactly one concurrent caller wins.
	Remove(ctx context.Context, matchType domain.MatchType, userID string) (bool, error)
}

// RoomStore is the shared record of active rooms plus per-room presence.
type RoomStore interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, roomID string) (*domain.Room, error)
	IsMember(ctx context.Context, roomID, userID string) (bool, error)

	// Join and Leave track which members currently hold an open call
	// connection. Leave returns how many members remain.
	Join(ctx context.Context, roomID, userID string) error
	Leave(ctx context.Context, roomID, userID string) (remaining int, err error)
	Present(ctx context.Context, roomID string) ([]string, error)

	// SetAttr and Attr store small per-room values such as the call
	// background or per-user media-enabled flags.
	SetAttr(ctx context.Context, roomID, field, value string) error
	Attr(ctx context.Context, roomID, field string) (string, error)
	ClearAttr(ctx context.Context, roomID, field string) error

	// Purge deletes the room record and every auxiliary per-room key
	// (votes, game state, prompt cache) in one shot.
	Purge(ctx context.Context, roomID string) error
	// SweepExpired purges rooms older than maxAge and returns their IDs.
	// Crash-recovery net for rooms whose owning process died.
	SweepExpired(ctx context.Context, maxAge time.Duration) ([]string, error)
}

// VoteKind selects one of the two per-room boolean vote maps.
type VoteKind string

const (
	VoteCallAgain VoteKind = "callagain"
	VoteMatch     VoteKind = "match"
)

type VoteStore interface {
	Set(ctx context.Context, kind VoteKind, roomID, userID string, value bool) error
	All(ctx context.Context, kind VoteKind, roomID string) (map[string]bool, error)
	ClearUser(ctx context.Context, kind VoteKind, roomID, userID string) error
	Clear(ctx context.Context, kind VoteKind, roomID string) error
}

// GameStore persists the serialized active minigame state per room with a
// TTL so an abandoned game cannot leak indefinitely.
type GameStore interface {
	Save(ctx context.Context, roomID string, state []byte, ttl time.Duration) error
	Load(ctx context.Context, roomID string) ([]byte, error)
	Delete(ctx context.Context, roomID string) error
}

// PromptStore caches conversation prompts already served to a room so the
// same prompt is not repeated within one call.
type PromptStore interface {
	Add(ctx context.Context, roomID, prompt string) error
	All(ctx context.Context, roomID string) ([]string, error)
	Delete(ctx context.Context, roomID string) error
}

// InviteStore holds pending direct-call invites with a TTL. An invite is
// single-use: Take consumes it atomically, so concurrent answers race for
// one winner.
type InviteStore interface {
	Save(ctx context.Context, invite *DirectInvite, ttl time.Duration) error
	Load(ctx context.Context, inviteID string) (*DirectInvite, error)
	Take(ctx context.Context, inviteID string) (*DirectInvite, error)
}

type DirectInvite struct {
	ID        string           `json:"id"`
	CallerID  string           `json:"caller_id"`
	CalleeID  string           `json:"callee_id"`
	MatchType domain.MatchType `json:"match_type"`
}

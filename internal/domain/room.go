package domain

import "time"

// Room is the ephemeral two-party call record. It lives in the shared
// store so that any server process can authorize either peer's socket.
type Room struct {
	ID        string    `json:"id"`
	User1     string    `json:"user1"`
	User2     string    `json:"user2"`
	MatchType MatchType `json:"match_type"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Room) HasUser(userID string) bool {
	return r.User1 == userID || r.User2 == userID
}

// PeerOf returns the other member of the room.
func (r *Room) PeerOf(userID string) (string, bool) {
	if r.User1 == userID {
		return r.User2, true
	}
	if r.User2 == userID {
		return r.User1, true
	}
	return "", false
}

func (r *Room) Members() []string {
	return []string{r.User1, r.User2}
}

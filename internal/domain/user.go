package domain

import "time"

// MatchType selects the queue a user waits in and the rules applied
// when pairing them.
type MatchType string

const (
	MatchTypeFriend   MatchType = "friend"
	MatchTypeRomantic MatchType = "romantic"
)

func (t MatchType) Valid() bool {
	return t == MatchTypeFriend || t == MatchTypeRomantic
}

// Preference values for romantic matching.
const (
	PreferenceMale     = "male"
	PreferenceFemale   = "female"
	PreferenceEveryone = "everyone"
)

type User struct {
	ID         string    `json:"id" db:"id"`
	Gender     string    `json:"gender" db:"gender"`
	Preference string    `json:"preference" db:"preference"`
	IsBanned   bool      `json:"is_banned" db:"is_banned"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Accepts reports whether u's stated preference admits a partner of the
// given gender.
func (u *User) Accepts(gender string) bool {
	return u.Preference == PreferenceEveryone || u.Preference == gender
}

// OrientationCompatible reports whether two users are mutually compatible
// for romantic matching. Both directions must accept.
func OrientationCompatible(a, b *User) bool {
	return a.Accepts(b.Gender) && b.Accepts(a.Gender)
}

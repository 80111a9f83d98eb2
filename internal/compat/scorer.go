package compat

import "github.com/duetapp/duet-backend/internal/domain"

// ScoreReject is the sentinel returned when a candidate is excluded
// outright (block, prior report, orientation mismatch).
const ScoreReject float64 = -1

// MatchUser bundles everything the scorer needs about one user. The
// caller preloads the block and report sets so scoring itself does no I/O.
type MatchUser struct {
	User    *domain.User
	Profile *domain.Profile

	// Blocked holds user IDs this user has blocked.
	Blocked map[string]struct{}
	// Reported holds user IDs with an abuse report in either direction
	// involving this user.
	Reported map[string]struct{}
}

func (m *MatchUser) hasBlocked(userID string) bool {
	_, ok := m.Blocked[userID]
	return ok
}

func (m *MatchUser) hasReportWith(userID string) bool {
	_, ok := m.Reported[userID]
	return ok
}

type Scorer struct {
	schema *Schema
}

func NewScorer(schema *Schema) *Scorer {
	return &Scorer{schema: schema}
}

// Score ranks candidate for user. It is intentionally asymmetric: the
// result is the dot product of user's learned weight vector with
// candidate's encoded features, answering "how good is this candidate
// for the queue head", not mutual similarity.
//
// Friend matching never scores; any two queued users may pair, so the
// exclusion checks are bypassed entirely.
func (s *Scorer) Score(user, candidate *MatchUser, matchType domain.MatchType) float64 {
	if matchType == domain.MatchTypeFriend {
		return 0
	}
	if user.hasBlocked(candidate.User.ID) || candidate.hasBlocked(user.User.ID) {
		return ScoreReject
	}
	if user.hasReportWith(candidate.User.ID) {
		return ScoreReject
	}
	if !domain.OrientationCompatible(user.User, candidate.User) {
		return ScoreReject
	}
	if candidate.Profile == nil || len(candidate.Profile.Selections) == 0 {
		return 0
	}
	if user.Profile == nil || len(user.Profile.Weights) == 0 {
		return 0
	}

	features := s.schema.Encode(candidate.Profile.Selections)
	weights := user.Profile.Weights
	n := len(weights)
	if len(features) < n {
		n = len(features)
	}
	score := 0.0
	for i := 0; i < n; i++ {
		score += weights[i] * features[i]
	}
	return score
}

// UpdateWeights folds the matched peer's feature vector into a user's
// running weight mean:
//
//	newWeight[i] = (oldWeight[i]*strength + peerBit[i]) / (strength+1)
//
// An empty weight vector is treated as all zeros at full schema width.
func (s *Scorer) UpdateWeights(weights []float64, strength int, peerSelections domain.ModuleSelections) ([]float64, int) {
	bits := s.schema.Encode(peerSelections)
	if len(weights) < len(bits) {
		padded := make([]float64, len(bits))
		copy(padded, weights)
		weights = padded
	}
	next := make([]float64, len(weights))
	for i := range weights {
		bit := 0.0
		if i < len(bits) {
			bit = bits[i]
		}
		next[i] = (weights[i]*float64(strength) + bit) / float64(strength+1)
	}
	return next, strength + 1
}

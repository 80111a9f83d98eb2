package repository

import (
	"context"

	"github.com/duetapp/duet-backend/internal/domain"
)

type BlockRepository interface {
	// BlockedUserIDs returns the IDs this user has blocked.
	BlockedUserIDs(ctx context.Context, userID string) ([]string, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	// InvolvedUserIDs returns every user with an abuse report in either
	// direction involving userID. Used as a matchmaking hard exclusion.
	InvolvedUserIDs(ctx context.Context, userID string) ([]string, error)
}

package repository

import (
	"context"

	"github.com/duetapp/duet-backend/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	// UpdateWeights persists the learned weight vector after a completed
	// match.
	UpdateWeights(ctx context.Context, userID string, weights []float64, strength int) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	SetBanned(ctx context.Context, id string, banned bool) error
}

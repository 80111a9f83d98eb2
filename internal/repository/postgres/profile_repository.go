package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, display_name, selections, interests, weights, strength)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(
		ctx, query,
		profile.UserID, profile.DisplayName, profile.Selections,
		pq.Array(profile.Interests), pq.Array(profile.Weights), profile.Strength,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	query := `
		SELECT id, user_id, display_name, selections, interests, weights, strength,
		       created_at, updated_at
		FROM profiles WHERE user_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID, &profile.UserID, &profile.DisplayName, &profile.Selections,
		pq.Array(&profile.Interests), pq.Array(&profile.Weights), &profile.Strength,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $1, selections = $2, interests = $3,
		    updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $4
		RETURNING updated_at
	`
	return r.db.QueryRowContext(
		ctx, query,
		profile.DisplayName, profile.Selections, pq.Array(profile.Interests),
		profile.UserID,
	).Scan(&profile.UpdatedAt)
}

func (r *profileRepository) UpdateWeights(ctx context.Context, userID string, weights []float64, strength int) error {
	query := `
		UPDATE profiles
		SET weights = $1, strength = $2, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, pq.Array(weights), strength, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

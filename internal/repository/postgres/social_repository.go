package postgres

import (
	"context"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type blockRepository struct {
	db *sqlx.DB
}

func NewBlockRepository(db *sqlx.DB) repository.BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) BlockedUserIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	query := `SELECT blocked_id FROM blocks WHERE blocker_id = $1`
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	query := `
		INSERT INTO reports (reporter_id, reported_id, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query, report.ReporterID, report.ReportedID, report.Reason).
		Scan(&report.ID, &report.CreatedAt)
}

func (r *reportRepository) InvolvedUserIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	query := `
		SELECT DISTINCT CASE WHEN reporter_id = $1 THEN reported_id ELSE reporter_id END
		FROM reports
		WHERE reporter_id = $1 OR reported_id = $1
	`
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}

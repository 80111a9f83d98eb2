package domain

import "time"

// Report is an abuse report handed to the moderation collaborator. The
// investigation pipeline behind it is external to this core; the record
// itself also feeds the matchmaking hard exclusions.
type Report struct {
	ID         int       `json:"id" db:"id"`
	ReporterID string    `json:"reporter_id" db:"reporter_id"`
	ReportedID string    `json:"reported_id" db:"reported_id"`
	Reason     string    `json:"reason" db:"reason"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

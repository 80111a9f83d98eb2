package moderation

import (
	"context"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/repository"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/rs/zerolog/log"
)

// Classifier is the AI collaborator that triages report severity. The
// moderation pipeline behind it is external to this core; only the
// boundary lives here.
type Classifier interface {
	ClassifyReportSeverity(ctx context.Context, reason string) (string, error)
}

type UseCase struct {
	reports    repository.ReportRepository
	users      repository.UserRepository
	broker     store.Broker
	classifier Classifier
}

func NewUseCase(
	reports repository.ReportRepository,
	users repository.UserRepository,
	broker store.Broker,
	classifier Classifier,
) *UseCase {
	return &UseCase{
		reports:    reports,
		users:      users,
		broker:     broker,
		classifier: classifier,
	}
}

// FlagForInvestigation persists the report, which from that moment on
// excludes the pair from romantic matching, and hands it to the async
// triage. Severe reports come back as an immediate ban.
func (uc *UseCase) FlagForInvestigation(ctx context.Context, report *domain.Report) error {
	if err := uc.reports.Create(ctx, report); err != nil {
		return err
	}
	log.Info().Str("reporter", report.ReporterID).Str("reported", report.ReportedID).Msg("report flagged for investigation")

	if uc.classifier != nil {
		go uc.triage(report)
	}
	return nil
}

func (uc *UseCase) triage(report *domain.Report) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	severity, err := uc.classifier.ClassifyReportSeverity(ctx, report.Reason)
	if err != nil {
		log.Warn().Err(err).Int("report", report.ID).Msg("report triage failed")
		return
	}
	log.Info().Int("report", report.ID).Str("severity", severity).Msg("report triaged")

	if severity == "severe" {
		if err := uc.Ban(ctx, report.ReportedID); err != nil {
			log.Error().Err(err).Str("user", report.ReportedID).Msg("autoban failed")
		}
	}
}

// Ban marks the user banned and tells every process holding one of their
// sockets to drop them.
func (uc *UseCase) Ban(ctx context.Context, userID string) error {
	if err := uc.users.SetBanned(ctx, userID, true); err != nil {
		return err
	}
	log.Warn().Str("user", userID).Msg("user banned")
	return uc.broker.PublishUser(ctx, userID, store.Event{Event: "banned"})
}

package moderation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReports struct {
	mu      sync.Mutex
	created []*domain.Report
}

func (f *fakeReports) Create(_ context.Context, report *domain.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, report)
	return nil
}

func (f *fakeReports) InvolvedUserIDs(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

type fakeUsers struct {
	mu     sync.Mutex
	banned map[string]bool
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

func (f *fakeUsers) SetBanned(_ context.Context, id string, banned bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned[id] = banned
	return nil
}

func (f *fakeUsers) isBanned(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banned[id]
}

type fakeClassifier struct {
	severity string
}

func (f *fakeClassifier) ClassifyReportSeverity(_ context.Context, _ string) (string, error) {
	return f.severity, nil
}

func TestFlagForInvestigation(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the report", func(t *testing.T) {
		reports := &fakeReports{}
		users := &fakeUsers{banned: make(map[string]bool)}
		uc := NewUseCase(reports, users, storetest.NewBroker(), nil)

		report := &domain.Report{ReporterID: "alice", ReportedID: "bob", Reason: "spam"}
		require.NoError(t, uc.FlagForInvestigation(ctx, report))
		assert.Len(t, reports.created, 1)
		assert.False(t, users.isBanned("bob"))
	})

	t.Run("severe reports ban the reported user", func(t *testing.T) {
		reports := &fakeReports{}
		users := &fakeUsers{banned: make(map[string]bool)}
		broker := storetest.NewBroker()
		uc := NewUseCase(reports, users, broker, &fakeClassifier{severity: "severe"})

		report := &domain.Report{ReporterID: "alice", ReportedID: "bob", Reason: "threats"}
		require.NoError(t, uc.FlagForInvestigation(ctx, report))

		require.Eventually(t, func() bool {
			return users.isBanned("bob")
		}, time.Second, 5*time.Millisecond)

		require.Eventually(t, func() bool {
			ev, ok := broker.LastEvent("user:bob")
			return ok && ev.Event == "banned"
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("low severity does not ban", func(t *testing.T) {
		reports := &fakeReports{}
		users := &fakeUsers{banned: make(map[string]bool)}
		uc := NewUseCase(reports, users, storetest.NewBroker(), &fakeClassifier{severity: "low"})

		report := &domain.Report{ReporterID: "alice", ReportedID: "bob", Reason: "rude"}
		require.NoError(t, uc.FlagForInvestigation(ctx, report))

		time.Sleep(50 * time.Millisecond)
		assert.False(t, users.isBanned("bob"))
	})
}

func TestBan(t *testing.T) {
	users := &fakeUsers{banned: make(map[string]bool)}
	broker := storetest.NewBroker()
	uc := NewUseCase(&fakeReports{}, users, broker, nil)

	require.NoError(t, uc.Ban(context.Background(), "bob"))

	assert.True(t, users.isBanned("bob"))
	ev, ok := broker.LastEvent("user:bob")
	require.True(t, ok)
	assert.Equal(t, "banned", ev.Event)
}

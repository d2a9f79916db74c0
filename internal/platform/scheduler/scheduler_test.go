package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cambiar/rates-api/internal/platform/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIngestionService is a mock for the RateIngestionSvc interface.
type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) IngestOfficial(ctx context.Context, date *time.Time) (int, error) {
	args := m.Called(ctx, date)
	return args.Int(0), args.Error(1)
}

func (m *MockIngestionService) IngestAlternative(ctx context.Context, center time.Time) (int, error) {
	args := m.Called(ctx, center)
	return args.Int(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRefreshScheduler_RejectsBadSpec(t *testing.T) {
	_, err := scheduler.NewRefreshScheduler("not a cron spec", new(MockIngestionService), discardLogger())
	assert.Error(t, err)
}

func TestRunNow_RefreshesBothProviders(t *testing.T) {
	ingestion := new(MockIngestionService)
	ingestion.On("IngestOfficial", mock.Anything, (*time.Time)(nil)).Return(170, nil).Once()
	ingestion.On("IngestAlternative", mock.Anything, mock.AnythingOfType("time.Time")).Return(30, nil).Once()

	s, err := scheduler.NewRefreshScheduler("0 0 * * *", ingestion, discardLogger())
	require.NoError(t, err)

	s.RunNow()

	ingestion.AssertExpectations(t)
}

func TestRunNow_OfficialFailureDoesNotBlockAlternative(t *testing.T) {
	ingestion := new(MockIngestionService)
	ingestion.On("IngestOfficial", mock.Anything, (*time.Time)(nil)).
		Return(0, errors.New("provider down")).Once()
	ingestion.On("IngestAlternative", mock.Anything, mock.AnythingOfType("time.Time")).Return(30, nil).Once()

	s, err := scheduler.NewRefreshScheduler("@daily", ingestion, discardLogger())
	require.NoError(t, err)

	s.RunNow()

	ingestion.AssertExpectations(t)
}

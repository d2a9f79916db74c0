// Package scheduler owns the periodic refresh trigger. It is an external
// collaborator of the rates engine: a cron-driven timer that calls into the
// ingestion facade, with no scheduling assumptions leaking into the core.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/cambiar/rates-api/internal/core/ports/services"
	"github.com/robfig/cron/v3"
)

// refreshTimeout bounds one full refresh run (both providers).
const refreshTimeout = 2 * time.Minute

// RefreshScheduler periodically refreshes official and alternative rates.
type RefreshScheduler struct {
	cron      *cron.Cron
	ingestion portssvc.RateIngestionSvc
	logger    *slog.Logger
}

// NewRefreshScheduler creates a scheduler running the refresh on the given
// cron spec, evaluated in UTC.
func NewRefreshScheduler(spec string, ingestion portssvc.RateIngestionSvc, logger *slog.Logger) (*RefreshScheduler, error) {
	s := &RefreshScheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		ingestion: ingestion,
		logger:    logger,
	}
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins cron scheduling in a background goroutine.
func (s *RefreshScheduler) Start() {
	s.cron.Start()
	s.logger.Info("Refresh scheduler started")
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *RefreshScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Refresh scheduler stopped")
}

// RunNow executes one refresh immediately. Each provider failure is logged
// and does not affect the other fetch.
func (s *RefreshScheduler) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	s.logger.Info("Starting scheduled rate refresh")

	if count, err := s.ingestion.IngestOfficial(ctx, nil); err != nil {
		s.logger.Warn("Scheduled official refresh failed", slog.String("error", err.Error()))
	} else {
		s.logger.Info("Scheduled official refresh completed", slog.Int("count", count))
	}

	if count, err := s.ingestion.IngestAlternative(ctx, time.Now().UTC()); err != nil {
		s.logger.Warn("Scheduled alternative refresh failed", slog.String("error", err.Error()))
	} else {
		s.logger.Info("Scheduled alternative refresh completed", slog.Int("count", count))
	}
}

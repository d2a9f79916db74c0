package ports

import (
	"context"
	"time"

	"github.com/cambiar/rates-api/internal/models"
)

// RateRepository defines the persistence operations for rate records.
// Implementations must upsert on the (from, to, date, type) key so that a
// later write replaces an earlier one, and must serialize writes to the same
// key. Absence is reported via apperrors sentinels, never invented values.
type RateRepository interface {
	// SaveRates upserts a batch of records. Overwriting an existing key is
	// not an error.
	SaveRates(ctx context.Context, records []models.RateRecord) error

	// ListRatesTouching returns every stored record for the date that has the
	// currency on either side. The result feeds the bidirectional index.
	ListRatesTouching(ctx context.Context, currency string, date time.Time) ([]models.RateRecord, error)

	// LatestRateDate returns the maximum date across all stored records, or
	// apperrors.ErrNoData when the store is empty.
	LatestRateDate(ctx context.Context) (time.Time, error)
}

// RepositoryProvider bundles the repositories required by the service layer.
type RepositoryProvider struct {
	RateRepo RateRepository
}

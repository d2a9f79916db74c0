// Package memory provides an in-memory RateRepository for runs without a
// configured database and for tests. Semantics match the pgsql repository:
// upsert on the 4-tuple key, last write wins.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cambiar/rates-api/internal/apperrors"
	"github.com/cambiar/rates-api/internal/core/ports"
	"github.com/cambiar/rates-api/internal/models"
)

// RateRepository is a mutex-guarded in-memory rate store.
type RateRepository struct {
	mu      sync.RWMutex
	records map[models.RateKey]models.RateRecord
}

// NewRateRepository creates an empty in-memory rate store.
func NewRateRepository() *RateRepository {
	return &RateRepository{
		records: make(map[models.RateKey]models.RateRecord),
	}
}

// SaveRates upserts the records by key.
func (r *RateRepository) SaveRates(_ context.Context, records []models.RateRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		rec.FromCurrency = strings.ToUpper(rec.FromCurrency)
		rec.ToCurrency = strings.ToUpper(rec.ToCurrency)
		rec.RateDate = models.DateOnly(rec.RateDate)
		r.records[rec.Key()] = rec
	}
	return nil
}

// ListRatesTouching returns every record for the date with the currency on
// either side.
func (r *RateRepository) ListRatesTouching(_ context.Context, currency string, date time.Time) ([]models.RateRecord, error) {
	currency = strings.ToUpper(currency)
	day := models.DateOnly(date)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var records []models.RateRecord
	for _, rec := range r.records {
		if !rec.RateDate.Equal(day) {
			continue
		}
		if rec.FromCurrency == currency || rec.ToCurrency == currency {
			records = append(records, rec)
		}
	}
	return records, nil
}

// LatestRateDate returns the maximum date across all stored records.
func (r *RateRepository) LatestRateDate(_ context.Context) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest time.Time
	for _, rec := range r.records {
		if rec.RateDate.After(latest) {
			latest = rec.RateDate
		}
	}
	if latest.IsZero() {
		return time.Time{}, apperrors.ErrNoData
	}
	return latest, nil
}

// NewRepositoryProvider creates the in-memory repository set.
func NewRepositoryProvider() *ports.RepositoryProvider {
	return &ports.RepositoryProvider{RateRepo: NewRateRepository()}
}

// Compile-time interface check.
var _ ports.RateRepository = (*RateRepository)(nil)

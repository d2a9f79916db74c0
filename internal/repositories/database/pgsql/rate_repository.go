package pgsql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cambiar/rates-api/internal/apperrors"
	"github.com/cambiar/rates-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxRateRepository implements the ports.RateRepository interface using pgxpool.
type PgxRateRepository struct {
	BaseRepository
}

// NewPgxRateRepository creates a new PgxRateRepository.
func NewPgxRateRepository(db *pgxpool.Pool) *PgxRateRepository {
	return &PgxRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

const upsertRateQuery = `
	INSERT INTO exchange_rates (
		rate_id, from_currency, to_currency, rate, rate_type, rate_date, source, fetched_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (from_currency, to_currency, rate_date, rate_type)
	DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source, fetched_at = EXCLUDED.fetched_at`

// SaveRates upserts a batch of records on the (from, to, date, type) key.
// The unique constraint serializes concurrent writers of the same key; the
// last write wins.
func (r *PgxRateRepository) SaveRates(ctx context.Context, records []models.RateRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertRateQuery,
			rec.RateID,
			strings.ToUpper(rec.FromCurrency),
			strings.ToUpper(rec.ToCurrency),
			rec.Rate,
			rec.RateType,
			models.DateOnly(rec.RateDate),
			rec.Source,
			rec.FetchedAt,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		_ = r.Rollback(ctx, tx)
		return apperrors.NewAppError(500, "failed to save rates", err)
	}
	return r.Commit(ctx, tx)
}

// ListRatesTouching returns every record for the date with the currency on
// either side.
func (r *PgxRateRepository) ListRatesTouching(ctx context.Context, currency string, date time.Time) ([]models.RateRecord, error) {
	query := `
		SELECT rate_id, from_currency, to_currency, rate, rate_type, rate_date, source, fetched_at
		FROM exchange_rates
		WHERE (from_currency = $1 OR to_currency = $1) AND rate_date = $2
		ORDER BY from_currency, to_currency, rate_type;
	`

	rows, err := r.Pool.Query(ctx, query, strings.ToUpper(currency), models.DateOnly(date))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list rates", err)
	}
	defer rows.Close()

	var records []models.RateRecord
	for rows.Next() {
		var rec models.RateRecord
		err := rows.Scan(
			&rec.RateID, &rec.FromCurrency, &rec.ToCurrency, &rec.Rate,
			&rec.RateType, &rec.RateDate, &rec.Source, &rec.FetchedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan rate", err)
		}
		rec.RateDate = models.DateOnly(rec.RateDate)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating rates", err)
	}
	return records, nil
}

// LatestRateDate returns the maximum date across all stored records.
func (r *PgxRateRepository) LatestRateDate(ctx context.Context) (time.Time, error) {
	var latest time.Time
	err := r.Pool.QueryRow(ctx,
		`SELECT rate_date FROM exchange_rates ORDER BY rate_date DESC LIMIT 1`,
	).Scan(&latest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, apperrors.ErrNoData
		}
		return time.Time{}, apperrors.NewAppError(500, "failed to read latest rate date", err)
	}
	return models.DateOnly(latest), nil
}

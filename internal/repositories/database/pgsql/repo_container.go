package pgsql

import (
	"github.com/cambiar/rates-api/internal/core/ports"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider creates the pgx-backed repository set.
func NewRepositoryProvider(pool *pgxpool.Pool) *ports.RepositoryProvider {
	return &ports.RepositoryProvider{
		RateRepo: NewPgxRateRepository(pool),
	}
}

// Compile-time interface check.
var _ ports.RateRepository = (*PgxRateRepository)(nil)

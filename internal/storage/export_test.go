package storage

import "github.com/jackc/pgx/v5/pgxpool"

// GetPool returns the underlying connection pool so tests can reset tables.
func (r *PostgresRepo) GetPool() *pgxpool.Pool {
	return r.pool
}

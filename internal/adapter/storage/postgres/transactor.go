package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor hands out pgx transactions from the shared pool. Wallet
// derivation and deposit folding both run their read-modify-write
// inside one of these, with the row locks released on Commit or
// Rollback.
type Transactor struct {
	pool Pool
}

// NewTransactor wraps the connection pool as a ports.DBTransactor.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin opens a transaction on a pooled connection.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}

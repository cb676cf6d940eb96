package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor. Registration, mint, transfer,
// and purchase settlement each run all of their reads and writes inside one
// transaction obtained here.
type Transactor struct {
	pool Pool
}

// NewTransactor creates a Transactor over the shared connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin opens a transaction. Callers commit explicitly and defer Rollback,
// so a failing step leaves no partially applied ledger state.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}

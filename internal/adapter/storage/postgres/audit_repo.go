package postgres

import (
	"context"
	"fmt"

	"tokenized-asset-ledger/internal/core/domain"
)

// AuditRepo implements ports.AuditRepository. The journal is append-only;
// there is no update or delete path.
type AuditRepo struct {
	pool Pool
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(pool Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Create appends a journal entry.
func (r *AuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	query := `INSERT INTO audit_entries (id, principal, operation, path, status, error_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.Principal, entry.Operation, entry.Path,
		entry.Status, entry.ErrorCode, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

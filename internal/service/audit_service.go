package service

import (
	"context"

	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService creates the call-journal service. If repo is nil, entries
// are only written to the logger.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists an audit entry asynchronously (fire-and-forget).
func (s *auditService) Record(ctx context.Context, entry *domain.AuditEntry) {
	go func() {
		s.log.Info().
			Str("principal", entry.Principal.String()).
			Str("operation", entry.Operation).
			Int("status", entry.Status).
			Uint32("error_code", entry.ErrorCode).
			Msg("call journal")

		if s.repo != nil {
			if err := s.repo.Create(context.Background(), entry); err != nil {
				s.log.Warn().Err(err).Str("operation", entry.Operation).Msg("failed to persist audit entry")
			}
		}
	}()
}

package service

import (
	"context"
	"fmt"

	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// ComplianceServiceImpl implements ports.ComplianceService. Approval records
// are write-and-query state: nothing in the transfer paths consults them.
type ComplianceServiceImpl struct {
	params         ports.EngineParams
	assetRepo      ports.AssetRepository
	complianceRepo ports.ComplianceRepository
	stateRepo      ports.StateRepository
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewComplianceService creates a new ComplianceServiceImpl.
func NewComplianceService(
	params ports.EngineParams,
	assetRepo ports.AssetRepository,
	complianceRepo ports.ComplianceRepository,
	stateRepo ports.StateRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ComplianceServiceImpl {
	return &ComplianceServiceImpl{
		params:         params,
		assetRepo:      assetRepo,
		complianceRepo: complianceRepo,
		stateRepo:      stateRepo,
		transactor:     transactor,
		log:            log,
	}
}

// SetAuthority rotates the compliance authority. Only the contract owner may
// call; the new authority must differ from the current one and from the
// engine's own address.
func (s *ComplianceServiceImpl) SetAuthority(ctx context.Context, call ports.Call, newAuthority domain.Principal) error {
	if call.Sender != s.params.Owner {
		return apperror.ErrNotAuthorized()
	}
	if !validPrincipal(newAuthority) || newAuthority == s.params.Contract {
		return apperror.ErrInvalidAuthority()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	state, err := s.stateRepo.GetForUpdate(ctx, dbTx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock ledger state: %w", err))
	}
	if newAuthority == state.Authority {
		return apperror.ErrInvalidAuthority()
	}

	if err := s.stateRepo.SetAuthority(ctx, dbTx, newAuthority); err != nil {
		return apperror.InternalError(fmt.Errorf("set authority: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("old_authority", state.Authority.String()).
		Str("new_authority", newAuthority.String()).
		Msg("compliance authority rotated")

	return nil
}

// ApproveUser records approval for a user on an asset at the current block
// height, overwriting any prior record. Only the compliance authority may
// call. There is no revoke operation.
func (s *ComplianceServiceImpl) ApproveUser(ctx context.Context, call ports.Call, assetID uint64, user domain.Principal) error {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get asset: %w", err))
	}
	if asset == nil {
		return apperror.ErrAssetNotFound()
	}

	state, err := s.stateRepo.Get(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get ledger state: %w", err))
	}
	if call.Sender != state.Authority {
		return apperror.ErrNotAuthorized()
	}
	if !validPrincipal(user) || user == s.params.Contract || user == s.params.Owner {
		return apperror.ErrInvalidParams()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	record := &domain.ComplianceRecord{
		AssetID:    assetID,
		User:       user,
		Approved:   true,
		ApprovedAt: call.Height,
	}
	if err := s.complianceRepo.Put(ctx, dbTx, record); err != nil {
		return apperror.InternalError(fmt.Errorf("put compliance record: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Uint64("asset_id", assetID).
		Str("user", user.String()).
		Uint64("height", call.Height).
		Msg("user approved")

	return nil
}

// IsUserApproved returns the approval record for (asset, user). An absent
// record reads as not approved.
func (s *ComplianceServiceImpl) IsUserApproved(ctx context.Context, assetID uint64, user domain.Principal) (*domain.ComplianceRecord, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get asset: %w", err))
	}
	if asset == nil {
		return nil, apperror.ErrAssetNotFound()
	}

	record, err := s.complianceRepo.Get(ctx, assetID, user)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get compliance record: %w", err))
	}
	if record == nil {
		return &domain.ComplianceRecord{AssetID: assetID, User: user, Approved: false}, nil
	}
	return record, nil
}

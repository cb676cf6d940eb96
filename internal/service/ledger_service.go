package service

import (
	"context"
	"fmt"

	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService and ports.TokenMover. The
// Move primitive is the single debit-then-credit path shared by direct
// transfer and marketplace settlement.
type LedgerServiceImpl struct {
	params      ports.EngineParams
	assetRepo   ports.AssetRepository
	balanceRepo ports.BalanceRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	params ports.EngineParams,
	assetRepo ports.AssetRepository,
	balanceRepo ports.BalanceRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		params:      params,
		assetRepo:   assetRepo,
		balanceRepo: balanceRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Transfer moves tokens from the caller to another holder.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, call ports.Call, req ports.TransferRequest) error {
	if !validAmount(req.Amount) {
		return apperror.ErrInvalidParams()
	}
	if call.Sender == req.To {
		return apperror.ErrSelfTransfer()
	}
	if !validPrincipal(req.To) || req.To == s.params.Contract {
		return apperror.ErrInvalidRecipient()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	asset, err := s.assetRepo.GetByIDTx(ctx, dbTx, req.AssetID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get asset: %w", err))
	}
	if asset == nil {
		return apperror.ErrAssetNotFound()
	}
	if asset.Frozen {
		return apperror.ErrNotAuthorized()
	}

	if err := s.Move(ctx, dbTx, asset, call.Sender, req.To, req.Amount); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Uint64("asset_id", req.AssetID).
		Str("from", call.Sender.String()).
		Str("to", req.To.String()).
		Uint64("amount", req.Amount).
		Msg("tokens transferred")

	return nil
}

// Move debits from and credits to inside the caller's transaction. Both rows
// are locked in deterministic order so concurrent opposite transfers cannot
// deadlock.
func (s *LedgerServiceImpl) Move(ctx context.Context, tx pgx.Tx, asset *domain.Asset, from, to domain.Principal, amount uint64) error {
	first, second := from, to
	if second < first {
		first, second = second, first
	}

	firstBal, err := s.balanceRepo.GetForUpdate(ctx, tx, asset.ID, first)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock balance %s: %w", first, err))
	}
	secondBal, err := s.balanceRepo.GetForUpdate(ctx, tx, asset.ID, second)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock balance %s: %w", second, err))
	}

	fromBal, toBal := firstBal, secondBal
	if first != from {
		fromBal, toBal = secondBal, firstBal
	}

	if fromBal < amount {
		return apperror.ErrInsufficientBalance()
	}
	if !addNoOverflow(toBal, amount) {
		return apperror.ErrInvalidParams()
	}

	if err := s.balanceRepo.Set(ctx, tx, asset.ID, from, fromBal-amount); err != nil {
		return apperror.InternalError(fmt.Errorf("debit %s: %w", from, err))
	}
	if err := s.balanceRepo.Set(ctx, tx, asset.ID, to, toBal+amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit %s: %w", to, err))
	}
	return nil
}

// GetBalance returns the holder's balance, zero for an unset entry.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, assetID uint64, user domain.Principal) (uint64, error) {
	if !validPrincipal(user) {
		return 0, apperror.ErrInvalidParams()
	}

	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get asset: %w", err))
	}
	if asset == nil {
		return 0, apperror.ErrAssetNotFound()
	}

	balance, err := s.balanceRepo.Get(ctx, assetID, user)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get balance: %w", err))
	}
	return balance, nil
}

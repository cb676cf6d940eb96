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

// NativeServiceImpl implements ports.NativeService and ports.NativeMover over
// the native payment-asset table. MoveNative is the settlement leg the
// marketplace composes with the token transfer.
type NativeServiceImpl struct {
	nativeRepo ports.NativeBalanceRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewNativeService creates a new NativeServiceImpl.
func NewNativeService(
	nativeRepo ports.NativeBalanceRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *NativeServiceImpl {
	return &NativeServiceImpl{
		nativeRepo: nativeRepo,
		transactor: transactor,
		log:        log,
	}
}

// MoveNative debits from and credits to inside the caller's transaction,
// locking rows in deterministic order.
func (s *NativeServiceImpl) MoveNative(ctx context.Context, tx pgx.Tx, from, to domain.Principal, amount uint64) error {
	if from == to {
		return apperror.ErrInvalidParams()
	}

	first, second := from, to
	if second < first {
		first, second = second, first
	}

	firstBal, err := s.nativeRepo.GetForUpdate(ctx, tx, first)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock native balance %s: %w", first, err))
	}
	secondBal, err := s.nativeRepo.GetForUpdate(ctx, tx, second)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock native balance %s: %w", second, err))
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

	if err := s.nativeRepo.Set(ctx, tx, from, fromBal-amount); err != nil {
		return apperror.InternalError(fmt.Errorf("debit native %s: %w", from, err))
	}
	if err := s.nativeRepo.Set(ctx, tx, to, toBal+amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit native %s: %w", to, err))
	}
	return nil
}

// Deposit credits the caller with native currency. Faucet-style: the host
// environment, not the engine, decides who may fund accounts.
func (s *NativeServiceImpl) Deposit(ctx context.Context, call ports.Call, amount uint64) error {
	if !validAmount(amount) {
		return apperror.ErrInvalidParams()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	balance, err := s.nativeRepo.GetForUpdate(ctx, dbTx, call.Sender)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock native balance: %w", err))
	}
	if !addNoOverflow(balance, amount) {
		return apperror.ErrInvalidParams()
	}
	if err := s.nativeRepo.Set(ctx, dbTx, call.Sender, balance+amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit native balance: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("holder", call.Sender.String()).
		Uint64("amount", amount).
		Msg("native deposit")

	return nil
}

// GetNativeBalance returns the holder's native balance, zero if unset.
func (s *NativeServiceImpl) GetNativeBalance(ctx context.Context, holder domain.Principal) (uint64, error) {
	if !validPrincipal(holder) {
		return 0, apperror.ErrInvalidParams()
	}
	balance, err := s.nativeRepo.Get(ctx, holder)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get native balance: %w", err))
	}
	return balance, nil
}

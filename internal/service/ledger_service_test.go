package service

import (
	"context"
	"math"
	"testing"

	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/internal/core/ports/mocks"
	"tokenized-asset-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc         *LedgerServiceImpl
	assetRepo   *mocks.MockAssetRepository
	balanceRepo *mocks.MockBalanceRepository
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		assetRepo:   mocks.NewMockAssetRepository(ctrl),
		balanceRepo: mocks.NewMockBalanceRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	params := ports.EngineParams{Contract: testContract, Owner: testOwner}
	d.svc = NewLedgerService(params, d.assetRepo, d.balanceRepo, d.transactor, zerolog.Nop())
	return d
}

// ==================== Transfer Tests ====================

func TestLedgerService_Transfer_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	call := ports.Call{Sender: testAlice, Height: 20}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.assetRepo.EXPECT().GetByIDTx(ctx, tx, uint64(1)).Return(&domain.Asset{ID: 1, Owner: testOwner}, nil)
	// Lock order is lexicographic: alice before bob.
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, uint64(1), testAlice).Return(uint64(100), nil)
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, uint64(1), testBob).Return(uint64(7), nil)
	d.balanceRepo.EXPECT().Set(ctx, tx, uint64(1), testAlice, uint64(60)).Return(nil)
	d.balanceRepo.EXPECT().Set(ctx, tx, uint64(1), testBob, uint64(47)).Return(nil)

	err := d.svc.Transfer(ctx, call, ports.TransferRequest{AssetID: 1, To: testBob, Amount: 40})
	require.NoError(t, err)
}

func TestLedgerService_Transfer_ReverseLockOrder(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	call := ports.Call{Sender: testBob}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.assetRepo.EXPECT().GetByIDTx(ctx, tx, uint64(1)).Return(&domain.Asset{ID: 1, Owner: testOwner}, nil)
	// Even with bob sending, alice's row locks first.
	gomock.InOrder(
		d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, uint64(1), testAlice).Return(uint64(0), nil),
		d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, uint64(1), testBob).Return(uint64(10), nil),
	)
	d.balanceRepo.EXPECT().Set(ctx, tx, uint64(1), testBob, uint64(4)).Return(nil)
	d.balanceRepo.EXPECT().Set(ctx, tx, uint64(1), testAlice, uint64(6)).Return(nil)

	err := d.svc.Transfer(ctx, call, ports.TransferRequest{AssetID: 1, To: testAlice, Amount: 6})
	require.NoError(t, err)
}

func TestLedgerService_Transfer_ZeroAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	err := d.svc.Transfer(context.Background(), ports.Call{Sender: testAlice}, ports.TransferRequest{
		AssetID: 1, To: testBob, Amount: 0,
	})
	assertCode(t, err, apperror.CodeInvalidParams)
}

func TestLedgerService_Transfer_SelfTransfer(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	err := d.svc.Transfer(context.Background(), ports.Call{Sender: testAlice}, ports.TransferRequest{
		AssetID: 1, To: testAlice, Amount: 5,
	})
	assertCode(t, err, apperror.CodeSelfTransfer)
}

func TestLedgerService_Transfer_ContractRecipient(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	err := d.svc.Transfer(context.Background(), ports.Call{Sender: testAlice}, ports.TransferRequest{
		AssetID: 1, To: testContract, Amount: 5,
	})
	assertCode(t, err, apperror.CodeInvalidRecipient)
}

func TestLedgerService_Transfer_AssetNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.assetRepo.EXPECT().GetByIDTx(ctx, tx, uint64(99)).Return(nil, nil)

	err := d.svc.Transfer(ctx, ports.Call{Sender: testAlice}, ports.TransferRequest{
		AssetID: 99, To: testBob, Amount: 5,
	})
	assertCode(t, err, apperror.CodeAssetNotFound)
}

func TestLedgerService_Transfer_FrozenAsset(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.assetRepo.EXPECT().GetByIDTx(ctx, tx, uint64(1)).Return(&domain.Asset{ID: 1, Owner: testOwner, Frozen: true}, nil)

	err := d.svc.Transfer(ctx, ports.Call{Sender: testAlice}, ports.TransferRequest{
		AssetID: 1, To: testBob, Amount: 5,
	})
	assertCode(t, err, apperror.CodeNotAuthorized)
}

func TestLedgerService_Transfer_InsufficientBalance(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.assetRepo.EXPECT().GetByIDTx(ctx, tx, uint64(1)).Return(&domain.Asset{ID: 1, Owner: testOwner}, nil)
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, uint64(1), testAlice).Return(uint64(3), nil)
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, uint64(1), testBob).Return(uint64(0), nil)

	err := d.svc.Transfer(ctx, ports.Call{Sender: testAlice}, ports.TransferRequest{
		AssetID: 1, To: testBob, Amount: 5,
	})
	assertCode(t, err, apperror.CodeInsufficientBalance)
}

func TestLedgerService_Transfer_ExactBalance(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.assetRepo.EXPECT().GetByIDTx(ctx, tx, uint64(1)).Return(&domain.Asset{ID: 1, Owner: testOwner}, nil)
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, uint64(1), testAlice).Return(uint64(5), nil)
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, uint64(1), testBob).Return(uint64(0), nil)
	d.balanceRepo.EXPECT().Set(ctx, tx, uint64(1), testAlice, uint64(0)).Return(nil)
	d.balanceRepo.EXPECT().Set(ctx, tx, uint64(1), testBob, uint64(5)).Return(nil)

	err := d.svc.Transfer(ctx, ports.Call{Sender: testAlice}, ports.TransferRequest{
		AssetID: 1, To: testBob, Amount: 5,
	})
	require.NoError(t, err)
}

func TestLedgerService_Transfer_CreditOverflow(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.assetRepo.EXPECT().GetByIDTx(ctx, tx, uint64(1)).Return(&domain.Asset{ID: 1, Owner: testOwner}, nil)
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, uint64(1), testAlice).Return(uint64(100), nil)
	d.balanceRepo.EXPECT().GetForUpdate(ctx, tx, uint64(1), testBob).Return(uint64(math.MaxUint64-10), nil)

	err := d.svc.Transfer(ctx, ports.Call{Sender: testAlice}, ports.TransferRequest{
		AssetID: 1, To: testBob, Amount: 50,
	})
	assertCode(t, err, apperror.CodeInvalidParams)
}

// ==================== GetBalance Tests ====================

func TestLedgerService_GetBalance_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.assetRepo.EXPECT().GetByID(ctx, uint64(1)).Return(&domain.Asset{ID: 1, Owner: testOwner}, nil)
	d.balanceRepo.EXPECT().Get(ctx, uint64(1), testAlice).Return(uint64(77), nil)

	bal, err := d.svc.GetBalance(ctx, 1, testAlice)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), bal)
}

func TestLedgerService_GetBalance_UnsetIsZero(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.assetRepo.EXPECT().GetByID(ctx, uint64(1)).Return(&domain.Asset{ID: 1, Owner: testOwner}, nil)
	d.balanceRepo.EXPECT().Get(ctx, uint64(1), testBob).Return(uint64(0), nil)

	bal, err := d.svc.GetBalance(ctx, 1, testBob)
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestLedgerService_GetBalance_AssetNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.assetRepo.EXPECT().GetByID(ctx, uint64(99)).Return(nil, nil)

	_, err := d.svc.GetBalance(ctx, 99, testAlice)
	assertCode(t, err, apperror.CodeAssetNotFound)
}

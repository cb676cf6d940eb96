package service

import (
	"context"
	"fmt"
	"time"

	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// RegistryServiceImpl implements ports.RegistryService: asset registration,
// supply issuance, and asset queries.
type RegistryServiceImpl struct {
	params      ports.EngineParams
	assetRepo   ports.AssetRepository
	balanceRepo ports.BalanceRepository
	stateRepo   ports.StateRepository
	cache       ports.AssetCache
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewRegistryService creates a new RegistryServiceImpl.
func NewRegistryService(
	params ports.EngineParams,
	assetRepo ports.AssetRepository,
	balanceRepo ports.BalanceRepository,
	stateRepo ports.StateRepository,
	cache ports.AssetCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *RegistryServiceImpl {
	return &RegistryServiceImpl{
		params:      params,
		assetRepo:   assetRepo,
		balanceRepo: balanceRepo,
		stateRepo:   stateRepo,
		cache:       cache,
		transactor:  transactor,
		log:         log,
	}
}

// Register creates a new asset with a sequential id and credits the caller
// with the initial supply. Only the contract owner may register assets.
func (s *RegistryServiceImpl) Register(ctx context.Context, call ports.Call, req ports.RegisterAssetRequest) (uint64, error) {
	if call.Sender != s.params.Owner {
		return 0, apperror.ErrNotAuthorized()
	}
	if !validAssetKind(req.Kind) || !validMetadataURI(req.MetadataURI) {
		return 0, apperror.ErrInvalidString()
	}
	if !validAmount(req.InitialSupply) {
		return 0, apperror.ErrInvalidParams()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	state, err := s.stateRepo.GetForUpdate(ctx, dbTx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock ledger state: %w", err))
	}
	id := state.TotalAssets + 1

	// Collision guard: the counter is the single id source, but a stale row
	// here must fail loudly rather than overwrite.
	existing, err := s.assetRepo.GetByIDTx(ctx, dbTx, id)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("check asset id: %w", err))
	}
	if existing != nil {
		return 0, apperror.ErrAssetExists()
	}

	asset := &domain.Asset{
		ID:          id,
		Owner:       call.Sender,
		Kind:        req.Kind,
		MetadataURI: req.MetadataURI,
		TotalSupply: req.InitialSupply,
		Frozen:      false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.assetRepo.Create(ctx, dbTx, asset); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("create asset: %w", err))
	}
	if err := s.balanceRepo.Set(ctx, dbTx, id, call.Sender, req.InitialSupply); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("credit initial supply: %w", err))
	}
	if err := s.stateRepo.SetTotalAssets(ctx, dbTx, id); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("advance asset counter: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Uint64("asset_id", id).
		Str("kind", req.Kind).
		Uint64("initial_supply", req.InitialSupply).
		Str("owner", call.Sender.String()).
		Msg("asset registered")

	return id, nil
}

// Mint raises an asset's total supply and credits the recipient. Only the
// asset's registered owner may mint, and only while the asset is not frozen.
func (s *RegistryServiceImpl) Mint(ctx context.Context, call ports.Call, req ports.MintRequest) error {
	if !validAmount(req.Amount) {
		return apperror.ErrInvalidParams()
	}
	if !validPrincipal(req.Recipient) || req.Recipient == s.params.Contract {
		return apperror.ErrInvalidRecipient()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	asset, err := s.assetRepo.GetByIDForUpdate(ctx, dbTx, req.AssetID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock asset: %w", err))
	}
	if asset == nil {
		return apperror.ErrAssetNotFound()
	}
	if call.Sender != asset.Owner || asset.Frozen {
		return apperror.ErrNotAuthorized()
	}
	if !addNoOverflow(asset.TotalSupply, req.Amount) {
		return apperror.ErrInvalidParams()
	}

	// Supply and recipient balance move together: the conservation invariant
	// holds at every commit point.
	if err := s.assetRepo.UpdateSupply(ctx, dbTx, asset.ID, asset.TotalSupply+req.Amount); err != nil {
		return apperror.InternalError(fmt.Errorf("update supply: %w", err))
	}
	balance, err := s.balanceRepo.GetForUpdate(ctx, dbTx, asset.ID, req.Recipient)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock recipient balance: %w", err))
	}
	if err := s.balanceRepo.Set(ctx, dbTx, asset.ID, req.Recipient, balance+req.Amount); err != nil {
		return apperror.InternalError(fmt.Errorf("credit recipient: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, asset.ID); err != nil {
			s.log.Warn().Err(err).Uint64("asset_id", asset.ID).Msg("failed to invalidate asset cache")
		}
	}

	s.log.Info().
		Uint64("asset_id", asset.ID).
		Uint64("amount", req.Amount).
		Str("recipient", req.Recipient.String()).
		Msg("supply minted")

	return nil
}

// GetAsset returns the asset record, consulting the cache first.
func (s *RegistryServiceImpl) GetAsset(ctx context.Context, assetID uint64) (*domain.Asset, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, assetID)
		if err != nil {
			s.log.Warn().Err(err).Uint64("asset_id", assetID).Msg("asset cache read failed, falling through")
		}
		if cached != nil {
			return cached, nil
		}
	}

	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get asset: %w", err))
	}
	if asset == nil {
		return nil, apperror.ErrAssetNotFound()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, asset); err != nil {
			s.log.Warn().Err(err).Uint64("asset_id", assetID).Msg("failed to cache asset")
		}
	}
	return asset, nil
}

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

// MarketServiceImpl implements ports.MarketService. Purchase settlement
// composes the native payment leg and the token leg inside one transaction:
// either both apply or neither does.
type MarketServiceImpl struct {
	assetRepo   ports.AssetRepository
	balanceRepo ports.BalanceRepository
	listingRepo ports.ListingRepository
	tokenMover  ports.TokenMover
	nativeMover ports.NativeMover
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewMarketService creates a new MarketServiceImpl.
func NewMarketService(
	assetRepo ports.AssetRepository,
	balanceRepo ports.BalanceRepository,
	listingRepo ports.ListingRepository,
	tokenMover ports.TokenMover,
	nativeMover ports.NativeMover,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *MarketServiceImpl {
	return &MarketServiceImpl{
		assetRepo:   assetRepo,
		balanceRepo: balanceRepo,
		listingRepo: listingRepo,
		tokenMover:  tokenMover,
		nativeMover: nativeMover,
		transactor:  transactor,
		log:         log,
	}
}

// List creates or overwrites the caller's listing for an asset. The caller's
// balance is checked now and never re-verified at purchase time; a later
// shortfall surfaces from the settlement transfer itself.
func (s *MarketServiceImpl) List(ctx context.Context, call ports.Call, req ports.ListRequest) error {
	if !validAmount(req.Price) {
		return apperror.ErrInvalidPrice()
	}
	if !validAmount(req.Quantity) {
		return apperror.ErrInvalidParams()
	}

	asset, err := s.assetRepo.GetByID(ctx, req.AssetID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get asset: %w", err))
	}
	if asset == nil {
		return apperror.ErrAssetNotFound()
	}
	if req.Expiry < call.Height {
		return apperror.ErrInvalidExpiry()
	}

	balance, err := s.balanceRepo.Get(ctx, req.AssetID, call.Sender)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get seller balance: %w", err))
	}
	if balance < req.Quantity {
		return apperror.ErrInsufficientBalance()
	}

	listing := &domain.Listing{
		AssetID:   req.AssetID,
		Seller:    call.Sender,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Expiry:    req.Expiry,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.listingRepo.Put(ctx, listing); err != nil {
		return apperror.InternalError(fmt.Errorf("put listing: %w", err))
	}

	s.log.Info().
		Uint64("asset_id", req.AssetID).
		Str("seller", call.Sender.String()).
		Uint64("price", req.Price).
		Uint64("quantity", req.Quantity).
		Uint64("expiry", req.Expiry).
		Msg("listing created")

	return nil
}

// Buy settles a purchase against a listing: the native payment moves from
// buyer to seller and the tokens move from seller to buyer as one unit.
func (s *MarketServiceImpl) Buy(ctx context.Context, call ports.Call, req ports.BuyRequest) error {
	if !validAmount(req.Quantity) {
		return apperror.ErrInvalidParams()
	}
	if call.Sender == req.Seller {
		return apperror.ErrSelfTrade()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	listing, err := s.listingRepo.GetForUpdate(ctx, dbTx, req.AssetID, req.Seller)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock listing: %w", err))
	}
	if listing == nil {
		return apperror.ErrNotListed()
	}
	if req.Quantity > listing.Quantity {
		return apperror.ErrInvalidParams()
	}

	asset, err := s.assetRepo.GetByIDTx(ctx, dbTx, req.AssetID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get asset: %w", err))
	}
	if asset == nil {
		return apperror.ErrAssetNotFound()
	}
	if asset.Frozen {
		return apperror.ErrMarketplaceFrozen()
	}
	if listing.ExpiredAt(call.Height) {
		return apperror.ErrInvalidExpiry()
	}

	if !mulNoOverflow(listing.Price, req.Quantity) {
		return apperror.ErrInvalidParams()
	}
	totalCost := listing.Price * req.Quantity

	// Settlement: payment leg first, then the token leg. The token leg is
	// where an over-listed seller's shortfall surfaces; the rollback then
	// discards the already-staged payment.
	if err := s.nativeMover.MoveNative(ctx, dbTx, call.Sender, req.Seller, totalCost); err != nil {
		return err
	}
	if err := s.tokenMover.Move(ctx, dbTx, asset, req.Seller, call.Sender, req.Quantity); err != nil {
		return err
	}

	if req.Quantity == listing.Quantity {
		if err := s.listingRepo.Delete(ctx, dbTx, req.AssetID, req.Seller); err != nil {
			return apperror.InternalError(fmt.Errorf("delete listing: %w", err))
		}
	} else {
		if err := s.listingRepo.UpdateQuantity(ctx, dbTx, req.AssetID, req.Seller, listing.Quantity-req.Quantity); err != nil {
			return apperror.InternalError(fmt.Errorf("decrement listing: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Uint64("asset_id", req.AssetID).
		Str("buyer", call.Sender.String()).
		Str("seller", req.Seller.String()).
		Uint64("quantity", req.Quantity).
		Uint64("total_cost", totalCost).
		Msg("purchase settled")

	return nil
}

// GetListing returns the listing for (asset, seller), or nil if absent.
func (s *MarketServiceImpl) GetListing(ctx context.Context, assetID uint64, seller domain.Principal) (*domain.Listing, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get asset: %w", err))
	}
	if asset == nil {
		return nil, apperror.ErrAssetNotFound()
	}

	listing, err := s.listingRepo.Get(ctx, assetID, seller)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get listing: %w", err))
	}
	return listing, nil
}

package handler

import (
	"tokenized-asset-ledger/internal/adapter/http/dto"
	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/pkg/apperror"
	"tokenized-asset-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// MarketHandler handles marketplace endpoints.
type MarketHandler struct {
	marketSvc ports.MarketService
	heights   ports.HeightSource
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc ports.MarketService, heights ports.HeightSource) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc, heights: heights}
}

// List handles POST /api/v1/market/listings.
func (h *MarketHandler) List(c *gin.Context) {
	call, ok := callFrom(c, h.heights)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	err := h.marketSvc.List(c.Request.Context(), call, ports.ListRequest{
		AssetID:  req.AssetID,
		Price:    req.Price,
		Quantity: req.Quantity,
		Expiry:   req.Expiry,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	listing, err := h.marketSvc.GetListing(c.Request.Context(), req.AssetID, call.Sender)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toListingResponse(listing))
}

// Buy handles POST /api/v1/market/buy.
func (h *MarketHandler) Buy(c *gin.Context) {
	call, ok := callFrom(c, h.heights)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	err := h.marketSvc.Buy(c.Request.Context(), call, ports.BuyRequest{
		AssetID:  req.AssetID,
		Seller:   domain.Principal(req.Seller),
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"asset_id": req.AssetID,
		"seller":   req.Seller,
		"quantity": req.Quantity,
	})
}

// GetListing handles GET /api/v1/market/listings/:id/:seller.
func (h *MarketHandler) GetListing(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	seller := domain.Principal(c.Param("seller"))

	listing, err := h.marketSvc.GetListing(c.Request.Context(), assetID, seller)
	if err != nil {
		response.Error(c, err)
		return
	}
	if listing == nil {
		response.Error(c, apperror.ErrNotListed())
		return
	}

	response.OK(c, toListingResponse(listing))
}

// toListingResponse converts a domain listing to its DTO form.
func toListingResponse(l *domain.Listing) dto.ListingResponse {
	return dto.ListingResponse{
		AssetID:   l.AssetID,
		Seller:    string(l.Seller),
		Price:     l.Price,
		Quantity:  l.Quantity,
		Expiry:    l.Expiry,
		CreatedAt: l.CreatedAt,
	}
}

package handler

import (
	"tokenized-asset-ledger/internal/adapter/http/dto"
	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/pkg/apperror"
	"tokenized-asset-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AssetHandler handles asset registry endpoints.
type AssetHandler struct {
	registrySvc ports.RegistryService
	ledgerSvc   ports.LedgerService
	heights     ports.HeightSource
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(registrySvc ports.RegistryService, ledgerSvc ports.LedgerService, heights ports.HeightSource) *AssetHandler {
	return &AssetHandler{registrySvc: registrySvc, ledgerSvc: ledgerSvc, heights: heights}
}

// Register handles POST /api/v1/assets.
func (h *AssetHandler) Register(c *gin.Context) {
	call, ok := callFrom(c, h.heights)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RegisterAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	assetID, err := h.registrySvc.Register(c.Request.Context(), call, ports.RegisterAssetRequest{
		Kind:          req.Kind,
		MetadataURI:   req.MetadataURI,
		InitialSupply: req.InitialSupply,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.RegisterAssetResponse{AssetID: assetID})
}

// Mint handles POST /api/v1/assets/:id/mint.
func (h *AssetHandler) Mint(c *gin.Context) {
	call, ok := callFrom(c, h.heights)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	err := h.registrySvc.Mint(c.Request.Context(), call, ports.MintRequest{
		AssetID:   assetID,
		Amount:    req.Amount,
		Recipient: domain.Principal(req.Recipient),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	asset, err := h.registrySvc.GetAsset(c.Request.Context(), assetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAssetResponse(asset))
}

// GetAsset handles GET /api/v1/assets/:id.
func (h *AssetHandler) GetAsset(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	asset, err := h.registrySvc.GetAsset(c.Request.Context(), assetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAssetResponse(asset))
}

// GetBalance handles GET /api/v1/assets/:id/balances/:address.
func (h *AssetHandler) GetBalance(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	holder := domain.Principal(c.Param("address"))

	balance, err := h.ledgerSvc.GetBalance(c.Request.Context(), assetID, holder)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		AssetID: assetID,
		Holder:  string(holder),
		Balance: balance,
	})
}

package handler

import (
	"tokenized-asset-ledger/internal/adapter/http/dto"
	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/pkg/apperror"
	"tokenized-asset-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles balance transfer endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
	heights   ports.HeightSource
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService, heights ports.HeightSource) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, heights: heights}
}

// Transfer handles POST /api/v1/transfers.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	call, ok := callFrom(c, h.heights)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	err := h.ledgerSvc.Transfer(c.Request.Context(), call, ports.TransferRequest{
		AssetID: req.AssetID,
		To:      domain.Principal(req.To),
		Amount:  req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.ledgerSvc.GetBalance(c.Request.Context(), req.AssetID, call.Sender)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		AssetID: req.AssetID,
		Holder:  string(call.Sender),
		Balance: balance,
	})
}

// Height handles GET /api/v1/height.
func (h *LedgerHandler) Height(c *gin.Context) {
	response.OK(c, dto.HeightResponse{Height: h.heights.Current()})
}

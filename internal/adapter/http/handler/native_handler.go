package handler

import (
	"tokenized-asset-ledger/internal/adapter/http/dto"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/pkg/apperror"
	"tokenized-asset-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// NativeHandler handles native payment-asset endpoints.
type NativeHandler struct {
	nativeSvc ports.NativeService
	heights   ports.HeightSource
}

// NewNativeHandler creates a new NativeHandler.
func NewNativeHandler(nativeSvc ports.NativeService, heights ports.HeightSource) *NativeHandler {
	return &NativeHandler{nativeSvc: nativeSvc, heights: heights}
}

// Deposit handles POST /api/v1/native/deposit.
func (h *NativeHandler) Deposit(c *gin.Context) {
	call, ok := callFrom(c, h.heights)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.nativeSvc.Deposit(c.Request.Context(), call, req.Amount); err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.nativeSvc.GetNativeBalance(c.Request.Context(), call.Sender)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NativeBalanceResponse{
		Holder:  string(call.Sender),
		Balance: balance,
	})
}

// GetBalance handles GET /api/v1/native/balance. The holder is the
// authenticated principal.
func (h *NativeHandler) GetBalance(c *gin.Context) {
	addr, ok := callFrom(c, h.heights)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.nativeSvc.GetNativeBalance(c.Request.Context(), addr.Sender)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NativeBalanceResponse{
		Holder:  string(addr.Sender),
		Balance: balance,
	})
}

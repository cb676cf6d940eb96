package handler

import (
	"tokenized-asset-ledger/internal/adapter/http/dto"
	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/pkg/apperror"
	"tokenized-asset-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// ComplianceHandler handles compliance registry endpoints.
type ComplianceHandler struct {
	complianceSvc ports.ComplianceService
	heights       ports.HeightSource
}

// NewComplianceHandler creates a new ComplianceHandler.
func NewComplianceHandler(complianceSvc ports.ComplianceService, heights ports.HeightSource) *ComplianceHandler {
	return &ComplianceHandler{complianceSvc: complianceSvc, heights: heights}
}

// SetAuthority handles PUT /api/v1/compliance/authority.
func (h *ComplianceHandler) SetAuthority(c *gin.Context) {
	call, ok := callFrom(c, h.heights)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SetAuthorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.complianceSvc.SetAuthority(c.Request.Context(), call, domain.Principal(req.Authority)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"authority": req.Authority})
}

// ApproveUser handles POST /api/v1/compliance/approvals.
func (h *ComplianceHandler) ApproveUser(c *gin.Context) {
	call, ok := callFrom(c, h.heights)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ApproveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.complianceSvc.ApproveUser(c.Request.Context(), call, req.AssetID, domain.Principal(req.User)); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ComplianceResponse{
		AssetID:    req.AssetID,
		User:       req.User,
		Approved:   true,
		ApprovedAt: call.Height,
	})
}

// GetApproval handles GET /api/v1/compliance/approvals/:id/:address.
func (h *ComplianceHandler) GetApproval(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	user := domain.Principal(c.Param("address"))

	record, err := h.complianceSvc.IsUserApproved(c.Request.Context(), assetID, user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ComplianceResponse{
		AssetID:    assetID,
		User:       string(user),
		Approved:   record.Approved,
		ApprovedAt: record.ApprovedAt,
	})
}

package handler

import (
	"strconv"

	"tokenized-asset-ledger/internal/adapter/http/dto"
	"tokenized-asset-ledger/internal/adapter/http/middleware"
	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/pkg/apperror"
	"tokenized-asset-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// callFrom builds the engine call envelope from the authenticated principal
// and the current block height. Returns false if no principal was set by the
// auth middleware.
func callFrom(c *gin.Context, heights ports.HeightSource) (ports.Call, bool) {
	addr, ok := middleware.Sender(c)
	if !ok {
		return ports.Call{}, false
	}
	return ports.Call{Sender: addr, Height: heights.Current()}, true
}

// pathID parses a uint64 path parameter.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("invalid "+name+" path parameter"))
		return 0, false
	}
	return id, true
}

// toAssetResponse converts a domain asset to its DTO form.
func toAssetResponse(a *domain.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:          a.ID,
		Owner:       string(a.Owner),
		Kind:        a.Kind,
		MetadataURI: a.MetadataURI,
		TotalSupply: a.TotalSupply,
		Frozen:      a.Frozen,
		CreatedAt:   a.CreatedAt,
	}
}

package middleware

import (
	"time"

	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that journals every mutating call,
// successful or not. Reads are never audited.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		operation := mapRouteToOperation(c.FullPath(), c.Request.Method)
		if operation == "" {
			return
		}

		var principal domain.Principal
		if addr, ok := Sender(c); ok {
			principal = addr
		}

		var errorCode uint32
		if v, exists := c.Get(response.CtxErrorCode); exists {
			if code, ok := v.(uint32); ok {
				errorCode = code
			}
		}

		auditSvc.Record(c.Request.Context(), &domain.AuditEntry{
			ID:        uuid.New(),
			Principal: principal,
			Operation: operation,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
			ErrorCode: errorCode,
			CreatedAt: time.Now(),
		})
	}
}

// mapRouteToOperation maps a gin route template and method to the ledger
// operation name recorded in the journal.
func mapRouteToOperation(route, method string) string {
	switch {
	case route == "/api/v1/auth/register" && method == "POST":
		return "auth.register"
	case route == "/api/v1/auth/login" && method == "POST":
		return "auth.login"
	case route == "/api/v1/assets" && method == "POST":
		return "registry.register"
	case route == "/api/v1/assets/:id/mint" && method == "POST":
		return "registry.mint"
	case route == "/api/v1/transfers" && method == "POST":
		return "ledger.transfer"
	case route == "/api/v1/market/listings" && method == "POST":
		return "market.list"
	case route == "/api/v1/market/buy" && method == "POST":
		return "market.buy"
	case route == "/api/v1/compliance/authority" && method == "PUT":
		return "compliance.set_authority"
	case route == "/api/v1/compliance/approvals" && method == "POST":
		return "compliance.approve"
	case route == "/api/v1/native/deposit" && method == "POST":
		return "native.deposit"
	}
	return ""
}

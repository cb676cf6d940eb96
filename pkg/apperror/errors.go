package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error carrying a stable numeric code that external
// callers match on. The HTTP status is only used by the host call adapter.
type AppError struct {
	Code       uint32 `json:"error_code"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d %s] %s: %v", e.Code, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d %s] %s", e.Code, e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code uint32, kind string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Kind:       kind,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code uint32, kind string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Kind:       kind,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Stable engine failure codes. These never change: external systems match on
// the numeric value, not the message.
const (
	CodeNotAuthorized         uint32 = 100
	CodeAssetExists           uint32 = 101
	CodeAssetNotFound         uint32 = 102
	CodeInsufficientBalance   uint32 = 103
	CodeNotListed             uint32 = 104
	CodeInvalidPrice          uint32 = 105
	CodeComplianceCheckFailed uint32 = 106
	CodeInvalidParams         uint32 = 107
	CodeInvalidString         uint32 = 108
	CodeInvalidExpiry         uint32 = 109
	CodeInvalidRecipient      uint32 = 110
	CodeSelfTransfer          uint32 = 111
	CodeMarketplaceFrozen     uint32 = 112
	CodeSelfTrade             uint32 = 113
	CodeInvalidAuthority      uint32 = 114

	// Non-engine codes (host adapter / infrastructure).
	CodeInternal       uint32 = 500
	CodeUnauthorized   uint32 = 501
	CodeRateLimited    uint32 = 502
	CodeInvalidRequest uint32 = 503
)

// ---- Engine failure kinds (closed set) ----

func ErrNotAuthorized() *AppError {
	return New(CodeNotAuthorized, "NOT_AUTHORIZED", "Caller is not authorized for this operation", http.StatusForbidden)
}

func ErrAssetExists() *AppError {
	return New(CodeAssetExists, "ASSET_EXISTS", "Asset id is already registered", http.StatusConflict)
}

func ErrAssetNotFound() *AppError {
	return New(CodeAssetNotFound, "ASSET_NOT_FOUND", "Asset not found", http.StatusNotFound)
}

func ErrInsufficientBalance() *AppError {
	return New(CodeInsufficientBalance, "INSUFFICIENT_BALANCE", "Insufficient balance", http.StatusPaymentRequired)
}

func ErrNotListed() *AppError {
	return New(CodeNotListed, "NOT_LISTED", "No active listing for this asset and seller", http.StatusNotFound)
}

func ErrInvalidPrice() *AppError {
	return New(CodeInvalidPrice, "INVALID_PRICE", "Price must be greater than zero", http.StatusBadRequest)
}

func ErrComplianceCheckFailed() *AppError {
	return New(CodeComplianceCheckFailed, "COMPLIANCE_CHECK_FAILED", "Compliance check failed", http.StatusForbidden)
}

func ErrInvalidParams() *AppError {
	return New(CodeInvalidParams, "INVALID_PARAMS", "Invalid call parameters", http.StatusBadRequest)
}

func ErrInvalidString() *AppError {
	return New(CodeInvalidString, "INVALID_STRING", "String argument out of bounds", http.StatusBadRequest)
}

func ErrInvalidExpiry() *AppError {
	return New(CodeInvalidExpiry, "INVALID_EXPIRY", "Expiry height is in the past", http.StatusBadRequest)
}

func ErrInvalidRecipient() *AppError {
	return New(CodeInvalidRecipient, "INVALID_RECIPIENT", "Recipient is not a valid principal", http.StatusBadRequest)
}

func ErrSelfTransfer() *AppError {
	return New(CodeSelfTransfer, "SELF_TRANSFER", "Sender and recipient are the same principal", http.StatusBadRequest)
}

func ErrMarketplaceFrozen() *AppError {
	return New(CodeMarketplaceFrozen, "MARKETPLACE_FROZEN", "Asset is frozen for marketplace settlement", http.StatusConflict)
}

func ErrSelfTrade() *AppError {
	return New(CodeSelfTrade, "SELF_TRADE", "Buyer and seller are the same principal", http.StatusBadRequest)
}

func ErrInvalidAuthority() *AppError {
	return New(CodeInvalidAuthority, "INVALID_AUTHORITY", "New authority is not acceptable", http.StatusBadRequest)
}

// ---- Host adapter & infrastructure ----

func ErrInvalidCredentials() *AppError {
	return New(CodeUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidAccessKey() *AppError {
	return New(CodeUnauthorized, "INVALID_ACCESS_KEY", "Invalid access key", http.StatusUnauthorized)
}

func ErrInvalidSignature() *AppError {
	return New(CodeUnauthorized, "INVALID_SIGNATURE", "Invalid call signature", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New(CodeUnauthorized, "INVALID_TOKEN", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrTimestampExpired() *AppError {
	return New(CodeUnauthorized, "TIMESTAMP_EXPIRED", "Call timestamp expired", http.StatusForbidden)
}

func ErrNonceUsed() *AppError {
	return New(CodeUnauthorized, "NONCE_USED", "Nonce has already been used", http.StatusForbidden)
}

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "RATE_LIMITED", "Rate limit exceeded", http.StatusTooManyRequests)
}

// InternalError wraps an infrastructure fault. These are never part of the
// engine's closed failure set; they indicate the host, not the call, failed.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "INTERNAL", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns an invalid-request error with a specific message.
func Validation(message string) *AppError {
	return New(CodeInvalidRequest, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// CodeOf extracts the stable numeric code from err, or 0 if err is not an
// AppError.
func CodeOf(err error) uint32 {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

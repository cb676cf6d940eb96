package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineCodes_Stable(t *testing.T) {
	// The numeric codes are an external contract.
	cases := []struct {
		err  *AppError
		code uint32
	}{
		{ErrNotAuthorized(), 100},
		{ErrAssetExists(), 101},
		{ErrAssetNotFound(), 102},
		{ErrInsufficientBalance(), 103},
		{ErrNotListed(), 104},
		{ErrInvalidPrice(), 105},
		{ErrComplianceCheckFailed(), 106},
		{ErrInvalidParams(), 107},
		{ErrInvalidString(), 108},
		{ErrInvalidExpiry(), 109},
		{ErrInvalidRecipient(), 110},
		{ErrSelfTransfer(), 111},
		{ErrMarketplaceFrozen(), 112},
		{ErrSelfTrade(), 113},
		{ErrInvalidAuthority(), 114},
	}
	for _, c := range cases {
		assert.Equal(t, c.code, c.err.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	e := ErrAssetNotFound()
	assert.Equal(t, "[102 ASSET_NOT_FOUND] Asset not found", e.Error())

	wrapped := InternalError(fmt.Errorf("pg down"))
	assert.Contains(t, wrapped.Error(), "pg down")
	assert.Equal(t, http.StatusInternalServerError, wrapped.HTTPStatus)
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	e := InternalError(inner)
	assert.ErrorIs(t, e, inner)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeSelfTrade, CodeOf(ErrSelfTrade()))
	assert.Equal(t, CodeSelfTrade, CodeOf(fmt.Errorf("buy: %w", ErrSelfTrade())))
	assert.Equal(t, uint32(0), CodeOf(errors.New("plain")))
	assert.Equal(t, uint32(0), CodeOf(nil))
}

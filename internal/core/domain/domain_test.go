package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrincipalAddress(t *testing.T) {
	a, err := NewPrincipalAddress()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.String(), AddressPrefix))
	// 20 random bytes encode to well over 20 base58 characters.
	assert.Greater(t, len(a), len(AddressPrefix)+20)

	b, err := NewPrincipalAddress()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestListing_ExpiredAt(t *testing.T) {
	l := &Listing{Expiry: 100}

	assert.False(t, l.ExpiredAt(99))
	assert.False(t, l.ExpiredAt(100), "listing is live through its expiry height")
	assert.True(t, l.ExpiredAt(101))
}

package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestAESEncryptionService_RoundTrip(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	ciphertext, err := svc.Encrypt("my-secret-key")
	require.NoError(t, err)
	assert.NotEqual(t, "my-secret-key", ciphertext)

	plaintext, err := svc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "my-secret-key", plaintext)
}

func TestAESEncryptionService_NonceVariesPerCall(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	a, err := svc.Encrypt("same")
	require.NoError(t, err)
	b, err := svc.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAESEncryptionService_TamperedCiphertext(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	ciphertext, err := svc.Encrypt("payload")
	require.NoError(t, err)

	flipped := "0" + ciphertext[1:]
	if strings.HasPrefix(ciphertext, "0") {
		flipped = "1" + ciphertext[1:]
	}
	_, err = svc.Decrypt(flipped)
	assert.Error(t, err)
}

func TestAESEncryptionService_BadKey(t *testing.T) {
	_, err := NewAESEncryptionService("tooshort")
	assert.Error(t, err)
}

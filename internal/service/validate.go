package service

import (
	"unicode/utf8"

	"tokenized-asset-ledger/internal/core/domain"
)

// Argument bounds enforced by every entry point before any state is touched.
const (
	maxAssetKindLen   = 32  // ASCII characters
	maxMetadataURILen = 256 // UTF-8 characters
	maxPrincipalLen   = 128
)

func validAmount(a uint64) bool { return a > 0 }

// validAssetKind accepts 1..32 printable ASCII characters.
func validAssetKind(s string) bool {
	if len(s) == 0 || len(s) > maxAssetKindLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// validMetadataURI accepts 1..256 well-formed UTF-8 characters.
func validMetadataURI(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	return utf8.RuneCountInString(s) <= maxMetadataURILen
}

func validPrincipal(p domain.Principal) bool {
	return p != "" && len(p) <= maxPrincipalLen
}

// mulNoOverflow reports whether a*b fits in uint64.
func mulNoOverflow(a, b uint64) bool {
	if a == 0 || b == 0 {
		return true
	}
	return a*b/a == b
}

// addNoOverflow reports whether a+b fits in uint64.
func addNoOverflow(a, b uint64) bool {
	return a+b >= a
}

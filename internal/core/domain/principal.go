package domain

import (
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// Principal is a ledger identity: the engine's own address, the contract
// owner, the compliance authority, and every asset holder are principals.
type Principal string

// AddressPrefix marks ledger addresses. The remainder is base58 over 20
// random bytes.
const AddressPrefix = "ldg1"

func (p Principal) String() string { return string(p) }

// NewPrincipalAddress generates a fresh ledger address.
func NewPrincipalAddress() (Principal, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating address bytes: %w", err)
	}
	return Principal(AddressPrefix + base58.Encode(raw)), nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is the host-adapter identity record behind a principal address.
// The engine itself never reads accounts; they exist so the HTTP surface can
// resolve authenticated callers to principals.
type Account struct {
	Address      Principal `json:"address"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Argon2id
	AccessKey    string    `json:"access_key"`
	SecretKeyEnc string    `json:"-"` // AES-256-GCM encrypted HMAC secret
	CreatedAt    time.Time `json:"created_at"`
}

// AuditEntry records one mutating call against the engine: who called which
// operation and with what outcome. Entries are append-only.
type AuditEntry struct {
	ID        uuid.UUID `json:"id"`
	Principal Principal `json:"principal"`
	Operation string    `json:"operation"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	ErrorCode uint32    `json:"error_code"` // 0 on success
	CreatedAt time.Time `json:"created_at"`
}

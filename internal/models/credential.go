package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential providers
const (
	ProviderSearchConsole = "search_console"
)

// Credential statuses
const (
	CredentialActive        = "active"
	CredentialRevoked       = "revoked"
	CredentialUndecryptable = "undecryptable"
)

// Credential is a stored third-party refresh token. The token itself is only
// ever held encrypted and is never serialized.
type Credential struct {
	ID                    uuid.UUID  `json:"id"`
	UserID                uuid.UUID  `json:"user_id"`
	Provider              string     `json:"provider"`
	EncryptedRefreshToken string     `json:"-"`
	Scopes                []string   `json:"scopes"`
	Status                string     `json:"status"`
	LastCheckedAt         *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

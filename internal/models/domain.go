package models

import (
	"time"

	"github.com/google/uuid"
)

// Domain statuses
const (
	DomainPending   = "pending"
	DomainValidated = "validated"
	DomainCrawled   = "crawled"
	DomainFailed    = "failed"
)

// Domain is a site submitted to the wizard by a user.
type Domain struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Host            string    `json:"host"`      // normalized, e.g. "example.com"
	InputURL        string    `json:"input_url"` // what the user typed
	Status          string    `json:"status"`
	BrandName       string    `json:"brand_name,omitempty"`
	Recommendations []string  `json:"recommendations"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsValidDomainStatus reports whether s is a known domain status.
func IsValidDomainStatus(s string) bool {
	switch s {
	case DomainPending, DomainValidated, DomainCrawled, DomainFailed:
		return true
	}
	return false
}

// CreateDomainRequest is the body of POST /api/domain.
type CreateDomainRequest struct {
	Domain    string `json:"domain"`
	BrandName string `json:"brand_name"`
}

// DomainValidationRequest is the body of POST /api/domain-validation/validate.
type DomainValidationRequest struct {
	Domain            string `json:"domain"`
	CheckReachability bool   `json:"check_reachability"`
}

// DomainValidationResponse is returned by the domain validation endpoint.
type DomainValidationResponse struct {
	Input     string `json:"input"`
	Host      string `json:"host"`
	Valid     bool   `json:"valid"`
	Reachable *bool  `json:"reachable,omitempty"`
	Message   string `json:"message,omitempty"`
}

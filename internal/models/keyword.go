package models

import (
	"time"

	"github.com/google/uuid"
)

// Keyword sources
const (
	KeywordExtracted = "extracted"
	KeywordCustom    = "custom"
	KeywordAI        = "ai"
)

// Keyword is a search term attached to a domain. Volume, difficulty and CPC
// are supplied by the analysis engine and may be absent.
type Keyword struct {
	ID         uuid.UUID `json:"id"`
	DomainID   uuid.UUID `json:"domain_id"`
	Text       string    `json:"text"`
	Source     string    `json:"source"`
	Selected   bool      `json:"selected"`
	Volume     *int      `json:"volume,omitempty"`
	Difficulty *int      `json:"difficulty,omitempty"`
	CPC        *float64  `json:"cpc,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateKeywordRequest is the body of POST /api/keywords/:domainId.
type CreateKeywordRequest struct {
	Text       string   `json:"text"`
	Source     string   `json:"source"`
	Volume     *int     `json:"volume"`
	Difficulty *int     `json:"difficulty"`
	CPC        *float64 `json:"cpc"`
}

// KeywordSelectionRequest is the body of POST /api/keywords/:domainId/selection.
type KeywordSelectionRequest struct {
	KeywordIDs []uuid.UUID `json:"keyword_ids"`
}

// IsValidKeywordSource reports whether s is a known keyword source.
func IsValidKeywordSource(s string) bool {
	switch s {
	case KeywordExtracted, KeywordCustom, KeywordAI:
		return true
	}
	return false
}

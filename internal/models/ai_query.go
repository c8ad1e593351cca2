package models

import (
	"time"

	"github.com/google/uuid"
)

// Domain presence classifications reported by the analysis engine.
const (
	PresenceFeatured  = "Featured"
	PresenceMentioned = "Mentioned"
	PresenceNotFound  = "Not Found"
)

// IsValidPresence reports whether s is a known presence classification.
func IsValidPresence(s string) bool {
	switch s {
	case PresenceFeatured, PresenceMentioned, PresenceNotFound:
		return true
	}
	return false
}

// AIQueryResult is one model's answer to one intent phrase.
type AIQueryResult struct {
	ID          uuid.UUID `json:"id"`
	DomainID    uuid.UUID `json:"domain_id"`
	PhraseID    string    `json:"phrase_id,omitempty"`
	Phrase      string    `json:"phrase"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Response    string    `json:"response"`
	Presence    string    `json:"presence"`
	Rank        *int      `json:"rank,omitempty"`
	Competitors []string  `json:"competitors"`
	CreatedAt   time.Time `json:"created_at"`
}

// CompetitorSummary counts how often another domain appeared in results.
type CompetitorSummary struct {
	Domain    string `json:"domain"`
	Mentions  int    `json:"mentions"`
	Providers int    `json:"providers"`
	Phrases   int    `json:"phrases"`
}

// ProviderStat counts presence outcomes for one provider/model pair.
type ProviderStat struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Total     int    `json:"total"`
	Featured  int    `json:"featured"`
	Mentioned int    `json:"mentioned"`
	NotFound  int    `json:"not_found"`
}

// VisibilityRate returns the share of results where the domain was present.
func (s ProviderStat) VisibilityRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Featured+s.Mentioned) / float64(s.Total)
}

// AIQueryRequest is the body of POST /api/ai-queries/:domainId.
// Empty Models means every enabled model in the catalog.
type AIQueryRequest struct {
	Models []string `json:"models"`
}

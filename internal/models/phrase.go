package models

import (
	"time"

	"github.com/google/uuid"
)

// IntentPhrase is a natural-language prompt generated for a keyword and used
// to probe AI models. ExternalID is the engine's identifier, used to apply
// phrase-updated events.
type IntentPhrase struct {
	ID             uuid.UUID  `json:"id"`
	DomainID       uuid.UUID  `json:"domain_id"`
	KeywordID      *uuid.UUID `json:"keyword_id,omitempty"`
	ExternalID     string     `json:"external_id"`
	Keyword        string     `json:"keyword"`
	Text           string     `json:"text"`
	Intent         string     `json:"intent,omitempty"`
	RelevanceScore *float64   `json:"relevance_score,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

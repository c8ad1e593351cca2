package models

import (
	"errors"
	"fmt"
)

// Stream event names sent by the analysis engine and relayed to the browser.
const (
	EventProgress        = "progress"
	EventPhraseGenerated = "phrase-generated"
	EventPhraseUpdated   = "phrase-updated"
	EventResult          = "result"
	EventStats           = "stats"
	EventComplete        = "complete"
	EventError           = "error"
	EventDebug           = "debug"
)

// ProgressEvent reports pipeline progress. Percent is 0..100.
type ProgressEvent struct {
	Stage   string  `json:"stage"`
	Message string  `json:"message"`
	Percent float64 `json:"percent"`
}

func (e ProgressEvent) Validate() error {
	if e.Percent < 0 || e.Percent > 100 {
		return fmt.Errorf("progress percent %v out of range", e.Percent)
	}
	return nil
}

// PhraseEvent carries a generated or updated intent phrase.
type PhraseEvent struct {
	ID             string   `json:"id"`
	KeywordID      string   `json:"keywordId,omitempty"`
	Keyword        string   `json:"keyword"`
	Phrase         string   `json:"phrase"`
	Intent         string   `json:"intent,omitempty"`
	RelevanceScore *float64 `json:"relevanceScore,omitempty"`
}

func (e PhraseEvent) Validate() error {
	if e.ID == "" {
		return errors.New("phrase event missing id")
	}
	if e.Phrase == "" {
		return errors.New("phrase event missing phrase text")
	}
	return nil
}

// ResultEvent carries one model response classified by the engine.
type ResultEvent struct {
	PhraseID    string   `json:"phraseId,omitempty"`
	Phrase      string   `json:"phrase"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Response    string   `json:"response"`
	Presence    string   `json:"presence"`
	Rank        *int     `json:"rank,omitempty"`
	Competitors []string `json:"competitors,omitempty"`
}

func (e ResultEvent) Validate() error {
	if e.Provider == "" || e.Model == "" {
		return errors.New("result event missing provider or model")
	}
	if e.Phrase == "" {
		return errors.New("result event missing phrase")
	}
	if !IsValidPresence(e.Presence) {
		return fmt.Errorf("result event has unknown presence %q", e.Presence)
	}
	if e.Rank != nil && *e.Rank < 1 {
		return fmt.Errorf("result event rank %d must be positive", *e.Rank)
	}
	return nil
}

// StatsEvent carries running totals for the query stream.
type StatsEvent struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Featured  int `json:"featured"`
	Mentioned int `json:"mentioned"`
	NotFound  int `json:"notFound"`
}

func (e StatsEvent) Validate() error {
	if e.Total < 0 || e.Completed < 0 || e.Completed > e.Total {
		return fmt.Errorf("stats event completed %d of %d is inconsistent", e.Completed, e.Total)
	}
	return nil
}

// CompleteEvent ends a stream. Recommendations are only sent by the query stream.
type CompleteEvent struct {
	Total           int      `json:"total"`
	Recommendations []string `json:"recommendations,omitempty"`
}

func (e CompleteEvent) Validate() error {
	if e.Total < 0 {
		return errors.New("complete event total must not be negative")
	}
	return nil
}

// ErrorEvent reports a failure inside the engine.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (e ErrorEvent) Validate() error {
	if e.Message == "" {
		return errors.New("error event missing message")
	}
	return nil
}

// DebugEvent is diagnostic output and is never persisted.
type DebugEvent struct {
	Message string `json:"message"`
}

func (e DebugEvent) Validate() error { return nil }

// PhraseGenerationRequest is sent to the engine to start step 3.
type PhraseGenerationRequest struct {
	Domain               string          `json:"domain"`
	BrandName            string          `json:"brandName,omitempty"`
	Keywords             []KeywordTarget `json:"keywords"`
	MaxPhrasesPerKeyword int             `json:"maxPhrasesPerKeyword"`
}

// KeywordTarget is a selected keyword forwarded to the engine.
type KeywordTarget struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QueryRunRequest is sent to the engine to start step 4.
type QueryRunRequest struct {
	Domain    string              `json:"domain"`
	BrandName string              `json:"brandName,omitempty"`
	Phrases   []PhraseTarget      `json:"phrases"`
	Models    []ModelCatalogEntry `json:"models"`
}

// PhraseTarget is a phrase forwarded to the engine.
type PhraseTarget struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

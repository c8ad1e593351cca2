package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"aivisibility/internal/analysis"
	"aivisibility/internal/config"
	"aivisibility/internal/models"
)

// PhraseStore is the storage the phrase handler needs.
type PhraseStore interface {
	DomainGetter
	ListSelectedKeywords(ctx context.Context, domainID uuid.UUID) ([]models.Keyword, error)
	UpsertIntentPhrase(ctx context.Context, p *models.IntentPhrase) error
	ListIntentPhrases(ctx context.Context, domainID uuid.UUID) ([]models.IntentPhrase, error)
	DeleteIntentPhrases(ctx context.Context, domainID uuid.UUID) error
}

// PhraseHandler handles intent phrase generation (wizard step 3).
type PhraseHandler struct {
	store  PhraseStore
	engine Engine
	yaml   *config.YAMLConfig
}

// NewPhraseHandler creates a new API phrase handler.
func NewPhraseHandler(store PhraseStore, engine Engine, yamlCfg *config.YAMLConfig) *PhraseHandler {
	return &PhraseHandler{store: store, engine: engine, yaml: yamlCfg}
}

// List returns the phrases stored for a domain.
func (h *PhraseHandler) List(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	phrases, err := h.store.ListIntentPhrases(c.Context(), domain.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch phrases")
	}
	return jsonSuccess(c, phrases)
}

// Generate asks the engine for phrases for the selected keywords and relays
// its event stream. Phrases from a previous run are replaced, and the AI
// results run against them are dropped.
func (h *PhraseHandler) Generate(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	if !h.engine.IsConfigured() {
		return jsonError(c, fiber.StatusServiceUnavailable, "analysis engine is not configured")
	}

	keywords, err := h.store.ListSelectedKeywords(c.Context(), domain.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch keywords")
	}
	if len(keywords) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "select at least one keyword first")
	}

	req := &models.PhraseGenerationRequest{
		Domain:               domain.Host,
		BrandName:            domain.BrandName,
		Keywords:             make([]models.KeywordTarget, 0, len(keywords)),
		MaxPhrasesPerKeyword: h.yaml.Wizard.MaxPhrasesPerKeyword,
	}
	keywordIDs := make(map[string]uuid.UUID, len(keywords))
	for _, k := range keywords {
		req.Keywords = append(req.Keywords, models.KeywordTarget{ID: k.ID.String(), Text: k.Text})
		keywordIDs[k.ID.String()] = k.ID
	}

	if err := h.store.DeleteIntentPhrases(c.Context(), domain.ID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to clear previous phrases")
	}

	run := func(ctx context.Context, handler analysis.Handler) error {
		return h.engine.GeneratePhrases(ctx, domain.ID, req, handler)
	}

	persist := func(ctx context.Context, ev analysis.Event) error {
		switch p := ev.Payload.(type) {
		case *models.PhraseEvent:
			phrase := &models.IntentPhrase{
				DomainID:       domain.ID,
				ExternalID:     p.ID,
				Keyword:        p.Keyword,
				Text:           p.Phrase,
				Intent:         p.Intent,
				RelevanceScore: p.RelevanceScore,
			}
			if id, ok := keywordIDs[p.KeywordID]; ok {
				phrase.KeywordID = &id
			}
			return h.store.UpsertIntentPhrase(ctx, phrase)
		}
		return nil
	}

	return relay(c, analysis.StreamPhrases, run, persist)
}

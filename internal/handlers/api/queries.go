package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"aivisibility/internal/analysis"
	"aivisibility/internal/config"
	"aivisibility/internal/models"
)

const (
	defaultCompetitorLimit = 20
	maxCompetitorLimit     = 100
)

// QueryStore is the storage the query handler needs.
type QueryStore interface {
	DomainGetter
	ListIntentPhrases(ctx context.Context, domainID uuid.UUID) ([]models.IntentPhrase, error)
	InsertAIQueryResult(ctx context.Context, r *models.AIQueryResult) error
	ListAIQueryResults(ctx context.Context, domainID uuid.UUID) ([]models.AIQueryResult, error)
	DeleteAIQueryResults(ctx context.Context, domainID uuid.UUID) error
	ListCompetitors(ctx context.Context, domainID uuid.UUID, host string, limit int) ([]models.CompetitorSummary, error)
	ProviderStats(ctx context.Context, domainID uuid.UUID) ([]models.ProviderStat, error)
	SaveRecommendations(ctx context.Context, id uuid.UUID, recommendations []string) error
}

// ReportNotifier is told when a query run completes.
type ReportNotifier interface {
	NotifyReportReady(user *models.User, domain *models.Domain, summary models.ReportSummary)
}

// QueryHandler handles AI query runs (wizard step 4) and their results.
type QueryHandler struct {
	store    QueryStore
	engine   Engine
	yaml     *config.YAMLConfig
	notifier ReportNotifier
}

// NewQueryHandler creates a new API query handler.
func NewQueryHandler(store QueryStore, engine Engine, yamlCfg *config.YAMLConfig, notifier ReportNotifier) *QueryHandler {
	return &QueryHandler{store: store, engine: engine, yaml: yamlCfg, notifier: notifier}
}

// Run sends a domain's phrases to the engine for the chosen models and
// relays the results as they arrive. Results from a previous run are
// replaced.
func (h *QueryHandler) Run(c fiber.Ctx) error {
	user, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	var body models.AIQueryRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	selected, err := selectModels(catalog(h.yaml), body.Models)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if !h.engine.IsConfigured() {
		return jsonError(c, fiber.StatusServiceUnavailable, "analysis engine is not configured")
	}

	phrases, err := h.store.ListIntentPhrases(c.Context(), domain.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch phrases")
	}
	if len(phrases) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "generate intent phrases first")
	}

	req := &models.QueryRunRequest{
		Domain:    domain.Host,
		BrandName: domain.BrandName,
		Phrases:   make([]models.PhraseTarget, 0, len(phrases)),
		Models:    selected,
	}
	for _, p := range phrases {
		req.Phrases = append(req.Phrases, models.PhraseTarget{ID: p.ExternalID, Text: p.Text})
	}

	if err := h.store.DeleteAIQueryResults(c.Context(), domain.ID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to clear previous results")
	}

	run := func(ctx context.Context, handler analysis.Handler) error {
		return h.engine.RunQueries(ctx, domain.ID, req, handler)
	}

	persist := func(ctx context.Context, ev analysis.Event) error {
		switch p := ev.Payload.(type) {
		case *models.ResultEvent:
			return h.store.InsertAIQueryResult(ctx, &models.AIQueryResult{
				DomainID:    domain.ID,
				PhraseID:    p.PhraseID,
				Phrase:      p.Phrase,
				Provider:    p.Provider,
				Model:       p.Model,
				Response:    p.Response,
				Presence:    p.Presence,
				Rank:        p.Rank,
				Competitors: p.Competitors,
			})
		case *models.CompleteEvent:
			return h.complete(ctx, user, domain, p)
		}
		return nil
	}

	return relay(c, analysis.StreamQueries, run, persist)
}

func (h *QueryHandler) complete(ctx context.Context, user *models.User, domain *models.Domain, ev *models.CompleteEvent) error {
	if ev.Recommendations != nil {
		if err := h.store.SaveRecommendations(ctx, domain.ID, ev.Recommendations); err != nil {
			return err
		}
	}

	if h.notifier == nil {
		return nil
	}

	stats, err := h.store.ProviderStats(ctx, domain.ID)
	if err != nil {
		slog.Error("failed to load provider stats for notification", "domain_id", domain.ID, "error", err)
		return nil
	}
	h.notifier.NotifyReportReady(user, domain, models.NewReportSummary(stats))
	return nil
}

// Results returns the stored results for a domain.
func (h *QueryHandler) Results(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	results, err := h.store.ListAIQueryResults(c.Context(), domain.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch results")
	}
	return jsonSuccess(c, results)
}

// Competitors returns the other domains named in a domain's results.
func (h *QueryHandler) Competitors(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	limit := defaultCompetitorLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxCompetitorLimit {
			return jsonError(c, fiber.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxCompetitorLimit))
		}
		limit = n
	}

	competitors, err := h.store.ListCompetitors(c.Context(), domain.ID, domain.Host, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch competitors")
	}
	return jsonSuccess(c, competitors)
}

// Package report assembles the data shown on a domain's visibility report.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aivisibility/internal/models"
)

// MaxCompetitors is how many competitors a report lists.
const MaxCompetitors = 20

// Source is the storage a report is read from.
type Source interface {
	ListSelectedKeywords(ctx context.Context, domainID uuid.UUID) ([]models.Keyword, error)
	ListIntentPhrases(ctx context.Context, domainID uuid.UUID) ([]models.IntentPhrase, error)
	ListAIQueryResults(ctx context.Context, domainID uuid.UUID) ([]models.AIQueryResult, error)
	ListCompetitors(ctx context.Context, domainID uuid.UUID, host string, limit int) ([]models.CompetitorSummary, error)
	ProviderStats(ctx context.Context, domainID uuid.UUID) ([]models.ProviderStat, error)
}

// Build collects a domain's stored keywords, phrases and results into a
// report. It only totals what the analysis engine already classified.
func Build(ctx context.Context, src Source, domain *models.Domain) (*models.ReportData, error) {
	keywords, err := src.ListSelectedKeywords(ctx, domain.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load keywords: %w", err)
	}

	phrases, err := src.ListIntentPhrases(ctx, domain.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load phrases: %w", err)
	}

	stats, err := src.ProviderStats(ctx, domain.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider stats: %w", err)
	}

	competitors, err := src.ListCompetitors(ctx, domain.ID, domain.Host, MaxCompetitors)
	if err != nil {
		return nil, fmt.Errorf("failed to load competitors: %w", err)
	}

	results, err := src.ListAIQueryResults(ctx, domain.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	recommendations := domain.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}

	return &models.ReportData{
		Domain:          *domain,
		GeneratedAt:     time.Now().UTC(),
		Summary:         models.NewReportSummary(stats),
		Keywords:        keywords,
		PhraseCount:     len(phrases),
		ProviderStats:   stats,
		Competitors:     competitors,
		Results:         results,
		Recommendations: recommendations,
	}, nil
}

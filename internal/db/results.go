package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"aivisibility/internal/models"
)

// InsertAIQueryResult stores one streamed model result.
func (d *DB) InsertAIQueryResult(ctx context.Context, r *models.AIQueryResult) error {
	if r.Competitors == nil {
		r.Competitors = []string{}
	}

	query := `
		INSERT INTO ai_query_results (domain_id, phrase_id, phrase, provider, model, response, presence, rank, competitors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := d.Pool.QueryRow(ctx, query,
		r.DomainID, r.PhraseID, r.Phrase, r.Provider, r.Model, r.Response, r.Presence, r.Rank, r.Competitors,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save query result: %w", err)
	}
	return nil
}

// ListAIQueryResults returns a domain's results in arrival order.
func (d *DB) ListAIQueryResults(ctx context.Context, domainID uuid.UUID) ([]models.AIQueryResult, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, domain_id, phrase_id, phrase, provider, model, response, presence, rank, competitors, created_at
		FROM ai_query_results WHERE domain_id = $1
		ORDER BY created_at ASC, id ASC
	`, domainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.AIQueryResult{}
	for rows.Next() {
		var r models.AIQueryResult
		if err := rows.Scan(
			&r.ID, &r.DomainID, &r.PhraseID, &r.Phrase, &r.Provider, &r.Model,
			&r.Response, &r.Presence, &r.Rank, &r.Competitors, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan query result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeleteAIQueryResults clears a domain's results before a new run.
func (d *DB) DeleteAIQueryResults(ctx context.Context, domainID uuid.UUID) error {
	_, err := d.Pool.Exec(ctx, `DELETE FROM ai_query_results WHERE domain_id = $1`, domainID)
	return err
}

// ListCompetitors counts the other domains that appeared in a domain's
// results, most mentioned first. The domain itself and its subdomains are
// excluded.
func (d *DB) ListCompetitors(ctx context.Context, domainID uuid.UUID, host string, limit int) ([]models.CompetitorSummary, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT LOWER(c.competitor) AS competitor,
			COUNT(*) AS mentions,
			COUNT(DISTINCT r.provider) AS providers,
			COUNT(DISTINCT r.phrase) AS phrases
		FROM ai_query_results r
		CROSS JOIN LATERAL UNNEST(r.competitors) AS c(competitor)
		WHERE r.domain_id = $1
			AND LOWER(c.competitor) <> $2
			AND LOWER(c.competitor) NOT LIKE '%.' || $2
		GROUP BY LOWER(c.competitor)
		ORDER BY mentions DESC, competitor ASC
		LIMIT $3
	`, domainID, host, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitors := []models.CompetitorSummary{}
	for rows.Next() {
		var c models.CompetitorSummary
		if err := rows.Scan(&c.Domain, &c.Mentions, &c.Providers, &c.Phrases); err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		competitors = append(competitors, c)
	}
	return competitors, rows.Err()
}

// ProviderStats counts presence outcomes per provider and model.
func (d *DB) ProviderStats(ctx context.Context, domainID uuid.UUID) ([]models.ProviderStat, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT provider, model,
			COUNT(*),
			COUNT(*) FILTER (WHERE presence = 'Featured'),
			COUNT(*) FILTER (WHERE presence = 'Mentioned'),
			COUNT(*) FILTER (WHERE presence = 'Not Found')
		FROM ai_query_results
		WHERE domain_id = $1
		GROUP BY provider, model
		ORDER BY provider, model
	`, domainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.ProviderStat{}
	for rows.Next() {
		var s models.ProviderStat
		if err := rows.Scan(&s.Provider, &s.Model, &s.Total, &s.Featured, &s.Mentioned, &s.NotFound); err != nil {
			return nil, fmt.Errorf("failed to scan provider stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

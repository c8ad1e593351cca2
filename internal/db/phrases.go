package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"aivisibility/internal/models"
)

// UpsertIntentPhrase inserts a phrase or, when the engine re-sends the same
// external ID, updates it in place.
func (d *DB) UpsertIntentPhrase(ctx context.Context, p *models.IntentPhrase) error {
	query := `
		INSERT INTO intent_phrases (domain_id, keyword_id, external_id, keyword, text, intent, relevance_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (domain_id, external_id) DO UPDATE SET
			keyword_id = COALESCE(EXCLUDED.keyword_id, intent_phrases.keyword_id),
			keyword = CASE WHEN EXCLUDED.keyword = '' THEN intent_phrases.keyword ELSE EXCLUDED.keyword END,
			text = EXCLUDED.text,
			intent = CASE WHEN EXCLUDED.intent = '' THEN intent_phrases.intent ELSE EXCLUDED.intent END,
			relevance_score = COALESCE(EXCLUDED.relevance_score, intent_phrases.relevance_score),
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		p.DomainID, p.KeywordID, p.ExternalID, p.Keyword, p.Text, p.Intent, p.RelevanceScore,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save intent phrase: %w", err)
	}
	return nil
}

// ListIntentPhrases returns a domain's phrases in generation order.
func (d *DB) ListIntentPhrases(ctx context.Context, domainID uuid.UUID) ([]models.IntentPhrase, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, domain_id, keyword_id, external_id, keyword, text, intent, relevance_score, created_at, updated_at
		FROM intent_phrases WHERE domain_id = $1
		ORDER BY created_at ASC, id ASC
	`, domainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phrases := []models.IntentPhrase{}
	for rows.Next() {
		var p models.IntentPhrase
		if err := rows.Scan(
			&p.ID, &p.DomainID, &p.KeywordID, &p.ExternalID, &p.Keyword, &p.Text,
			&p.Intent, &p.RelevanceScore, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan intent phrase: %w", err)
		}
		phrases = append(phrases, p)
	}
	return phrases, rows.Err()
}

// GetIntentPhraseByExternalID looks up a phrase by the engine's identifier.
func (d *DB) GetIntentPhraseByExternalID(ctx context.Context, domainID uuid.UUID, externalID string) (*models.IntentPhrase, error) {
	var p models.IntentPhrase
	err := d.Pool.QueryRow(ctx, `
		SELECT id, domain_id, keyword_id, external_id, keyword, text, intent, relevance_score, created_at, updated_at
		FROM intent_phrases WHERE domain_id = $1 AND external_id = $2
	`, domainID, externalID).Scan(
		&p.ID, &p.DomainID, &p.KeywordID, &p.ExternalID, &p.Keyword, &p.Text,
		&p.Intent, &p.RelevanceScore, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPhraseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteIntentPhrases removes every phrase for a domain before regeneration,
// together with the AI query results that were run against them.
func (d *DB) DeleteIntentPhrases(ctx context.Context, domainID uuid.UUID) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM ai_query_results WHERE domain_id = $1`, domainID); err != nil {
		return fmt.Errorf("failed to delete results: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM intent_phrases WHERE domain_id = $1`, domainID); err != nil {
		return fmt.Errorf("failed to delete phrases: %w", err)
	}

	return tx.Commit(ctx)
}

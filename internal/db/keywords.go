package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"aivisibility/internal/models"
)

const keywordColumns = `id, domain_id, text, source, selected, volume, difficulty, cpc, created_at`

func scanKeyword(row pgx.Row) (*models.Keyword, error) {
	var k models.Keyword
	err := row.Scan(&k.ID, &k.DomainID, &k.Text, &k.Source, &k.Selected, &k.Volume, &k.Difficulty, &k.CPC, &k.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (d *DB) queryKeywords(ctx context.Context, query string, args ...any) ([]models.Keyword, error) {
	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keywords := []models.Keyword{}
	for rows.Next() {
		k, err := scanKeyword(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		keywords = append(keywords, *k)
	}
	return keywords, rows.Err()
}

// CreateKeyword adds a keyword to a domain. Keyword text is unique per
// domain, ignoring case.
func (d *DB) CreateKeyword(ctx context.Context, k *models.Keyword) error {
	if k.Source == "" {
		k.Source = models.KeywordCustom
	}

	query := `
		INSERT INTO keywords (domain_id, text, source, selected, volume, difficulty, cpc)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := d.Pool.QueryRow(ctx, query, k.DomainID, k.Text, k.Source, k.Selected, k.Volume, k.Difficulty, k.CPC).
		Scan(&k.ID, &k.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateKeyword
		}
		return fmt.Errorf("failed to create keyword: %w", err)
	}
	return nil
}

// ListKeywords returns all keywords for a domain, selected first.
func (d *DB) ListKeywords(ctx context.Context, domainID uuid.UUID) ([]models.Keyword, error) {
	return d.queryKeywords(ctx, `
		SELECT `+keywordColumns+`
		FROM keywords WHERE domain_id = $1
		ORDER BY selected DESC, volume DESC NULLS LAST, text ASC
	`, domainID)
}

// ListSelectedKeywords returns the keywords chosen for phrase generation.
func (d *DB) ListSelectedKeywords(ctx context.Context, domainID uuid.UUID) ([]models.Keyword, error) {
	return d.queryKeywords(ctx, `
		SELECT `+keywordColumns+`
		FROM keywords WHERE domain_id = $1 AND selected
		ORDER BY volume DESC NULLS LAST, text ASC
	`, domainID)
}

// DeleteKeyword removes a keyword from a domain.
func (d *DB) DeleteKeyword(ctx context.Context, domainID, keywordID uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM keywords WHERE id = $1 AND domain_id = $2`, keywordID, domainID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKeywordNotFound
	}
	return nil
}

// SetKeywordSelection makes keywordIDs the domain's selected set. Every ID
// must belong to the domain; otherwise nothing changes.
func (d *DB) SetKeywordSelection(ctx context.Context, domainID uuid.UUID, keywordIDs []uuid.UUID) error {
	if keywordIDs == nil {
		keywordIDs = []uuid.UUID{}
	}

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var found int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM keywords WHERE domain_id = $1 AND id = ANY($2)
	`, domainID, keywordIDs).Scan(&found)
	if err != nil {
		return fmt.Errorf("failed to check keywords: %w", err)
	}
	if found != len(uniqueIDs(keywordIDs)) {
		return ErrKeywordNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE keywords SET selected = (id = ANY($2)) WHERE domain_id = $1
	`, domainID, keywordIDs)
	if err != nil {
		return fmt.Errorf("failed to update selection: %w", err)
	}

	return tx.Commit(ctx)
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

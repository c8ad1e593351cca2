package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"aivisibility/internal/models"
)

const domainColumns = `id, user_id, host, input_url, status, brand_name, recommendations, created_at, updated_at`

func scanDomain(row pgx.Row) (*models.Domain, error) {
	var d models.Domain
	err := row.Scan(
		&d.ID, &d.UserID, &d.Host, &d.InputURL, &d.Status, &d.BrandName,
		&d.Recommendations, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if d.Recommendations == nil {
		d.Recommendations = []string{}
	}
	return &d, nil
}

// CreateDomain inserts a domain for a user. Submitting a host the user has
// already submitted returns the existing row with created set to false.
func (d *DB) CreateDomain(ctx context.Context, domain *models.Domain) (created bool, err error) {
	if domain.Status == "" {
		domain.Status = models.DomainPending
	}

	query := `
		INSERT INTO domains (user_id, host, input_url, status, brand_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, host) DO NOTHING
		RETURNING ` + domainColumns

	row := d.Pool.QueryRow(ctx, query, domain.UserID, domain.Host, domain.InputURL, domain.Status, domain.BrandName)
	inserted, err := scanDomain(row)
	if err == nil {
		*domain = *inserted
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("failed to create domain: %w", err)
	}

	existing, err := d.getDomainByHost(ctx, domain.UserID, domain.Host)
	if err != nil {
		return false, err
	}
	*domain = *existing
	return false, nil
}

// GetDomainByID retrieves a domain by ID.
func (d *DB) GetDomainByID(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE id = $1`

	domain, err := scanDomain(d.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDomainNotFound
	}
	if err != nil {
		return nil, err
	}
	return domain, nil
}

func (d *DB) getDomainByHost(ctx context.Context, userID uuid.UUID, host string) (*models.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE user_id = $1 AND host = $2`

	domain, err := scanDomain(d.Pool.QueryRow(ctx, query, userID, host))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDomainNotFound
	}
	if err != nil {
		return nil, err
	}
	return domain, nil
}

// ListDomainsForUser returns a user's domains, newest first.
func (d *DB) ListDomainsForUser(ctx context.Context, userID uuid.UUID) ([]models.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	domains := []models.Domain{}
	for rows.Next() {
		domain, err := scanDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, *domain)
	}
	return domains, rows.Err()
}

// UpdateDomainStatus sets the domain's status.
func (d *DB) UpdateDomainStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !models.IsValidDomainStatus(status) {
		return fmt.Errorf("invalid domain status %q", status)
	}

	tag, err := d.Pool.Exec(ctx, `
		UPDATE domains SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDomainNotFound
	}
	return nil
}

// SaveRecommendations replaces the recommendations sent with a completed query run.
func (d *DB) SaveRecommendations(ctx context.Context, id uuid.UUID, recommendations []string) error {
	if recommendations == nil {
		recommendations = []string{}
	}

	tag, err := d.Pool.Exec(ctx, `
		UPDATE domains SET recommendations = $2, updated_at = NOW() WHERE id = $1
	`, id, recommendations)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDomainNotFound
	}
	return nil
}

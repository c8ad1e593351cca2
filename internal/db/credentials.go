package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"aivisibility/internal/models"
)

const credentialColumns = `id, user_id, provider, encrypted_refresh_token, scopes, status, last_checked_at, created_at, updated_at`

func scanCredential(row pgx.Row) (*models.Credential, error) {
	var c models.Credential
	err := row.Scan(
		&c.ID, &c.UserID, &c.Provider, &c.EncryptedRefreshToken, &c.Scopes,
		&c.Status, &c.LastCheckedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCredential stores an encrypted refresh token, replacing any previous
// token for the same user and provider and resetting its status to active.
func (d *DB) SaveCredential(ctx context.Context, c *models.Credential) error {
	if c.Scopes == nil {
		c.Scopes = []string{}
	}

	query := `
		INSERT INTO credentials (user_id, provider, encrypted_refresh_token, scopes, status)
		VALUES ($1, $2, $3, $4, 'active')
		ON CONFLICT (user_id, provider) DO UPDATE SET
			encrypted_refresh_token = EXCLUDED.encrypted_refresh_token,
			scopes = EXCLUDED.scopes,
			status = 'active',
			last_checked_at = NULL,
			updated_at = NOW()
		RETURNING ` + credentialColumns

	saved, err := scanCredential(d.Pool.QueryRow(ctx, query, c.UserID, c.Provider, c.EncryptedRefreshToken, c.Scopes))
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	*c = *saved
	return nil
}

// GetCredential returns the credential a user stored for a provider.
func (d *DB) GetCredential(ctx context.Context, userID uuid.UUID, provider string) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE user_id = $1 AND provider = $2`

	c, err := scanCredential(d.Pool.QueryRow(ctx, query, userID, provider))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCredentialsForUser returns every provider a user has connected.
func (d *DB) ListCredentialsForUser(ctx context.Context, userID uuid.UUID) ([]models.Credential, error) {
	return d.queryCredentials(ctx, `
		SELECT `+credentialColumns+` FROM credentials WHERE user_id = $1 ORDER BY provider
	`, userID)
}

// ListCredentialsForCheck returns active credentials not checked within
// maxAge, oldest check first.
func (d *DB) ListCredentialsForCheck(ctx context.Context, maxAge time.Duration, limit int) ([]models.Credential, error) {
	cutoff := time.Now().Add(-maxAge)
	return d.queryCredentials(ctx, `
		SELECT `+credentialColumns+` FROM credentials
		WHERE status = 'active' AND (last_checked_at IS NULL OR last_checked_at < $1)
		ORDER BY last_checked_at NULLS FIRST
		LIMIT $2
	`, cutoff, limit)
}

func (d *DB) queryCredentials(ctx context.Context, query string, args ...any) ([]models.Credential, error) {
	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	creds := []models.Credential{}
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, *c)
	}
	return creds, rows.Err()
}

// UpdateCredentialStatus records the outcome of a credential check.
func (d *DB) UpdateCredentialStatus(ctx context.Context, id uuid.UUID, status string) error {
	switch status {
	case models.CredentialActive, models.CredentialRevoked, models.CredentialUndecryptable:
	default:
		return fmt.Errorf("invalid credential status %q", status)
	}

	tag, err := d.Pool.Exec(ctx, `
		UPDATE credentials SET status = $2, last_checked_at = NOW(), updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// DeleteCredential disconnects a provider for a user.
func (d *DB) DeleteCredential(ctx context.Context, userID uuid.UUID, provider string) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM credentials WHERE user_id = $1 AND provider = $2`, userID, provider)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

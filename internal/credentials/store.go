// Package credentials stores provider refresh tokens encrypted at rest.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"aivisibility/internal/metrics"
	"aivisibility/internal/models"
	"aivisibility/internal/tokencrypt"
)

// ErrUnknownProvider is returned for a provider with no OAuth configuration.
var ErrUnknownProvider = errors.New("unknown credential provider")

// Repository is the storage the Store needs.
type Repository interface {
	SaveCredential(ctx context.Context, c *models.Credential) error
	GetCredential(ctx context.Context, userID uuid.UUID, provider string) (*models.Credential, error)
}

// Store encrypts refresh tokens on the way into the database and decrypts
// them on the way out. Cipher failures are returned as-is; there is no
// fallback key and no plaintext pass-through.
type Store struct {
	repo      Repository
	cipher    *tokencrypt.Cipher
	providers map[string]*oauth2.Config
}

func NewStore(repo Repository, cipher *tokencrypt.Cipher) *Store {
	return &Store{
		repo:      repo,
		cipher:    cipher,
		providers: make(map[string]*oauth2.Config),
	}
}

// RegisterProvider sets the OAuth configuration used to refresh a
// provider's tokens.
func (s *Store) RegisterProvider(provider string, cfg *oauth2.Config) {
	s.providers[provider] = cfg
}

// ProviderConfig returns the OAuth configuration for a provider.
func (s *Store) ProviderConfig(provider string) (*oauth2.Config, bool) {
	cfg, ok := s.providers[provider]
	return cfg, ok
}

// Save encrypts and stores a refresh token.
func (s *Store) Save(ctx context.Context, userID uuid.UUID, provider, refreshToken string, scopes []string) (*models.Credential, error) {
	encrypted, err := s.cipher.Encrypt(refreshToken)
	if err != nil {
		metrics.RecordCipherFailure("encrypt")
		return nil, err
	}

	c := &models.Credential{
		UserID:                userID,
		Provider:              provider,
		EncryptedRefreshToken: encrypted,
		Scopes:                scopes,
	}
	if err := s.repo.SaveCredential(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RefreshToken loads and decrypts a stored refresh token.
func (s *Store) RefreshToken(ctx context.Context, userID uuid.UUID, provider string) (string, error) {
	c, err := s.repo.GetCredential(ctx, userID, provider)
	if err != nil {
		return "", err
	}
	return s.Decrypt(c)
}

// Decrypt returns the plaintext refresh token of a loaded credential.
func (s *Store) Decrypt(c *models.Credential) (string, error) {
	token, err := s.cipher.Decrypt(c.EncryptedRefreshToken)
	if err != nil {
		metrics.RecordCipherFailure("decrypt")
		slog.Warn("stored credential could not be decrypted",
			"credential_id", c.ID, "provider", c.Provider, "error", err)
		return "", err
	}
	return token, nil
}

// TokenSource returns a token source that refreshes access tokens from the
// stored refresh token.
func (s *Store) TokenSource(ctx context.Context, userID uuid.UUID, provider string) (oauth2.TokenSource, error) {
	cfg, ok := s.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	refreshToken, err := s.RefreshToken(ctx, userID, provider)
	if err != nil {
		return nil, err
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}), nil
}

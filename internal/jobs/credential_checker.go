package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"aivisibility/internal/models"
)

// CredentialRepository is the storage the checker reads and updates.
type CredentialRepository interface {
	ListCredentialsForCheck(ctx context.Context, maxAge time.Duration, limit int) ([]models.Credential, error)
	UpdateCredentialStatus(ctx context.Context, id uuid.UUID, status string) error
}

// CredentialDecrypter turns stored credentials back into refresh tokens.
type CredentialDecrypter interface {
	Decrypt(c *models.Credential) (string, error)
	ProviderConfig(provider string) (*oauth2.Config, bool)
}

// RevocationNotifier is told when a credential stops working.
type RevocationNotifier interface {
	NotifyCredentialRevoked(ctx context.Context, cred *models.Credential)
}

// CredentialChecker periodically verifies that stored refresh tokens still
// decrypt and are still accepted by their provider.
type CredentialChecker struct {
	repo      CredentialRepository
	decrypter CredentialDecrypter
	notifier  RevocationNotifier
	interval  time.Duration
	maxAge    time.Duration
	batchSize int
	delay     time.Duration
}

// NewCredentialChecker creates a new credential checker. Credentials are
// rechecked once they are older than interval.
func NewCredentialChecker(repo CredentialRepository, decrypter CredentialDecrypter, notifier RevocationNotifier, interval time.Duration) *CredentialChecker {
	return &CredentialChecker{
		repo:      repo,
		decrypter: decrypter,
		notifier:  notifier,
		interval:  interval,
		maxAge:    interval,
		batchSize: 50,
		delay:     500 * time.Millisecond,
	}
}

// Start begins the background check loop. It returns when ctx is cancelled.
func (c *CredentialChecker) Start(ctx context.Context) {
	slog.Info("credential checker started", "interval", c.interval)

	c.checkAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("credential checker stopped")
			return
		case <-ticker.C:
			c.checkAll(ctx)
		}
	}
}

// checkAll checks every credential that is due.
func (c *CredentialChecker) checkAll(ctx context.Context) {
	creds, err := c.repo.ListCredentialsForCheck(ctx, c.maxAge, c.batchSize)
	if err != nil {
		slog.Error("credential checker: failed to list credentials", "error", err)
		return
	}

	if len(creds) == 0 {
		return
	}

	slog.Info("credential checker: checking credentials", "count", len(creds))

	for i := range creds {
		select {
		case <-ctx.Done():
			return
		default:
		}

		cred := &creds[i]
		status, ok := c.check(ctx, cred)
		if !ok {
			continue
		}

		if err := c.repo.UpdateCredentialStatus(ctx, cred.ID, status); err != nil {
			slog.Error("credential checker: failed to update status", "credential_id", cred.ID, "error", err)
			continue
		}

		if status != models.CredentialActive {
			slog.Warn("credential checker: credential disabled", "credential_id", cred.ID, "provider", cred.Provider, "status", status)
			if c.notifier != nil {
				c.notifier.NotifyCredentialRevoked(ctx, cred)
			}
		}

		if c.delay > 0 {
			time.Sleep(c.delay)
		}
	}
}

// check returns the credential's new status. ok is false when the outcome is
// inconclusive, such as a network failure, and the credential should be
// retried on the next run.
func (c *CredentialChecker) check(ctx context.Context, cred *models.Credential) (status string, ok bool) {
	refreshToken, err := c.decrypter.Decrypt(cred)
	if err != nil {
		return models.CredentialUndecryptable, true
	}

	cfg, found := c.decrypter.ProviderConfig(cred.Provider)
	if !found {
		return models.CredentialActive, true
	}

	_, err = cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err == nil {
		return models.CredentialActive, true
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return models.CredentialRevoked, true
	}

	slog.Warn("credential checker: provider unreachable", "credential_id", cred.ID, "provider", cred.Provider, "error", err)
	return "", false
}

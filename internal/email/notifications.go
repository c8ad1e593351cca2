package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"aivisibility/internal/config"
	"aivisibility/internal/models"
)

// UserGetter loads the recipient of a notification.
type UserGetter interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// Notifier sends email notifications for various events.
type Notifier struct {
	service   *Service
	templates *Templates
	cfg       *config.Config
	db        UserGetter
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config, db UserGetter) *Notifier {
	return &Notifier{
		service:   NewService(cfg),
		templates: NewTemplates(cfg),
		cfg:       cfg,
		db:        db,
	}
}

// IsEnabled returns true if notifications will be sent.
func (n *Notifier) IsEnabled() bool {
	return n != nil && n.service.IsEnabled()
}

// NotifyReportReady tells the domain owner that the report can be viewed.
func (n *Notifier) NotifyReportReady(user *models.User, domain *models.Domain, summary models.ReportSummary) {
	if !n.IsEnabled() || user == nil || user.Email == "" {
		return
	}

	subject, htmlBody, textBody := n.templates.ReportReady(domain, summary)
	n.service.SendAsync([]string{user.Email}, subject, htmlBody, textBody)
}

// NotifyCredentialRevoked tells a user that a provider connection must be
// reconnected.
func (n *Notifier) NotifyCredentialRevoked(ctx context.Context, cred *models.Credential) {
	if !n.IsEnabled() {
		return
	}

	user, err := n.db.GetUserByID(ctx, cred.UserID)
	if err != nil {
		slog.Error("failed to load credential owner", "credential_id", cred.ID, "error", err)
		return
	}
	if user.Email == "" {
		return
	}

	subject, htmlBody, textBody := n.templates.CredentialRevoked(user, cred.Provider)
	n.service.SendAsync([]string{user.Email}, subject, htmlBody, textBody)
}

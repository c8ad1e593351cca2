package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"aivisibility/internal/config"
	"aivisibility/internal/models"
)

// ProfileStore is the storage the profile page needs.
type ProfileStore interface {
	ListDomainsForUser(ctx context.Context, userID uuid.UUID) ([]models.Domain, error)
	ListCredentialsForUser(ctx context.Context, userID uuid.UUID) ([]models.Credential, error)
}

// ProfileHandler handles the signed-in user's overview page.
type ProfileHandler struct {
	store ProfileStore
	cfg   *config.Config
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(store ProfileStore, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{store: store, cfg: cfg}
}

// Show renders the user's domains and provider connections.
func (h *ProfileHandler) Show(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect().To("/auth/login")
	}

	domains, err := h.store.ListDomainsForUser(c.Context(), user.ID)
	if err != nil {
		return err
	}

	creds, err := h.store.ListCredentialsForUser(c.Context(), user.ID)
	if err != nil {
		return err
	}

	searchConsole := false
	for _, cred := range creds {
		if cred.Provider == models.ProviderSearchConsole && cred.Status == models.CredentialActive {
			searchConsole = true
		}
	}

	return c.Render("profile", page(h.cfg, user, "Your domains", fiber.Map{
		"Domains":       domains,
		"Credentials":   creds,
		"SearchConsole": searchConsole,
	}))
}

package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"aivisibility/internal/db"
	"aivisibility/internal/models"
)

// CredentialStore is the storage the credential handler needs.
type CredentialStore interface {
	ListCredentialsForUser(ctx context.Context, userID uuid.UUID) ([]models.Credential, error)
	DeleteCredential(ctx context.Context, userID uuid.UUID, provider string) error
}

// CredentialHandler lists and disconnects provider connections. Token
// material never leaves the server.
type CredentialHandler struct {
	store CredentialStore
}

// NewCredentialHandler creates a new API credential handler.
func NewCredentialHandler(store CredentialStore) *CredentialHandler {
	return &CredentialHandler{store: store}
}

// List returns the current user's provider connections.
func (h *CredentialHandler) List(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	creds, err := h.store.ListCredentialsForUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch credentials")
	}
	return jsonSuccess(c, creds)
}

// Delete disconnects a provider.
func (h *CredentialHandler) Delete(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	provider := c.Params("provider")
	if err := h.store.DeleteCredential(c.Context(), user.ID, provider); err != nil {
		if errors.Is(err, db.ErrCredentialNotFound) {
			return jsonError(c, fiber.StatusNotFound, "credential not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete credential")
	}
	return jsonSuccess(c, fiber.Map{"deleted": provider})
}

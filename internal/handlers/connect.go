package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"aivisibility/internal/config"
	"aivisibility/internal/models"
)

// CredentialSaver encrypts and stores a provider refresh token.
type CredentialSaver interface {
	Save(ctx context.Context, userID uuid.UUID, provider, refreshToken string, scopes []string) (*models.Credential, error)
}

// ConnectHandler links a signed-in user's account at a data provider. Only
// the refresh token is kept, and only encrypted.
type ConnectHandler struct {
	provider     string
	oauth2Config *oauth2.Config
	creds        CredentialSaver
}

// SearchConsoleConfig builds the OAuth client for search console access.
func SearchConsoleConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GSCClientID,
		ClientSecret: cfg.GSCClientSecret,
		RedirectURL:  cfg.GSCRedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.GSCAuthURL,
			TokenURL: cfg.GSCTokenURL,
		},
		Scopes: cfg.GSCScopes,
	}
}

// NewConnectHandler creates a connect handler for provider.
func NewConnectHandler(provider string, oauth2Config *oauth2.Config, creds CredentialSaver) *ConnectHandler {
	return &ConnectHandler{provider: provider, oauth2Config: oauth2Config, creds: creds}
}

func (h *ConnectHandler) stateKey() string {
	return "connect_state_" + h.provider
}

// Connect sends the user to the provider's consent screen. Consent is always
// prompted so the provider issues a refresh token.
func (h *ConnectHandler) Connect(c fiber.Ctx) error {
	if h.oauth2Config.ClientID == "" {
		return fiber.NewError(fiber.StatusServiceUnavailable, "this provider is not configured")
	}

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	state := generateState()
	sess.Set(h.stateKey(), state)

	url := h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	return c.Redirect().To(url)
}

// Callback stores the refresh token the provider returned.
func (h *ConnectHandler) Callback(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	if !checkState(sess, h.stateKey(), c.Query("state")) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}

	if reason := c.Query("error"); reason != "" {
		return fiber.NewError(fiber.StatusBadRequest, "access was not granted: "+reason)
	}

	token, err := h.oauth2Config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		slog.Warn("provider code exchange failed", "provider", h.provider, "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "failed to exchange code")
	}

	if token.RefreshToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "the provider did not return a refresh token; remove this app's access from your account and connect again")
	}

	if _, err := h.creds.Save(c.Context(), user.ID, h.provider, token.RefreshToken, h.oauth2Config.Scopes); err != nil {
		slog.Error("failed to store provider credential", "provider", h.provider, "user_id", user.ID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store credential")
	}

	slog.Info("provider connected", "provider", h.provider, "user_id", user.ID)
	return c.Redirect().To("/")
}

package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"aivisibility/internal/models"
)

// SessionUserKey is the session key holding the signed-in user's OIDC subject.
const SessionUserKey = "user_sub"

// SessionRedirectKey is the session key holding the page to return to after login.
const SessionRedirectKey = "redirect_after_login"

// UserLookup resolves a session subject to a user.
type UserLookup interface {
	GetUserBySub(ctx context.Context, sub string) (*models.User, error)
}

// AuthMiddleware handles user authentication via sessions.
type AuthMiddleware struct {
	users UserLookup
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// RequireAuth ensures the user is authenticated. API requests get a JSON 401;
// page requests are sent to the login flow and brought back afterwards.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user, sess := m.loadUser(c)
	if user != nil {
		c.Locals("user", user)
		return c.Next()
	}

	if isAPIRequest(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "authentication required",
		})
	}

	if sess != nil && c.Method() == fiber.MethodGet {
		sess.Set(SessionRedirectKey, c.OriginalURL())
	}
	return c.Redirect().To("/auth/login")
}

// OptionalAuth loads the user if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if user, _ := m.loadUser(c); user != nil {
		c.Locals("user", user)
	}
	return c.Next()
}

// loadUser returns the session's user, or nil. A session naming a user that
// no longer exists is destroyed.
func (m *AuthMiddleware) loadUser(c fiber.Ctx) (*models.User, *session.Middleware) {
	sess := session.FromContext(c)
	if sess == nil {
		return nil, nil
	}

	sub, ok := sess.Get(SessionUserKey).(string)
	if !ok || sub == "" {
		return nil, sess
	}

	user, err := m.users.GetUserBySub(c.Context(), sub)
	if err != nil {
		sess.Destroy()
		return nil, nil
	}
	return user, sess
}

func isAPIRequest(c fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

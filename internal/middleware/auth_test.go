package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"aivisibility/internal/models"
	"aivisibility/internal/testutil"
)

// newTestApp mounts a login shortcut that puts sub in the session, so later
// requests can replay the session cookie.
func newTestApp(t *testing.T, users UserLookup) *fiber.App {
	t.Helper()

	app := fiber.New()
	sessionMiddleware, _ := session.NewWithStore(session.Config{CookieHTTPOnly: true})
	app.Use(sessionMiddleware)

	app.Post("/test-login/:sub", func(c fiber.Ctx) error {
		session.FromContext(c).Set(SessionUserKey, c.Params("sub"))
		return c.SendString("ok")
	})

	auth := NewAuthMiddleware(users)
	whoami := func(c fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(user.Sub)
	}
	app.Get("/api/whoami", auth.RequireAuth, whoami)
	app.Get("/wizard", auth.RequireAuth, whoami)
	app.Get("/optional", auth.OptionalAuth, whoami)
	app.Get("/redirect-target", func(c fiber.Ctx) error {
		target, _ := session.FromContext(c).Get(SessionRedirectKey).(string)
		return c.SendString(target)
	})
	return app
}

func login(t *testing.T, app *fiber.App, sub string) []*http.Cookie {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/test-login/"+sub, nil))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return resp.Cookies()
}

func get(t *testing.T, app *fiber.App, path string, cookies []*http.Cookie) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestRequireAuth(t *testing.T) {
	store := testutil.NewMemStore()
	testutil.CreateTestUser(t, store, "alice")
	app := newTestApp(t, store)

	aliceCookies := login(t, app, "alice")
	ghostCookies := login(t, app, "ghost")

	tests := []struct {
		name         string
		path         string
		cookies      []*http.Cookie
		wantStatus   int
		wantBody     string
		wantLocation string
	}{
		{"api signed in", "/api/whoami", aliceCookies, fiber.StatusOK, "alice", ""},
		{"page signed in", "/wizard", aliceCookies, fiber.StatusOK, "alice", ""},
		{"api anonymous", "/api/whoami", nil, fiber.StatusUnauthorized, "", ""},
		{"page anonymous", "/wizard", nil, fiber.StatusSeeOther, "", "/auth/login"},
		{"api unknown user", "/api/whoami", ghostCookies, fiber.StatusUnauthorized, "", ""},
		{"optional signed in", "/optional", aliceCookies, fiber.StatusOK, "alice", ""},
		{"optional anonymous", "/optional", nil, fiber.StatusOK, "anonymous", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, app, tt.path, tt.cookies)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantBody != "" && body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if tt.wantLocation != "" && resp.Header.Get("Location") != tt.wantLocation {
				t.Errorf("Location = %q, want %q", resp.Header.Get("Location"), tt.wantLocation)
			}
		})
	}
}

func TestRequireAuth_RemembersPage(t *testing.T) {
	app := newTestApp(t, testutil.NewMemStore())

	resp, _ := get(t, app, "/wizard?step=3", nil)
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set on redirect")
	}

	_, body := get(t, app, "/redirect-target", cookies)
	if body != "/wizard?step=3" {
		t.Errorf("redirect target = %q, want /wizard?step=3", body)
	}
}

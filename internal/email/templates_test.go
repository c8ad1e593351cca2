package email

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"aivisibility/internal/config"
	"aivisibility/internal/models"
)

func testTemplates() *Templates {
	return NewTemplates(&config.Config{SiteTitle: "AI Visibility", BaseURL: "https://aivis.example.com"})
}

func TestTemplates_BaseHTML_EscapesTitle(t *testing.T) {
	out := testTemplates().baseHTML("<script>", "<p>body</p>")
	if strings.Contains(out, "<title><script>") {
		t.Error("title should be escaped")
	}
	if !strings.Contains(out, "<p>body</p>") {
		t.Error("content should be included verbatim")
	}
	if !strings.Contains(out, "https://aivis.example.com") {
		t.Error("footer should link to the base URL")
	}
}

func TestTemplates_ReportReady(t *testing.T) {
	domain := &models.Domain{ID: uuid.MustParse("11111111-2222-3333-4444-555555555555"), Host: "acme.com"}
	summary := models.ReportSummary{TotalQueries: 8, Featured: 2, Mentioned: 4, NotFound: 2, VisibilityRate: 0.75}

	subject, htmlBody, textBody := testTemplates().ReportReady(domain, summary)

	if subject != "[AI Visibility] Your AI visibility report for acme.com is ready" {
		t.Errorf("subject = %q", subject)
	}
	reportURL := "https://aivis.example.com/report/11111111-2222-3333-4444-555555555555"
	for _, body := range []string{htmlBody, textBody} {
		if !strings.Contains(body, reportURL) {
			t.Errorf("body missing report URL:\n%s", body)
		}
		if !strings.Contains(body, "75%") {
			t.Errorf("body missing visibility rate:\n%s", body)
		}
	}
	if !strings.Contains(textBody, "Featured: 2") || !strings.Contains(textBody, "Not found: 2") {
		t.Errorf("text body missing counts:\n%s", textBody)
	}
}

func TestTemplates_ReportReady_EscapesHost(t *testing.T) {
	domain := &models.Domain{ID: uuid.New(), Host: "<b>acme</b>.com"}
	_, htmlBody, _ := testTemplates().ReportReady(domain, models.ReportSummary{})
	if strings.Contains(htmlBody, "<b>acme</b>") {
		t.Error("host should be HTML escaped")
	}
}

func TestTemplates_CredentialRevoked(t *testing.T) {
	tests := []struct {
		name         string
		user         *models.User
		provider     string
		wantGreeting string
		wantName     string
	}{
		{"named user", &models.User{Name: "Dana"}, models.ProviderSearchConsole, "Hello Dana", "Search Console"},
		{"unnamed user", &models.User{}, models.ProviderSearchConsole, "Hello,", "Search Console"},
		{"other provider", &models.User{}, "analytics", "Hello,", "analytics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, htmlBody, textBody := testTemplates().CredentialRevoked(tt.user, tt.provider)
			if !strings.Contains(subject, tt.wantName) {
				t.Errorf("subject = %q, want provider name %q", subject, tt.wantName)
			}
			if !strings.Contains(textBody, tt.wantGreeting) {
				t.Errorf("text body missing greeting %q:\n%s", tt.wantGreeting, textBody)
			}
			if !strings.Contains(htmlBody, "https://aivis.example.com/auth/gsc/connect") {
				t.Error("html body missing reconnect link")
			}
		})
	}
}

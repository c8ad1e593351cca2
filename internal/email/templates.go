package email

import (
	"fmt"
	"html"
	"strings"

	"aivisibility/internal/config"
	"aivisibility/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #4f46e5; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .button { display: inline-block; background: #4f46e5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .success { color: #059669; }
        .warning { color: #d97706; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// ReportReady generates the email sent when a domain's AI query run finishes.
func (t *Templates) ReportReady(domain *models.Domain, summary models.ReportSummary) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Your AI visibility report for %s is ready", t.cfg.SiteTitle, domain.Host)
	reportURL := fmt.Sprintf("%s/report/%s", t.cfg.BaseURL, domain.ID)
	rate := fmt.Sprintf("%.0f%%", summary.VisibilityRate*100)

	content := fmt.Sprintf(`
        <p>The AI query run for <strong>%s</strong> has finished.</p>

        <div class="info-box">
            <p><span class="label">Queries:</span> %d</p>
            <p><span class="label">Featured:</span> <span class="success">%d</span></p>
            <p><span class="label">Mentioned:</span> %d</p>
            <p><span class="label">Not found:</span> <span class="warning">%d</span></p>
            <p><span class="label">Visibility:</span> %s</p>
        </div>

        <p><a href="%s" class="button">View report</a></p>`,
		html.EscapeString(domain.Host),
		summary.TotalQueries, summary.Featured, summary.Mentioned, summary.NotFound,
		rate, reportURL,
	)
	htmlBody = t.baseHTML("Report ready", content)

	var text strings.Builder
	fmt.Fprintf(&text, "The AI query run for %s has finished.\n\n", domain.Host)
	fmt.Fprintf(&text, "Queries: %d\n", summary.TotalQueries)
	fmt.Fprintf(&text, "Featured: %d\n", summary.Featured)
	fmt.Fprintf(&text, "Mentioned: %d\n", summary.Mentioned)
	fmt.Fprintf(&text, "Not found: %d\n", summary.NotFound)
	fmt.Fprintf(&text, "Visibility: %s\n\n", rate)
	fmt.Fprintf(&text, "View report: %s\n", reportURL)
	textBody = text.String()

	return subject, htmlBody, textBody
}

// CredentialRevoked generates the email sent when a stored provider
// connection stops working and must be reconnected.
func (t *Templates) CredentialRevoked(user *models.User, provider string) (subject, htmlBody, textBody string) {
	name := providerDisplayName(provider)
	subject = fmt.Sprintf("[%s] Reconnect %s", t.cfg.SiteTitle, name)
	connectURL := t.cfg.BaseURL + "/auth/gsc/connect"

	greeting := "Hello"
	if user.Name != "" {
		greeting = "Hello " + user.Name
	}

	content := fmt.Sprintf(`
        <p>%s,</p>
        <p>Your <strong>%s</strong> connection is no longer valid. Keyword data from this source will not be available until you reconnect.</p>
        <p><a href="%s" class="button">Reconnect</a></p>`,
		html.EscapeString(greeting), html.EscapeString(name), connectURL,
	)
	htmlBody = t.baseHTML("Connection expired", content)

	textBody = fmt.Sprintf("%s,\n\nYour %s connection is no longer valid. Keyword data from this source will not be available until you reconnect.\n\nReconnect: %s\n",
		greeting, name, connectURL)

	return subject, htmlBody, textBody
}

func providerDisplayName(provider string) string {
	if provider == models.ProviderSearchConsole {
		return "Search Console"
	}
	return provider
}

package email

import (
	"strings"
	"testing"

	"aivisibility/internal/config"
)

func TestNewService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.Config
		wantEnabled bool
	}{
		{
			name: "enabled when all SMTP settings configured",
			cfg: &config.Config{
				SMTPEnabled: true,
				SMTPHost:    "smtp.example.com",
				SMTPPort:    587,
				SMTPFrom:    "noreply@example.com",
			},
			wantEnabled: true,
		},
		{
			name: "disabled when SMTPEnabled is false",
			cfg: &config.Config{
				SMTPHost: "smtp.example.com",
				SMTPPort: 587,
				SMTPFrom: "noreply@example.com",
			},
			wantEnabled: false,
		},
		{
			name: "disabled when SMTPHost is empty",
			cfg: &config.Config{
				SMTPEnabled: true,
				SMTPPort:    587,
				SMTPFrom:    "noreply@example.com",
			},
			wantEnabled: false,
		},
		{
			name: "disabled when SMTPFrom is empty",
			cfg: &config.Config{
				SMTPEnabled: true,
				SMTPHost:    "smtp.example.com",
				SMTPPort:    587,
			},
			wantEnabled: false,
		},
		{
			name:        "disabled with empty config",
			cfg:         &config.Config{},
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.cfg)
			if svc.IsEnabled() != tt.wantEnabled {
				t.Errorf("IsEnabled() = %v, want %v", svc.IsEnabled(), tt.wantEnabled)
			}
		})
	}
}

func TestService_Send_Disabled(t *testing.T) {
	svc := NewService(&config.Config{})
	if err := svc.Send([]string{"test@example.com"}, "Test", "<p>HTML</p>", "Text"); err != nil {
		t.Errorf("Send() when disabled should return nil, got %v", err)
	}
}

func TestService_Send_NoRecipients(t *testing.T) {
	svc := NewService(&config.Config{
		SMTPEnabled: true,
		SMTPHost:    "smtp.invalid",
		SMTPPort:    587,
		SMTPFrom:    "noreply@example.com",
	})
	if err := svc.Send(nil, "Test", "<p>HTML</p>", "Text"); err != nil {
		t.Errorf("Send() with no recipients should return nil, got %v", err)
	}
}

func TestService_From(t *testing.T) {
	tests := []struct {
		name     string
		fromName string
		want     string
	}{
		{"with display name", "AI Visibility", "AI Visibility <noreply@example.com>"},
		{"without display name", "", "noreply@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&config.Config{SMTPFrom: "noreply@example.com", SMTPFromName: tt.fromName})
			if got := svc.from(); got != tt.want {
				t.Errorf("from() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestService_BuildMessage(t *testing.T) {
	svc := NewService(&config.Config{
		SMTPEnabled:  true,
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPFrom:     "noreply@example.com",
		SMTPFromName: "AI Visibility",
	})

	tests := []struct {
		name     string
		htmlBody string
		textBody string
		want     []string
		notWant  []string
	}{
		{
			name:     "multipart message",
			htmlBody: "<p>HTML content</p>",
			textBody: "Text content",
			want:     []string{"multipart/alternative", "text/plain", "text/html"},
		},
		{
			name:     "HTML only",
			htmlBody: "<p>HTML content</p>",
			want:     []string{"text/html"},
			notWant:  []string{"text/plain"},
		},
		{
			name:     "text only",
			textBody: "Text content",
			want:     []string{"text/plain"},
			notWant:  []string{"text/html"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := svc.buildMessage([]string{"owner@example.com"}, "Report ready", tt.htmlBody, tt.textBody)
			if msg.From != "AI Visibility <noreply@example.com>" {
				t.Errorf("From = %q", msg.From)
			}

			raw, err := msg.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			out := string(raw)
			if !strings.Contains(out, "Subject: Report ready") {
				t.Errorf("message missing subject:\n%s", out)
			}
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("message missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("message should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestService_SendAsync_Disabled(t *testing.T) {
	svc := NewService(&config.Config{})
	svc.SendAsync([]string{"test@example.com"}, "Test", "<p>HTML</p>", "Text")
}

package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_DevFallbackKey(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("TOKEN_ENCRYPTION_KEY", "")

	cfg := Load()
	if cfg.TokenEncryptionKey != DevTokenEncryptionKey {
		t.Errorf("TokenEncryptionKey = %q, want development fallback", cfg.TokenEncryptionKey)
	}
}

func TestLoad_ProductionHasNoFallbackKey(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("TOKEN_ENCRYPTION_KEY", "")

	cfg := Load()
	if cfg.TokenEncryptionKey != "" {
		t.Errorf("TokenEncryptionKey = %q, want empty outside development", cfg.TokenEncryptionKey)
	}
}

func TestLoad_EngineUnsetByDefault(t *testing.T) {
	t.Setenv("ANALYSIS_ENGINE_URL", "")

	cfg := Load()
	if cfg.AnalysisEngineURL != "" {
		t.Errorf("AnalysisEngineURL = %q, want empty when unset", cfg.AnalysisEngineURL)
	}
}

func TestLoad_ParsesValues(t *testing.T) {
	t.Setenv("ANALYSIS_ENGINE_URL", "http://engine:9000/")
	t.Setenv("ANALYSIS_STREAM_TIMEOUT", "90s")
	t.Setenv("CREDENTIAL_CHECK_INTERVAL", "not-a-duration")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("GSC_SCOPES", "scope-a, scope-b")

	cfg := Load()

	if cfg.AnalysisEngineURL != "http://engine:9000" {
		t.Errorf("AnalysisEngineURL = %q, want trailing slash trimmed", cfg.AnalysisEngineURL)
	}
	if cfg.AnalysisStreamTimeout != 90*time.Second {
		t.Errorf("AnalysisStreamTimeout = %v, want 90s", cfg.AnalysisStreamTimeout)
	}
	if cfg.CredentialCheckInterval != 6*time.Hour {
		t.Errorf("CredentialCheckInterval = %v, want default 6h", cfg.CredentialCheckInterval)
	}
	if cfg.SMTPPort != 2525 {
		t.Errorf("SMTPPort = %d, want 2525", cfg.SMTPPort)
	}
	if diff := cmp.Diff([]string{"scope-a", "scope-b"}, cfg.GSCScopes); diff != "" {
		t.Errorf("GSCScopes mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	longSecret := "a-session-secret-that-is-long-enough"

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "development with fallback key",
			cfg:     Config{Env: "development", TokenEncryptionKey: DevTokenEncryptionKey, OIDCIssuer: "https://idp"},
			wantErr: false,
		},
		{
			name:    "production with fallback key",
			cfg:     Config{Env: "production", TokenEncryptionKey: DevTokenEncryptionKey, SessionSecret: longSecret, OIDCIssuer: "https://idp"},
			wantErr: true,
		},
		{
			name:    "production without key",
			cfg:     Config{Env: "production", SessionSecret: longSecret, OIDCIssuer: "https://idp"},
			wantErr: true,
		},
		{
			name:    "production with explicit key",
			cfg:     Config{Env: "production", TokenEncryptionKey: "prod-key", SessionSecret: longSecret, OIDCIssuer: "https://idp"},
			wantErr: false,
		},
		{
			name:    "production with short session secret",
			cfg:     Config{Env: "production", TokenEncryptionKey: "prod-key", SessionSecret: "short", OIDCIssuer: "https://idp"},
			wantErr: true,
		},
		{
			name:    "missing issuer",
			cfg:     Config{Env: "development", TokenEncryptionKey: "k"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsGSCEnabled(t *testing.T) {
	if (&Config{GSCClientID: "id"}).IsGSCEnabled() {
		t.Error("IsGSCEnabled() = true without client secret")
	}
	if !(&Config{GSCClientID: "id", GSCClientSecret: "secret"}).IsGSCEnabled() {
		t.Error("IsGSCEnabled() = false with client id and secret")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseYAMLConfig(t *testing.T) {
	doc := []byte(`
models:
  - provider: openai
    model: gpt-4o
    display_name: ChatGPT
    enabled: true
  - provider: perplexity
    model: sonar
    enabled: false
wizard:
  max_selected_keywords: 3
`)

	cfg, err := ParseYAMLConfig(doc)
	if err != nil {
		t.Fatalf("ParseYAMLConfig() error = %v", err)
	}

	want := []ModelConfig{
		{Provider: "openai", Model: "gpt-4o", DisplayName: "ChatGPT", Enabled: true},
	}
	if diff := cmp.Diff(want, cfg.EnabledModels()); diff != "" {
		t.Errorf("EnabledModels() mismatch (-want +got):\n%s", diff)
	}

	if got := cfg.GetModel("perplexity", "sonar"); got == nil || got.DisplayName != "sonar" {
		t.Errorf("GetModel() = %+v, want display name defaulted to model", got)
	}
	if cfg.Wizard.MaxSelectedKeywords != 3 {
		t.Errorf("MaxSelectedKeywords = %d, want 3", cfg.Wizard.MaxSelectedKeywords)
	}
	if cfg.Wizard.MaxPhrasesPerKeyword != 5 {
		t.Errorf("MaxPhrasesPerKeyword = %d, want default 5", cfg.Wizard.MaxPhrasesPerKeyword)
	}
}

func TestParseYAMLConfig_MissingModelFields(t *testing.T) {
	_, err := ParseYAMLConfig([]byte("models:\n  - provider: openai\n"))
	if err == nil {
		t.Error("ParseYAMLConfig() should reject a model without a name")
	}
}

func TestLoadYAMLConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := LoadYAMLConfig()
	if err != nil {
		t.Fatalf("LoadYAMLConfig() error = %v", err)
	}
	if len(cfg.EnabledModels()) != 4 {
		t.Errorf("EnabledModels() = %d models, want the 4 defaults", len(cfg.EnabledModels()))
	}
}

func TestLoadYAMLConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("models:\n  - provider: google\n    model: gemini-pro\n    enabled: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadYAMLConfig()
	if err != nil {
		t.Fatalf("LoadYAMLConfig() error = %v", err)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].Provider != "google" {
		t.Errorf("Models = %+v, want the single google model", cfg.Models)
	}
}

func TestYAMLConfig_NilSafe(t *testing.T) {
	var cfg *YAMLConfig
	if cfg.EnabledModels() != nil || cfg.GetModel("a", "b") != nil {
		t.Error("nil YAMLConfig accessors should return nil")
	}
}

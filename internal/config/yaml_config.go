package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// The model catalog and wizard limits are easier to manage in YAML than env vars.
type YAMLConfig struct {
	Models []ModelConfig `yaml:"models"`
	Wizard WizardConfig  `yaml:"wizard"`
}

// ModelConfig defines one AI model the engine is asked to query.
type ModelConfig struct {
	Provider    string `yaml:"provider"` // e.g. "openai", "anthropic", "google", "perplexity"
	Model       string `yaml:"model"`
	DisplayName string `yaml:"display_name"`
	Enabled     bool   `yaml:"enabled"`
}

// WizardConfig holds limits applied to the wizard steps.
type WizardConfig struct {
	MaxSelectedKeywords  int `yaml:"max_selected_keywords"`
	MaxPhrasesPerKeyword int `yaml:"max_phrases_per_keyword"`
}

// DefaultYAMLConfig is used when no config file exists.
func DefaultYAMLConfig() *YAMLConfig {
	return &YAMLConfig{
		Models: []ModelConfig{
			{Provider: "openai", Model: "gpt-4o", DisplayName: "ChatGPT", Enabled: true},
			{Provider: "anthropic", Model: "claude-sonnet", DisplayName: "Claude", Enabled: true},
			{Provider: "google", Model: "gemini-pro", DisplayName: "Gemini", Enabled: true},
			{Provider: "perplexity", Model: "sonar", DisplayName: "Perplexity", Enabled: true},
		},
		Wizard: WizardConfig{
			MaxSelectedKeywords:  10,
			MaxPhrasesPerKeyword: 5,
		},
	}
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns the defaults without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultYAMLConfig(), nil
		}
		return nil, err
	}

	return ParseYAMLConfig(data)
}

// ParseYAMLConfig decodes a config document and fills unset limits.
func ParseYAMLConfig(data []byte) (*YAMLConfig, error) {
	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	defaults := DefaultYAMLConfig()
	if len(cfg.Models) == 0 {
		cfg.Models = defaults.Models
	}
	if cfg.Wizard.MaxSelectedKeywords <= 0 {
		cfg.Wizard.MaxSelectedKeywords = defaults.Wizard.MaxSelectedKeywords
	}
	if cfg.Wizard.MaxPhrasesPerKeyword <= 0 {
		cfg.Wizard.MaxPhrasesPerKeyword = defaults.Wizard.MaxPhrasesPerKeyword
	}

	for i, m := range cfg.Models {
		if m.Provider == "" || m.Model == "" {
			return nil, fmt.Errorf("models[%d]: provider and model are required", i)
		}
		if m.DisplayName == "" {
			cfg.Models[i].DisplayName = m.Model
		}
	}

	return &cfg, nil
}

// EnabledModels returns the models that should be queried.
func (c *YAMLConfig) EnabledModels() []ModelConfig {
	if c == nil {
		return nil
	}
	var models []ModelConfig
	for _, m := range c.Models {
		if m.Enabled {
			models = append(models, m)
		}
	}
	return models
}

// GetModel finds a model by provider and model name.
func (c *YAMLConfig) GetModel(provider, model string) *ModelConfig {
	if c == nil {
		return nil
	}
	for i := range c.Models {
		if c.Models[i].Provider == provider && c.Models[i].Model == model {
			return &c.Models[i]
		}
	}
	return nil
}

package api

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"aivisibility/internal/config"
	"aivisibility/internal/models"
)

// ModelHandler serves the AI model catalog.
type ModelHandler struct {
	yaml *config.YAMLConfig
}

// NewModelHandler creates a new API model handler.
func NewModelHandler(yamlCfg *config.YAMLConfig) *ModelHandler {
	return &ModelHandler{yaml: yamlCfg}
}

// List returns the enabled models.
func (h *ModelHandler) List(c fiber.Ctx) error {
	return jsonSuccess(c, catalog(h.yaml))
}

func catalog(yamlCfg *config.YAMLConfig) []models.ModelCatalogEntry {
	enabled := yamlCfg.EnabledModels()
	entries := make([]models.ModelCatalogEntry, 0, len(enabled))
	for _, m := range enabled {
		entries = append(entries, models.ModelCatalogEntry{
			Provider:    m.Provider,
			Model:       m.Model,
			DisplayName: m.DisplayName,
		})
	}
	return entries
}

// selectModels picks the requested models out of the catalog. A request may
// name a model by "provider/model" or by model name alone. No names means
// the whole catalog.
func selectModels(entries []models.ModelCatalogEntry, names []string) ([]models.ModelCatalogEntry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no AI models are enabled")
	}
	if len(names) == 0 {
		return entries, nil
	}

	seen := make(map[string]bool)
	var selected []models.ModelCatalogEntry
	for _, name := range names {
		var match *models.ModelCatalogEntry
		for i := range entries {
			if entries[i].Key() == name || entries[i].Model == name {
				match = &entries[i]
				break
			}
		}
		if match == nil {
			return nil, fmt.Errorf("unknown model %q", name)
		}
		if !seen[match.Key()] {
			seen[match.Key()] = true
			selected = append(selected, *match)
		}
	}
	return selected, nil
}

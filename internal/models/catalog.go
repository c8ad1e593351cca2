package models

// ModelCatalogEntry is an AI model shown in the wizard and sent to the engine.
type ModelCatalogEntry struct {
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	DisplayName string `json:"display_name"`
}

// Key returns the "provider/model" identifier used in requests.
func (e ModelCatalogEntry) Key() string {
	return e.Provider + "/" + e.Model
}

package models

import "time"

// ReportSummary totals presence outcomes across all providers.
type ReportSummary struct {
	TotalQueries   int     `json:"total_queries"`
	Featured       int     `json:"featured"`
	Mentioned      int     `json:"mentioned"`
	NotFound       int     `json:"not_found"`
	VisibilityRate float64 `json:"visibility_rate"`
}

// ReportData is everything the report view renders for a domain.
type ReportData struct {
	Domain          Domain              `json:"domain"`
	GeneratedAt     time.Time           `json:"generated_at"`
	Summary         ReportSummary       `json:"summary"`
	Keywords        []Keyword           `json:"keywords"`
	PhraseCount     int                 `json:"phrase_count"`
	ProviderStats   []ProviderStat      `json:"provider_stats"`
	Competitors     []CompetitorSummary `json:"competitors"`
	Results         []AIQueryResult     `json:"results"`
	Recommendations []string            `json:"recommendations"`
}

// NewReportSummary totals provider stats.
func NewReportSummary(stats []ProviderStat) ReportSummary {
	var s ReportSummary
	for _, st := range stats {
		s.TotalQueries += st.Total
		s.Featured += st.Featured
		s.Mentioned += st.Mentioned
		s.NotFound += st.NotFound
	}
	if s.TotalQueries > 0 {
		s.VisibilityRate = float64(s.Featured+s.Mentioned) / float64(s.TotalQueries)
	}
	return s
}

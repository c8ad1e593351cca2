package api

import (
	"github.com/gofiber/fiber/v3"

	"aivisibility/internal/report"
)

// ReportStore is the storage the report handler needs.
type ReportStore interface {
	DomainGetter
	report.Source
}

// ReportHandler serves report data as JSON.
type ReportHandler struct {
	store ReportStore
}

// NewReportHandler creates a new API report handler.
func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// Get returns the assembled report for a domain.
func (h *ReportHandler) Get(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	data, err := report.Build(c.Context(), h.store, domain)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to build report")
	}
	return jsonSuccess(c, data)
}

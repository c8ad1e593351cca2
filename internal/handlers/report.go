package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"aivisibility/internal/config"
	"aivisibility/internal/db"
	"aivisibility/internal/models"
	"aivisibility/internal/report"
)

// ReportStore is the storage the report page needs.
type ReportStore interface {
	GetDomainByID(ctx context.Context, id uuid.UUID) (*models.Domain, error)
	report.Source
}

// ReportHandler renders the visibility report as a page.
type ReportHandler struct {
	store ReportStore
	cfg   *config.Config
}

// NewReportHandler creates a new report page handler.
func NewReportHandler(store ReportStore, cfg *config.Config) *ReportHandler {
	return &ReportHandler{store: store, cfg: cfg}
}

// Show renders the report for one of the current user's domains.
func (h *ReportHandler) Show(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect().To("/auth/login")
	}

	id, err := uuid.Parse(c.Params("domainId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid domain id")
	}

	domain, err := h.store.GetDomainByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrDomainNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "domain not found")
		}
		return err
	}
	if domain.UserID != user.ID {
		return fiber.NewError(fiber.StatusNotFound, "domain not found")
	}

	data, err := report.Build(c.Context(), h.store, domain)
	if err != nil {
		return err
	}

	return c.Render("report", page(h.cfg, user, "Report for "+domain.Host, fiber.Map{
		"Report": data,
	}))
}

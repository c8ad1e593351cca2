package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"aivisibility/internal/db"
	"aivisibility/internal/models"
)

// WizardStore is the storage the wizard handler needs.
type WizardStore interface {
	DomainGetter
	GetWizardProgress(ctx context.Context, domainID uuid.UUID) (*models.WizardProgress, error)
	SaveWizardProgress(ctx context.Context, domainID uuid.UUID, step int) (*models.WizardProgress, error)
}

// WizardHandler persists the wizard step position per domain.
type WizardHandler struct {
	store WizardStore
}

// NewWizardHandler creates a new API wizard handler.
func NewWizardHandler(store WizardStore) *WizardHandler {
	return &WizardHandler{store: store}
}

// Get returns the saved position. A domain with no saved position is at
// the first step.
func (h *WizardHandler) Get(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	progress, err := h.store.GetWizardProgress(c.Context(), domain.ID)
	if errors.Is(err, db.ErrProgressNotFound) {
		return jsonSuccess(c, &models.WizardProgress{
			DomainID: domain.ID,
			Step:     models.StepDomainSubmission,
			StepName: models.StepName(models.StepDomainSubmission),
			MaxStep:  models.StepDomainSubmission,
		})
	}
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch wizard progress")
	}

	return jsonSuccess(c, progress)
}

// Save stores the current step. Users may revisit any step already reached
// and advance one step past the furthest.
func (h *WizardHandler) Save(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	var body models.SaveProgressRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := models.ValidateStep(body.Step); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	maxStep := models.StepDomainSubmission
	current, err := h.store.GetWizardProgress(c.Context(), domain.ID)
	switch {
	case err == nil:
		maxStep = current.MaxStep
	case !errors.Is(err, db.ErrProgressNotFound):
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch wizard progress")
	}

	if body.Step > maxStep+1 {
		return jsonError(c, fiber.StatusBadRequest, fmt.Sprintf("step %d is not reachable yet; complete step %d first", body.Step, maxStep+1))
	}

	progress, err := h.store.SaveWizardProgress(c.Context(), domain.ID, body.Step)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save wizard progress")
	}

	return jsonSuccess(c, progress)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"aivisibility/internal/config"
	"aivisibility/internal/db"
	"aivisibility/internal/models"
	"aivisibility/internal/validation"
)

// KeywordStore is the storage the keyword handler needs.
type KeywordStore interface {
	DomainGetter
	CreateKeyword(ctx context.Context, k *models.Keyword) error
	ListKeywords(ctx context.Context, domainID uuid.UUID) ([]models.Keyword, error)
	DeleteKeyword(ctx context.Context, domainID, keywordID uuid.UUID) error
	SetKeywordSelection(ctx context.Context, domainID uuid.UUID, keywordIDs []uuid.UUID) error
}

// KeywordHandler handles keyword CRUD and selection via JSON API.
type KeywordHandler struct {
	store KeywordStore
	yaml  *config.YAMLConfig
}

// NewKeywordHandler creates a new API keyword handler.
func NewKeywordHandler(store KeywordStore, yamlCfg *config.YAMLConfig) *KeywordHandler {
	return &KeywordHandler{store: store, yaml: yamlCfg}
}

// List returns a domain's keywords, selected first.
func (h *KeywordHandler) List(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	keywords, err := h.store.ListKeywords(c.Context(), domain.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch keywords")
	}
	return jsonSuccess(c, keywords)
}

// Create adds a keyword to a domain.
func (h *KeywordHandler) Create(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	var body models.CreateKeywordRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	text := validation.NormalizeKeyword(body.Text)
	if err := validation.ValidateKeyword(text); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	source := body.Source
	if source == "" {
		source = models.KeywordCustom
	}
	if !models.IsValidKeywordSource(source) {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword source")
	}

	keyword := &models.Keyword{
		DomainID:   domain.ID,
		Text:       text,
		Source:     source,
		Volume:     body.Volume,
		Difficulty: body.Difficulty,
		CPC:        body.CPC,
	}
	if err := h.store.CreateKeyword(c.Context(), keyword); err != nil {
		if errors.Is(err, db.ErrDuplicateKeyword) {
			return jsonError(c, fiber.StatusConflict, "this keyword already exists for the domain")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create keyword")
	}

	return jsonCreated(c, keyword)
}

// Delete removes a keyword from a domain.
func (h *KeywordHandler) Delete(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	keywordID, err := uuid.Parse(c.Params("keywordId"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword id")
	}

	if err := h.store.DeleteKeyword(c.Context(), domain.ID, keywordID); err != nil {
		if errors.Is(err, db.ErrKeywordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete keyword")
	}

	return jsonSuccess(c, fiber.Map{"deleted": keywordID})
}

// Select replaces the set of selected keywords.
func (h *KeywordHandler) Select(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}

	var body models.KeywordSelectionRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	limit := h.yaml.Wizard.MaxSelectedKeywords
	if limit > 0 && len(body.KeywordIDs) > limit {
		return jsonError(c, fiber.StatusBadRequest, fmt.Sprintf("at most %d keywords can be selected", limit))
	}

	if err := h.store.SetKeywordSelection(c.Context(), domain.ID, body.KeywordIDs); err != nil {
		if errors.Is(err, db.ErrKeywordNotFound) {
			return jsonError(c, fiber.StatusBadRequest, "selection contains unknown keywords")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to save keyword selection")
	}

	keywords, err := h.store.ListKeywords(c.Context(), domain.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch keywords")
	}
	return jsonSuccess(c, keywords)
}

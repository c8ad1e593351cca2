package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"aivisibility/internal/models"
	"aivisibility/internal/validation"
)

// DomainStore is the storage the domain handler needs.
type DomainStore interface {
	DomainGetter
	CreateDomain(ctx context.Context, domain *models.Domain) (bool, error)
	ListDomainsForUser(ctx context.Context, userID uuid.UUID) ([]models.Domain, error)
	SaveWizardProgress(ctx context.Context, domainID uuid.UUID, step int) (*models.WizardProgress, error)
}

var errRedirectBlocked = errors.New("redirect blocked")

// DomainHandler handles domain intake and validation via JSON API.
type DomainHandler struct {
	store  DomainStore
	client *http.Client
}

// NewDomainHandler creates a new API domain handler.
func NewDomainHandler(store DomainStore) *DomainHandler {
	return &DomainHandler{
		store: store,
		client: &http.Client{
			Timeout:       5 * time.Second,
			CheckRedirect: checkRedirect,
		},
	}
}

// checkRedirect applies the fetch guard to every hop, so a public site
// cannot bounce the check onto a private address.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("too many redirects")
	}
	if valid, msg := validation.ValidateURLForFetch(req.URL.String()); !valid {
		return fmt.Errorf("%w: %s", errRedirectBlocked, msg)
	}
	return nil
}

// Validate normalizes and validates a domain without storing it. When asked,
// it also checks that the site answers over HTTPS.
func (h *DomainHandler) Validate(c fiber.Ctx) error {
	var body models.DomainValidationRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	host := validation.NormalizeDomain(body.Domain)
	if err := validation.ValidateDomain(host); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	resp := models.DomainValidationResponse{
		Input: body.Domain,
		Host:  host,
		Valid: true,
	}

	if body.CheckReachability {
		reachable, msg := h.checkReachable(c.Context(), host)
		resp.Reachable = &reachable
		resp.Message = msg
	}

	return jsonSuccess(c, resp)
}

// checkReachable sends a HEAD request to the domain's home page.
// Hosts that resolve to private addresses are never contacted.
func (h *DomainHandler) checkReachable(ctx context.Context, host string) (bool, string) {
	url := "https://" + host + "/"
	if valid, msg := validation.ValidateURLForFetch(url); !valid {
		return false, msg
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, "invalid URL"
	}
	req.Header.Set("User-Agent", "AIVisibility-DomainCheck/1.0")

	resp, err := h.client.Do(req)
	if errors.Is(err, errRedirectBlocked) {
		return false, "domain redirects to a private or reserved address"
	}
	if err != nil {
		return false, "domain did not respond"
	}
	defer resp.Body.Close()

	return true, ""
}

// Create stores a domain for the current user. Submitting the same domain
// again returns the existing record.
func (h *DomainHandler) Create(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var body models.CreateDomainRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	host := validation.NormalizeDomain(body.Domain)
	if err := validation.ValidateDomain(host); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	domain := &models.Domain{
		UserID:    user.ID,
		Host:      host,
		InputURL:  body.Domain,
		Status:    models.DomainValidated,
		BrandName: body.BrandName,
	}

	created, err := h.store.CreateDomain(c.Context(), domain)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create domain")
	}

	if !created {
		return jsonSuccess(c, domain)
	}

	if _, err := h.store.SaveWizardProgress(c.Context(), domain.ID, models.StepDomainSubmission); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save wizard progress")
	}

	return jsonCreated(c, domain)
}

// Get returns one of the current user's domains.
func (h *DomainHandler) Get(c fiber.Ctx) error {
	_, domain, ferr := ownedDomain(c, h.store, "domainId")
	if ferr != nil {
		return jsonError(c, ferr.Code, ferr.Message)
	}
	return jsonSuccess(c, domain)
}

// List returns the current user's domains, newest first.
func (h *DomainHandler) List(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	domains, err := h.store.ListDomainsForUser(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch domains")
	}
	return jsonSuccess(c, domains)
}

func validationMessage(err error) string {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

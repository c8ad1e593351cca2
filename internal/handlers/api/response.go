package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"aivisibility/internal/db"
	"aivisibility/internal/models"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonCreated returns a 201 response with data wrapped in the standard envelope.
func jsonCreated(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

func currentUser(c fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("user").(*models.User)
	return user, ok && user != nil
}

// DomainGetter loads a domain by ID.
type DomainGetter interface {
	GetDomainByID(ctx context.Context, id uuid.UUID) (*models.Domain, error)
}

// ownedDomain loads the domain named by the route parameter for the current
// user. A domain that belongs to someone else is reported as not found.
func ownedDomain(c fiber.Ctx, store DomainGetter, param string) (*models.User, *models.Domain, *fiber.Error) {
	user, ok := currentUser(c)
	if !ok {
		return nil, nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "invalid domain id")
	}

	domain, err := store.GetDomainByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrDomainNotFound) {
			return nil, nil, fiber.NewError(fiber.StatusNotFound, "domain not found")
		}
		return nil, nil, fiber.NewError(fiber.StatusInternalServerError, "failed to fetch domain")
	}

	if domain.UserID != user.ID {
		return nil, nil, fiber.NewError(fiber.StatusNotFound, "domain not found")
	}

	return user, domain, nil
}

package handlers

import (
	"github.com/gofiber/fiber/v3"

	"aivisibility/internal/config"
	"aivisibility/internal/models"
)

func currentUser(c fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("user").(*models.User)
	return user, ok && user != nil
}

// page merges the values every layout needs into data.
func page(cfg *config.Config, user *models.User, title string, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title
	data["SiteTitle"] = cfg.SiteTitle
	data["User"] = user
	return data
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "joyeria/internal/log"
	"joyeria/internal/services"
)

type NewsletterHandler struct {
	News *services.NewsletterService
}

// POST /api/v1/newsletter
func (h *NewsletterHandler) Subscribe(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" form:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	created, err := h.News.Subscribe(c.UserContext(), req.Email)
	if err != nil {
		return apiError(c, "newsletter.subscribe.fail", err)
	}
	if created {
		applog.Audit(c, "newsletter.subscribe", nil)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subscribed": true})
	}
	return c.JSON(fiber.Map{"subscribed": true, "existing": true})
}

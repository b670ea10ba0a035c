package handlers

import (
	"github.com/gofiber/fiber/v2"

	"joyeria/internal/services"
	"joyeria/internal/stock"
	"joyeria/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /api/v1/availability?productId=&variationId=
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing productId",
		})
	}
	variationID, ok := validate.OptionalID(c.Query("variationId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid variationId",
		})
	}

	avail, err := h.Inv.CheckAvailability(c.UserContext(), stock.Key{ProductID: productID, VariationID: variationID})
	if err != nil {
		return apiError(c, "availability.check.fail", err)
	}
	return c.JSON(avail)
}

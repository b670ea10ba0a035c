package handlers

import (
	"joyeria/internal/log"
	"joyeria/internal/services"
	"joyeria/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "Este producto ya no está disponible")
	}
	d, err := h.Catalog.Detail(id)
	if err != nil {
		return notFound(c, "Este producto ya no está disponible")
	}
	return render(c, "product", fiber.Map{"P": d})
}

// GET /api/v1/products?category=&q=&page=
func (h *ProductHandler) APIList(c *fiber.Ctx) error {
	cq := readCatalogQuery(c)
	switch cq.Bad {
	case "q":
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid query"})
	case "category":
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category"})
	}
	page := c.QueryInt("page", 1)
	products, err := h.Catalog.Search(cq.Q, cq.Category, page, 24)
	if err != nil {
		return apiError(c, "api.products.list", err)
	}
	return c.JSON(fiber.Map{"products": products, "page": page})
}

// GET /api/v1/products/:id
func (h *ProductHandler) APIDetail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	d, err := h.Catalog.Detail(id)
	if err != nil {
		return apiError(c, "api.products.detail", err)
	}
	return c.JSON(d)
}

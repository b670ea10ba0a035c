package handlers

import (
	"errors"
	"strconv"

	"joyeria/internal/log"
	"joyeria/internal/repos"
	"joyeria/internal/services"
	"joyeria/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return err
	}
	featured, err := h.Catalog.Featured(8)
	if err != nil {
		return err
	}
	fresh, err := h.Catalog.NewArrivals(8)
	if err != nil {
		return err
	}
	return render(c, "home", fiber.Map{"Categories": cats, "Featured": featured, "New": fresh})
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return notFound(c, "Categoría no encontrada")
	}
	cat, err := h.Catalog.Category(slug)
	if errors.Is(err, repos.ErrNotFound) {
		return notFound(c, "Categoría no encontrada")
	}
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	products, err := h.Catalog.ListProductsByCategory(slug, page, 12)
	if err != nil {
		return err
	}
	return render(c, "category", fiber.Map{"Category": cat, "Products": products, "Page": page})
}

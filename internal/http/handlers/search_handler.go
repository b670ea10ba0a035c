package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"joyeria/internal/log"
	"joyeria/internal/services"
	"joyeria/internal/validate"
)

// catalogQuery is the q/category pair shared by the search page and the
// product list API. Bad names the first field that failed validation.
type catalogQuery struct {
	Q        string
	Category string
	Bad      string
}

func readCatalogQuery(c *fiber.Ctx) catalogQuery {
	var cq catalogQuery
	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		q, ok := validate.Q(raw)
		if !ok {
			cq.Bad = "q"
			return cq
		}
		cq.Q = strings.ToLower(q)
	}
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		if _, ok := validate.Slug(cat); !ok {
			cq.Bad = "category"
			return cq
		}
		cq.Category = cat
	}
	return cq
}

var searchErrors = map[string]string{
	"q":        "Ingresa una palabra válida (solo letras y números)",
	"category": "Categoría inválida",
}

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /search?q=&category=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	cq := readCatalogQuery(c)
	data := fiber.Map{"Q": cq.Q, "Category": cq.Category, "Products": []services.ProductCard{}, "Count": 0}
	if cq.Bad != "" {
		log.Security(c, "validation.fail", map[string]any{"field": cq.Bad})
		data["Err"] = searchErrors[cq.Bad]
		c.Status(fiber.StatusBadRequest)
		return render(c, "search", data)
	}
	if cq.Q == "" {
		return render(c, "search", data)
	}

	products, err := h.Catalog.Search(cq.Q, cq.Category, 1, 20)
	if err != nil {
		log.Error(c, "search.error", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "No pudimos cargar los resultados. Intenta de nuevo."})
	}
	data["Products"], data["Count"] = products, len(products)
	return render(c, "search", data)
}

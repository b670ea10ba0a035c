package handlers

import (
	"strings"

	"joyeria/internal/domain"
	applog "joyeria/internal/log"
	"joyeria/internal/repos"
	"joyeria/internal/services"
	"joyeria/internal/stock"
	"joyeria/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Catalog   *services.CatalogService
	Inv       *services.InventoryService
	Orders    *services.OrderService
	News      *services.NewsletterService
	Products  *repos.ProductRepo
	OrderRepo *repos.OrderRepo
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	counts, err := h.Products.Counts()
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "No pudimos cargar el panel"})
	}
	byStatus, err := h.OrderRepo.CountByStatus(ctx)
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "No pudimos cargar el panel"})
	}
	latest, _ := h.Orders.List(ctx, "", 10)
	inventory, _ := h.Inv.ListAll(ctx)
	return render(c, "admin_dashboard", fiber.Map{
		"Counts": counts, "ByStatus": byStatus, "Orders": latest, "Inventory": inventory,
		"Statuses": domain.OrderStatuses,
	})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatusForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	status := strings.ToUpper(strings.TrimSpace(c.FormValue("status")))
	if !ok || !domain.ValidOrderStatus(status) {
		return c.Status(400).SendString("missing id or status")
	}
	if err := h.Orders.SetStatus(c.UserContext(), id, status); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/admin")
}

// JSON API under /api/admin.

func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	ps, err := h.Catalog.AllProducts(c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return apiError(c, "admin.products.list.fail", err)
	}
	return c.JSON(ps)
}

func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var p domain.Product
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.Catalog.CreateProduct(p); err != nil {
		return apiError(c, "admin.products.create.fail", err)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	var p domain.Product
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	p.ID = c.Params("id")
	if err := h.Catalog.UpdateProduct(p); err != nil {
		return apiError(c, "admin.products.update.fail", err)
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product": p.ID})
	return c.JSON(p)
}

func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteProduct(id); err != nil {
		return apiError(c, "admin.products.delete.fail", err)
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product": id})
	return c.SendStatus(fiber.StatusNoContent)
}

type stockReq struct {
	VariationID string `json:"variation_id"`
	Stock       *int   `json:"stock"`
}

// PUT /api/admin/products/:id/stock
func (h *AdminHandler) SetStock(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("id"))
	var req stockReq
	if err := c.BodyParser(&req); err != nil || !ok || req.Stock == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	vid, ok := validate.OptionalID(req.VariationID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid variation_id"})
	}
	key := stock.Key{ProductID: pid, VariationID: vid}
	if err := h.Inv.SetStock(c.UserContext(), key, *req.Stock); err != nil {
		return apiError(c, "admin.stock.save.fail", err)
	}
	applog.Audit(c, "admin.stock.save", map[string]any{"product": pid, "variation": vid, "qty": *req.Stock})
	avail, err := h.Inv.CheckAvailability(c.UserContext(), key)
	if err != nil {
		return apiError(c, "admin.stock.save.fail", err)
	}
	return c.JSON(avail)
}

func (h *AdminHandler) ListVariations(c *fiber.Ctx) error {
	vs, err := h.Catalog.ListVariations(c.Params("id"))
	if err != nil {
		return apiError(c, "admin.variations.list.fail", err)
	}
	return c.JSON(vs)
}

func (h *AdminHandler) CreateVariation(c *fiber.Ctx) error {
	var v domain.Variation
	if err := c.BodyParser(&v); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	v.ProductID = c.Params("id")
	if err := h.Catalog.CreateVariation(v); err != nil {
		return apiError(c, "admin.variations.create.fail", err)
	}
	applog.Audit(c, "admin.variations.create", map[string]any{"product": v.ProductID, "variation": v.ID})
	return c.Status(fiber.StatusCreated).JSON(v)
}

func (h *AdminHandler) UpdateVariation(c *fiber.Ctx) error {
	var v domain.Variation
	if err := c.BodyParser(&v); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	v.ProductID, v.ID = c.Params("id"), c.Params("vid")
	if err := h.Catalog.UpdateVariation(v); err != nil {
		return apiError(c, "admin.variations.update.fail", err)
	}
	applog.Audit(c, "admin.variations.update", map[string]any{"product": v.ProductID, "variation": v.ID})
	return c.JSON(v)
}

func (h *AdminHandler) DeleteVariation(c *fiber.Ctx) error {
	pid, vid := c.Params("id"), c.Params("vid")
	if err := h.Catalog.DeleteVariation(pid, vid); err != nil {
		return apiError(c, "admin.variations.delete.fail", err)
	}
	applog.Audit(c, "admin.variations.delete", map[string]any{"product": pid, "variation": vid})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) ListCategories(c *fiber.Ctx) error {
	cats, err := h.Catalog.AllCategories()
	if err != nil {
		return apiError(c, "admin.categories.list.fail", err)
	}
	return c.JSON(cats)
}

// PUT /api/admin/categories/:slug
func (h *AdminHandler) SaveCategory(c *fiber.Ctx) error {
	var cat domain.Category
	if err := c.BodyParser(&cat); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	cat.Slug = c.Params("slug")
	if err := h.Catalog.SaveCategory(cat); err != nil {
		return apiError(c, "admin.categories.save.fail", err)
	}
	applog.Audit(c, "admin.categories.save", map[string]any{"category": cat.Slug})
	return c.JSON(cat)
}

func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if err := h.Catalog.DeleteCategory(slug); err != nil {
		return apiError(c, "admin.categories.delete.fail", err)
	}
	applog.Audit(c, "admin.categories.delete", map[string]any{"category": slug})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	status := strings.ToUpper(c.Query("status"))
	if status != "" && !domain.ValidOrderStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status"})
	}
	ords, err := h.Orders.List(c.UserContext(), status, c.QueryInt("limit", 100))
	if err != nil {
		return apiError(c, "admin.orders.list.fail", err)
	}
	return c.JSON(ords)
}

func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	o, err := h.Orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return apiError(c, "admin.orders.get.fail", err)
	}
	return c.JSON(o)
}

// PUT /api/admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	id := c.Params("id")
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !domain.ValidOrderStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status"})
	}
	if err := h.Orders.SetStatus(c.UserContext(), id, status); err != nil {
		return apiError(c, "admin.orders.update.fail", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return h.GetOrder(c)
}

func (h *AdminHandler) ListSubscribers(c *fiber.Ctx) error {
	subs, err := h.News.List(c.UserContext())
	if err != nil {
		return apiError(c, "admin.newsletter.list.fail", err)
	}
	return c.JSON(subs)
}

func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	rows, err := h.Inv.ListAll(c.UserContext())
	if err != nil {
		return apiError(c, "admin.inventory.list.fail", err)
	}
	return c.JSON(rows)
}

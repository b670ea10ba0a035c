package handlers

import (
	"errors"

	"joyeria/internal/cart"
	applog "joyeria/internal/log"
	"joyeria/internal/services"
	"joyeria/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

// POST /cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(400).SendString("missing productId")
	}
	variationID, ok := validate.OptionalID(c.FormValue("variationId"))
	if !ok {
		return c.Status(400).SendString("invalid variationId")
	}
	qty := validate.Qty(c.FormValue("qty"))

	added, err := h.Cart.Add(c.UserContext(), sid, productID, variationID, qty)
	switch {
	case errors.Is(err, services.ErrProductNotFound), errors.Is(err, cart.ErrInactiveProduct):
		return notFound(c, "Este producto ya no está disponible")
	case errors.Is(err, cart.ErrInvalidVariation):
		return c.Status(400).SendString("invalid variation")
	case err != nil:
		return err
	}
	if !added {
		applog.Info(c, "cart.add.no_stock", map[string]any{"product": productID, "variation": variationID, "qty": qty})
		return c.Redirect("/product/" + productID + "?nostock=1")
	}
	applog.Info(c, "cart.add", map[string]any{"product": productID, "variation": variationID, "qty": qty})
	return c.Redirect("/cart")
}

// POST /cart/update
func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, okP := validate.ID(c.FormValue("productId"))
	variationID, okV := validate.OptionalID(c.FormValue("variationId"))
	qty, okQ := validate.SetQty(c.FormValue("qty"))
	if !okP || !okV || !okQ {
		return c.Status(400).SendString("invalid input")
	}
	updated, err := h.Cart.Update(c.UserContext(), sid, productID, variationID, qty)
	if err != nil {
		return err
	}
	if !updated {
		return c.Redirect("/cart?nostock=1")
	}
	return c.Redirect("/cart")
}

// POST /cart/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, okP := validate.ID(c.FormValue("productId"))
	variationID, okV := validate.OptionalID(c.FormValue("variationId"))
	if !okP || !okV {
		return c.Status(400).SendString("invalid input")
	}
	if err := h.Cart.Remove(c.UserContext(), sid, productID, variationID); err != nil {
		return err
	}
	return c.Redirect("/cart")
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(c.UserContext(), sid)
	if err != nil {
		return err
	}
	return render(c, "cart", fiber.Map{"Cart": cv, "NoStock": c.Query("nostock") != ""})
}

type cartItemReq struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id"`
	Quantity    int    `json:"quantity"`
}

func (r *cartItemReq) valid() bool {
	var okP, okV bool
	r.ProductID, okP = validate.ID(r.ProductID)
	r.VariationID, okV = validate.OptionalID(r.VariationID)
	return okP && okV
}

// GET /api/v1/cart
func (h *CartHandler) APIGet(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), ensureSID(c))
	if err != nil {
		return apiError(c, "api.cart.view", err)
	}
	return c.JSON(cv)
}

// POST /api/v1/cart/items
func (h *CartHandler) APIAdd(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req cartItemReq
	if err := c.BodyParser(&req); err != nil || !req.valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	added, err := h.Cart.Add(c.UserContext(), sid, req.ProductID, req.VariationID, req.Quantity)
	if err != nil {
		return apiError(c, "api.cart.add", err)
	}
	if !added {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "insufficient stock"})
	}
	applog.Info(c, "cart.add", map[string]any{"product": req.ProductID, "variation": req.VariationID, "qty": req.Quantity})
	return h.APIGet(c)
}

// PATCH /api/v1/cart/items
func (h *CartHandler) APIUpdate(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req cartItemReq
	if err := c.BodyParser(&req); err != nil || !req.valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	updated, err := h.Cart.Update(c.UserContext(), sid, req.ProductID, req.VariationID, req.Quantity)
	if err != nil {
		return apiError(c, "api.cart.update", err)
	}
	if !updated {
		// either the line is gone or stock cannot cover the quantity
		lines, lerr := h.Cart.For(sid).Lines(c.UserContext())
		if lerr != nil {
			return apiError(c, "api.cart.update", lerr)
		}
		for _, l := range lines {
			if l.Product.ID == req.ProductID && l.VariationID() == req.VariationID {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "insufficient stock"})
			}
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "line not in cart"})
	}
	return h.APIGet(c)
}

// DELETE /api/v1/cart/items?productId=&variationId=
func (h *CartHandler) APIRemove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, okP := validate.ID(c.Query("productId"))
	variationID, okV := validate.OptionalID(c.Query("variationId"))
	if !okP || !okV {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := h.Cart.Remove(c.UserContext(), sid, productID, variationID); err != nil {
		return apiError(c, "api.cart.remove", err)
	}
	return h.APIGet(c)
}

// DELETE /api/v1/cart
func (h *CartHandler) APIClear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Cart.Clear(c.UserContext(), sid); err != nil {
		return apiError(c, "api.cart.clear", err)
	}
	return h.APIGet(c)
}

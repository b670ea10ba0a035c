package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"joyeria/internal/domain"
	applog "joyeria/internal/log"
	"joyeria/internal/services"
	"joyeria/internal/validate"
)

type OrderHandler struct {
	Cart  *services.CartService
	Order *services.OrderService
	Auth  *services.AuthService
}

// GET /checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), ensureSID(c))
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "No pudimos cargar tu carro"})
	}
	if cv.Count == 0 {
		return c.Redirect("/cart")
	}
	return render(c, "checkout", fiber.Map{"Cart": cv})
}

// POST /checkout
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)

	contact := domain.Contact{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Phone:   c.FormValue("phone"),
		Address: c.FormValue("address"),
	}
	var ok bool
	if contact.Name, ok = validate.Name(contact.Name); !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "name"})
		return h.checkoutError(c, sid, fiber.StatusBadRequest, "Ingresa tu nombre")
	}
	if contact.Email, ok = validate.Email(contact.Email); !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return h.checkoutError(c, sid, fiber.StatusBadRequest, "Ingresa un email válido")
	}
	if contact.Phone, ok = validate.Phone(contact.Phone); !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "phone"})
		return h.checkoutError(c, sid, fiber.StatusBadRequest, "Teléfono inválido")
	}

	o, err := h.Order.Place(c.UserContext(), sid, contact)
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		return c.Redirect("/cart")
	case errors.Is(err, services.ErrInsufficientStock):
		applog.Info(c, "order.place.no_stock", map[string]any{"reason": err.Error()})
		return h.checkoutError(c, sid, fiber.StatusConflict, "Algunos productos ya no tienen stock suficiente. Revisa tu carro.")
	case errors.Is(err, services.ErrInvalidContact):
		return h.checkoutError(c, sid, fiber.StatusBadRequest, "Revisa tus datos de contacto")
	case err != nil:
		return err
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": o.ID, "total": o.Total, "provider": o.PaymentProvider})
	return c.Redirect(o.PaymentURL)
}

func (h *OrderHandler) checkoutError(c *fiber.Ctx, sid string, status int, msg string) error {
	cv, err := h.Cart.View(c.UserContext(), sid)
	if err != nil {
		return err
	}
	c.Status(status)
	return render(c, "checkout", fiber.Map{"Cart": cv, "Err": msg})
}

// GET /checkout/return?order=
func (h *OrderHandler) Return(c *fiber.Ctx) error {
	sid := ensureSID(c)
	oid, ok := validate.ID(c.Query("order"))
	if !ok {
		return notFound(c, "Pedido no encontrado")
	}
	if _, err := h.Order.ForSession(c.UserContext(), sid, oid); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
			return notFound(c, "Pedido no encontrado")
		}
		return err
	}
	o, err := h.Order.Confirm(c.UserContext(), oid)
	if err != nil {
		applog.Error(c, "order.confirm.fail", err, map[string]any{"order_id": oid})
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{
			"Message": "No pudimos confirmar el pago. Vuelve a intentarlo en unos minutos.",
		})
	}
	applog.Audit(c, "order.confirm", map[string]any{"order_id": o.ID, "status": o.Status})
	return c.Redirect("/order/" + o.ID)
}

// GET /order/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Pedido no encontrado")
	}
	sid := c.Cookies("sid")

	o, err := h.Order.ForSession(c.UserContext(), sid, oid)
	if errors.Is(err, services.ErrOrderNotFound) && h.Auth != nil {
		if _, staff := h.Auth.Staff(sid); staff {
			o, err = h.Order.Get(c.UserContext(), oid)
		}
	}
	if errors.Is(err, services.ErrOrderNotFound) {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return notFound(c, "Pedido no encontrado")
	}
	if err != nil {
		return err
	}
	return render(c, "order", fiber.Map{"Order": o})
}

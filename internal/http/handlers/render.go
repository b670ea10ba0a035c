package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"joyeria/internal/cart"
	applog "joyeria/internal/log"
	"joyeria/internal/pricing"
	"joyeria/internal/repos"
	"joyeria/internal/services"
	"joyeria/internal/validate"
)

// NewViews loads the HTML templates with the price helpers registered.
func NewViews(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("clp", pricing.FormatCLP)
	engine.AddFunc("displayPrice", pricing.CalculateDisplayPrice)
	engine.AddFunc("professional", pricing.RoundToProfessionalPrice)
	return engine
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("staff"); u != nil {
		data["Staff"] = u
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}

// apiError maps service errors onto JSON responses. Anything unexpected is
// logged and answered with a generic 500.
func apiError(c *fiber.Ctx, action string, err error) error {
	status := fiber.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, validate.ErrInvalid),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidVariation),
		errors.Is(err, services.ErrInvalidContact),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrEmptyCart):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, repos.ErrNotFound):
		status, msg = fiber.StatusNotFound, "not found"
	case errors.Is(err, cart.ErrInactiveProduct),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, repos.ErrInUse):
		status, msg = fiber.StatusConflict, err.Error()
	}
	if status == fiber.StatusInternalServerError {
		applog.Error(c, action, err, nil)
	} else {
		applog.Info(c, action, map[string]any{"status": status, "reason": err.Error()})
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

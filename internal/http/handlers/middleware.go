package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	applog "joyeria/internal/log"
	"joyeria/internal/services"
)

// ErrorHandler logs the failure and shows a friendly page. JSON clients get a
// generic error body. Internals never reach the response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, nil)
	if strings.HasPrefix(c.Path(), "/api/") {
		msg := "internal error"
		if code < 500 {
			msg = statusText(code)
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	msg := "Algo salió mal. Intenta de nuevo."
	if code == fiber.StatusNotFound {
		msg = "Página no encontrada"
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

func statusText(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return "not found"
	case fiber.StatusMethodNotAllowed:
		return "method not allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "request too large"
	default:
		return "bad request"
	}
}

// CSRF protects form posts. Under /api only form-encodable POSTs are checked;
// JSON bodies and PUT/PATCH/DELETE need a CORS preflight this server never grants.
func CSRF() fiber.Handler {
	return csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Next: func(c *fiber.Ctx) bool {
			if !strings.HasPrefix(c.Path(), "/api/") {
				return false
			}
			return c.Method() != fiber.MethodPost || c.Is("json")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Falló la verificación de seguridad. Recarga la página e intenta de nuevo."})
		},
	})
}

// AttachUser puts the signed-in staff account, if any, and the CSRF token into
// Locals for templates and logging.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			c.Locals("sid", sid)
			if u, ok := auth.Staff(sid); ok {
				c.Locals("staff", u)
			}
		}
		if tok, ok := c.Locals("csrf").(string); ok && tok != "" {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	}
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "joyeria/internal/log"
	"joyeria/internal/services"
)

// requireStaff admits sessions bound to a back-office account. deny answers
// with 401 when there is no session and 403 otherwise.
func requireStaff(auth *services.AuthService, deny func(c *fiber.Ctx, status int) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return deny(c, fiber.StatusUnauthorized)
		}
		u, ok := auth.Staff(sid)
		if !ok {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return deny(c, fiber.StatusForbidden)
		}
		c.Locals("staff", u)
		return c.Next()
	}
}

// RequireAdmin guards the HTML back office; anonymous visitors go to /login.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return requireStaff(auth, func(c *fiber.Ctx, status int) error {
		if status == fiber.StatusUnauthorized {
			return c.Redirect("/login")
		}
		return c.Status(status).Render("notfound", fiber.Map{"Message": "Acceso denegado"})
	})
}

func RequireAdminAPI(auth *services.AuthService) fiber.Handler {
	return requireStaff(auth, func(c *fiber.Ctx, status int) error {
		msg := "forbidden"
		if status == fiber.StatusUnauthorized {
			msg = "login required"
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	})
}

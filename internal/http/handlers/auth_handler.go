package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"joyeria/internal/log"
	"joyeria/internal/services"
	"joyeria/internal/validate"
)

const loginFailMsg = "Email o contraseña inválidos"

type AuthHandler struct {
	Auth *services.AuthService
}

func sessionCookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     "sid",
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  expires,
	}
}

// ensureSID returns the visitor's session id, issuing one on first contact.
// The session id doubles as the cart id.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if _, ok := validate.ID(sid); !ok {
		sid = uuid.NewString()
		c.Cookie(sessionCookie(sid, time.Time{}))
	}
	c.Locals("sid", sid)
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", nil)
}

// POST /login. Back-office staff only.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	raw := c.FormValue("email")
	pass := c.FormValue("password")

	email, ok := validate.Email(raw)
	if !ok {
		return h.loginFailed(c, raw, "bad_format")
	}
	if !validate.Password(pass) {
		return h.loginFailed(c, email, "bad_password_format")
	}
	_, err := h.Auth.SignIn(sid, email, pass)
	switch {
	case errors.Is(err, services.ErrNotStaff):
		return h.loginFailed(c, email, "not_staff")
	case errors.Is(err, services.ErrBadCreds):
		return h.loginFailed(c, email, "bad_credentials")
	case err != nil:
		log.Error(c, "auth.login.error", err, nil)
		return err
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/admin")
}

// The reason stays in the log; the form shows one message for every failure.
func (h *AuthHandler) loginFailed(c *fiber.Ctx, email, reason string) error {
	log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
	c.Status(fiber.StatusUnauthorized)
	return render(c, "login", fiber.Map{"Err": loginFailMsg})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		if err := h.Auth.SignOut(sid); err != nil {
			log.Error(c, "auth.logout.error", err, nil)
		}
	}
	c.Cookie(sessionCookie("", time.Now().Add(-time.Hour)))
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/")
}

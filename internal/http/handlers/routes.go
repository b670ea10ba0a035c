package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "joyeria/internal/log"
	"joyeria/internal/services"
)

// Limits are the per-route request budgets.
type Limits struct {
	Search       int
	Availability int
	Login        int
	Window       time.Duration
	LoginWindow  time.Duration
}

func DefaultLimits() Limits {
	return Limits{Search: 20, Availability: 15, Login: 5, Window: time.Minute, LoginWindow: 10 * time.Minute}
}

// Register mounts every storefront, API and admin route, ending with the 404
// fallback. Static file routes must be registered before calling it.
func Register(app *fiber.App, d *Deps, auth *services.AuthService, lim Limits) {
	authH := &AuthHandler{Auth: auth}

	// Public pages
	app.Get("/", d.CategoryHandler.Home)
	app.Get("/search", limiter.New(limiter.Config{Max: lim.Search, Expiration: lim.Window}), d.SearchHandler.Search)
	app.Get("/category/:slug", d.CategoryHandler.List)
	app.Get("/product/:id", d.ProductHandler.Detail)

	// Cart & checkout
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/update", d.CartHandler.Update)
	app.Post("/cart/remove", d.CartHandler.Remove)
	app.Get("/checkout", d.OrderHandler.Checkout)
	app.Post("/checkout", d.OrderHandler.Place)
	app.Get("/checkout/return", d.OrderHandler.Return)
	app.Get("/order/:id", d.OrderHandler.View)

	// API
	api := app.Group("/api/v1")
	api.Get("/products", d.ProductHandler.APIList)
	api.Get("/products/:id", d.ProductHandler.APIDetail)
	api.Get("/cart", d.CartHandler.APIGet)
	api.Post("/cart/items", d.CartHandler.APIAdd)
	api.Patch("/cart/items", d.CartHandler.APIUpdate)
	api.Delete("/cart/items", d.CartHandler.APIRemove)
	api.Delete("/cart", d.CartHandler.APIClear)
	api.Post("/newsletter", d.NewsletterHandler.Subscribe)
	api.Get("/availability", limiter.New(limiter.Config{
		Max:        lim.Availability,
		Expiration: lim.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), d.InventoryHandler.Check)

	// Auth routes (login throttled)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        lim.Login,
		Expiration: lim.LoginWindow,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Demasiados intentos. Intenta más tarde."})
		},
	}), authH.Login)
	app.Post("/logout", authH.Logout)

	// Admin
	adminH := d.AdminHandler
	admin := app.Group("/admin", RequireAdmin(auth))
	admin.Get("/", adminH.Dashboard)
	admin.Post("/orders/:id/status", adminH.UpdateOrderStatusForm)

	adminAPI := app.Group("/api/admin", RequireAdminAPI(auth))
	adminAPI.Get("/products", adminH.ListProducts)
	adminAPI.Post("/products", adminH.CreateProduct)
	adminAPI.Put("/products/:id", adminH.UpdateProduct)
	adminAPI.Delete("/products/:id", adminH.DeleteProduct)
	adminAPI.Put("/products/:id/stock", adminH.SetStock)
	adminAPI.Get("/products/:id/variations", adminH.ListVariations)
	adminAPI.Post("/products/:id/variations", adminH.CreateVariation)
	adminAPI.Put("/products/:id/variations/:vid", adminH.UpdateVariation)
	adminAPI.Delete("/products/:id/variations/:vid", adminH.DeleteVariation)
	adminAPI.Get("/categories", adminH.ListCategories)
	adminAPI.Put("/categories/:slug", adminH.SaveCategory)
	adminAPI.Delete("/categories/:slug", adminH.DeleteCategory)
	adminAPI.Get("/orders", adminH.ListOrders)
	adminAPI.Get("/orders/:id", adminH.GetOrder)
	adminAPI.Put("/orders/:id/status", adminH.UpdateOrderStatus)
	adminAPI.Get("/newsletter", adminH.ListSubscribers)
	adminAPI.Get("/inventory", adminH.Inventory)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(404).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Página no encontrada"})
	})
}

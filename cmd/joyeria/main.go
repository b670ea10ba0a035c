package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"joyeria/internal/config"
	"joyeria/internal/events"
	"joyeria/internal/http/handlers"
	applog "joyeria/internal/log"
	"joyeria/internal/mail"
	"joyeria/internal/payments"
	"joyeria/internal/repos"
	"joyeria/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	if err := userRepo.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("could not seed admin user: %v", err)
	}
	authSvc := services.NewAuthService(userRepo)

	// Events: cart changes are audited locally and, with Redis, mirrored to
	// the other instances.
	bus := events.NewBus()
	bus.Subscribe(events.CartChanged, func(_ context.Context, ev events.Event) {
		applog.Event("cart.changed", map[string]any{"cart_id": ev.CartID, "remote": ev.Origin != ""})
	})
	backends := handlers.Backends{Events: bus}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("could not reach redis at %s: %v", cfg.RedisAddr, err)
		}
		defer rdb.Close()

		bridge := events.NewRedisBridge(rdb, bus, events.DefaultChannel)
		go func() {
			if err := bridge.Run(ctx, nil); err != nil {
				applog.Failure("events.redis.run", err, nil)
			}
		}()
		backends.Carts = repos.NewRedisCartRepo(rdb, cfg.CartTTL)
		backends.Events = bridge
		log.Printf("[carts] redis %s, ttl %s", cfg.RedisAddr, cfg.CartTTL)
	} else {
		carts := repos.NewCartRepo(db)
		backends.Carts = carts
		go sweepCarts(ctx, carts, cfg.CartTTL)
		log.Printf("[carts] sqlite, stale after %s", cfg.CartTTL)
	}

	var gw payments.Gateway
	switch cfg.PaymentProvider {
	case "stripe":
		gw = payments.NewStripeGateway(cfg.StripeSecretKey, cfg.PublicBaseURL)
	default:
		gw = payments.NewSandboxGateway(cfg.PublicBaseURL)
	}
	backends.Payments = payments.WithBreaker(gw, 5, 30*time.Second)

	if cfg.SMTPHost != "" {
		sender, err := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
		if err != nil {
			log.Fatalf("mail: %v", err)
		}
		backends.Mail = sender
	} else {
		backends.Mail = mail.LogSender{}
	}

	// Templates & app
	engine := handlers.NewViews("./web/templates")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
	}))
	app.Use(handlers.CSRF())
	app.Use(handlers.AttachUser(authSvc))

	// ---------- Static assets ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	log.Printf("[static] /static -> ./web/static")
	log.Printf("[static] /media  -> %s", mediaDir)

	app.Static("/static", "./web/static")
	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		// Block encoded traversal attempts as well as raw .. or null bytes
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc, backends)
	handlers.Register(app, deps, authSvc, handlers.DefaultLimits())

	go func() {
		<-ctx.Done()
		log.Println("[server] shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("[server] shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// sweepCarts drops SQLite carts untouched for longer than ttl.
func sweepCarts(ctx context.Context, carts *repos.CartRepo, ttl time.Duration) {
	days := int(ttl.Hours() / 24)
	if days < 1 {
		days = 1
	}
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := carts.DeleteStale(ctx, days)
			if err != nil {
				applog.Failure("carts.sweep", err, nil)
				continue
			}
			if n > 0 {
				applog.Event("carts.sweep", map[string]any{"deleted": n})
			}
		}
	}
}

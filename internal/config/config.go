package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DBDSN    string
	MediaDir string
	LogFile  string

	// Empty RedisAddr keeps carts in SQLite and events in-process.
	RedisAddr string
	CartTTL   time.Duration

	AdminEmail    string
	AdminPassword string

	PaymentProvider string // stripe | sandbox
	StripeSecretKey string
	PublicBaseURL   string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, using environment variables")
	}

	cfg := Config{
		Port:     getEnv("PORT", "8080"),
		DBDSN:    getEnv("DB_DSN", "joyeria.db"),
		MediaDir: getEnv("MEDIA_DIR", "./web/media"),
		LogFile:  getEnv("LOG_FILE", "./joyeria.log"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		CartTTL:   getDuration("CART_TTL", 72*time.Hour),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@joyeria.test"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "Joy3ria!admin"),

		PaymentProvider: getEnv("PAYMENT_PROVIDER", "sandbox"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: getEnv("MAIL_FROM", "tienda@joyeria.test"),
	}
	if cfg.PaymentProvider == "stripe" && cfg.StripeSecretKey == "" {
		log.Println("[config] PAYMENT_PROVIDER=stripe without STRIPE_SECRET_KEY, falling back to sandbox")
		cfg.PaymentProvider = "sandbox"
	}

	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s REDIS_ADDR=%s PAYMENT_PROVIDER=%s SMTP_HOST=%s STRIPE_SECRET_KEY=%s",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.LogFile, cfg.RedisAddr, cfg.PaymentProvider, cfg.SMTPHost, mask(cfg.StripeSecretKey))
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("36h") or a plain number of hours.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if h, err := strconv.Atoi(v); err == nil && h > 0 {
		return time.Duration(h) * time.Hour
	}
	log.Printf("[config] invalid %s=%q, using %s", key, v, fallback)
	return fallback
}

func mask(secret string) string {
	if len(secret) <= 8 {
		if secret == "" {
			return ""
		}
		return "****"
	}
	return secret[:4] + "****"
}

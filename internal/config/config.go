package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderStripe    = "stripe"
	ProviderSimulated = "simulated"

	MailerMailerSend = "mailersend"
	MailerSMTP       = "smtp"
	MailerLog        = "log"

	DedupePolicyDedupe = "dedupe"
	DedupePolicyRepeat = "repeat"
)

type Config struct {
	AppEnv      string `mapstructure:"APP_ENV"`
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	BaseURL     string `mapstructure:"BASE_URL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	Currency     string `mapstructure:"CURRENCY"`
	MerchantName string `mapstructure:"MERCHANT_NAME"`

	CheckoutProvider    string        `mapstructure:"CHECKOUT_PROVIDER"`
	StripeSecretKey     string        `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string        `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	PaymentRequestTTL   time.Duration `mapstructure:"PAYMENT_REQUEST_TTL"`

	BookingDedupePolicy string        `mapstructure:"BOOKING_DEDUPE_POLICY"`
	IdempotencyKeyTTL   time.Duration `mapstructure:"IDEMPOTENCY_KEY_TTL"`

	MailProvider     string `mapstructure:"MAIL_PROVIDER"`
	MailerSendAPIKey string `mapstructure:"MAILERSEND_API_KEY"`
	MailFromName     string `mapstructure:"MAIL_FROM_NAME"`
	MailFromEmail    string `mapstructure:"MAIL_FROM_EMAIL"`
	SMTPHost         string `mapstructure:"SMTP_HOST"`
	SMTPPort         int    `mapstructure:"SMTP_PORT"`
	SMTPUser         string `mapstructure:"SMTP_USER"`
	SMTPPass         string `mapstructure:"SMTP_PASS"`
	SMTPTLS          bool   `mapstructure:"SMTP_TLS"`
}

// Load reads .env when present, then resolves every key env-first with the
// defaults below. Values are validated just enough to fail fast on the
// combinations that cannot boot.
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_URL", "clinicbook.db")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("TOKEN_TTL", "24h")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("CURRENCY", "EUR")
	viper.SetDefault("MERCHANT_NAME", "KH Therapy Clinic")
	viper.SetDefault("CHECKOUT_PROVIDER", ProviderSimulated)
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("PAYMENT_REQUEST_TTL", "72h")
	viper.SetDefault("BOOKING_DEDUPE_POLICY", DedupePolicyDedupe)
	viper.SetDefault("IDEMPOTENCY_KEY_TTL", "24h")
	viper.SetDefault("MAIL_PROVIDER", MailerLog)
	viper.SetDefault("MAILERSEND_API_KEY", "")
	viper.SetDefault("MAIL_FROM_NAME", "KH Therapy Clinic")
	viper.SetDefault("MAIL_FROM_EMAIL", "")
	viper.SetDefault("SMTP_HOST", "localhost")
	viper.SetDefault("SMTP_PORT", 1025)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASS", "")
	viper.SetDefault("SMTP_TLS", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.CheckoutProvider {
	case ProviderStripe:
		if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
			return nil, fmt.Errorf("CHECKOUT_PROVIDER=stripe requires STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET")
		}
	case ProviderSimulated:
	default:
		return nil, fmt.Errorf("unknown CHECKOUT_PROVIDER %q", cfg.CheckoutProvider)
	}
	switch cfg.BookingDedupePolicy {
	case DedupePolicyDedupe, DedupePolicyRepeat:
	default:
		return nil, fmt.Errorf("unknown BOOKING_DEDUPE_POLICY %q", cfg.BookingDedupePolicy)
	}
	cfg.Currency = strings.ToUpper(cfg.Currency)

	return &cfg, nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// Dedupe reports whether retried submissions with the same idempotency key
// collapse onto the original booking.
func (c *Config) Dedupe() bool { return c.BookingDedupePolicy == DedupePolicyDedupe }

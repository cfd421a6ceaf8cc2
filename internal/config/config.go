package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort uint16 `env:"REDIS_PORT" envDefault:"6379"   validate:"min=1000,max=65535"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"artmarket_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"artmarket_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"artmarket_db"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE"  envDefault:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY,required"     json:"-" validate:"required"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required" json:"-" validate:"required"`

	// Currency for checkout line items, lower-case ISO 4217.
	CheckoutCurrency string `env:"CHECKOUT_CURRENCY" envDefault:"usd" validate:"len=3,lowercase"`
	// Used for success/cancel redirects when the request carries no Origin header.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8085" validate:"url"`

	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

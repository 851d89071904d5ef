package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"LanceHub"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"lancehub"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	JWT struct {
		Secret string        `envconfig:"JWT_SECRET" required:"true"`
		TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
	}

	Razorpay struct {
		KeyID         string        `envconfig:"RAZORPAY_KEY_ID" required:"true"`
		KeySecret     string        `envconfig:"RAZORPAY_KEY_SECRET" required:"true"`
		WebhookSecret string        `envconfig:"RAZORPAY_WEBHOOK_SECRET" required:"true"`
		BaseURL       string        `envconfig:"RAZORPAY_BASE_URL"`
		Timeout       time.Duration `envconfig:"RAZORPAY_TIMEOUT" default:"10s"`
		Currency      string        `envconfig:"RAZORPAY_CURRENCY" default:"INR"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

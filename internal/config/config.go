package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const googleCallbackPath = "/google"

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	// FrontendBaseURL is used both to build the provider redirect URI
	// and as the error-redirect target.
	FrontendBaseURL string `env:"FRONTEND_BASE_URL,required"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required"`
	GoogleIssuer       string `env:"GOOGLE_ISSUER" envDefault:"https://accounts.google.com"`

	JWTSecret       string        `env:"JWT_SECRET,required"`
	TokenIssuer     string        `env:"TOKEN_ISSUER" envDefault:"login-service"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	DatabaseDSN string `env:"DATABASE_DSN,required"`
}

// Load parses and validates configuration from the environment.
// Validation failures are fatal at startup, never per-request.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.FrontendBaseURL = strings.TrimSuffix(cfg.FrontendBaseURL, "/")
	if _, err := url.ParseRequestURI(cfg.FrontendBaseURL); err != nil {
		return Config{}, fmt.Errorf("FRONTEND_BASE_URL is not a valid URL: %w", err)
	}

	if len(cfg.JWTSecret) < 32 {
		return Config{}, errors.New("JWT_SECRET must be at least 32 bytes")
	}

	return cfg, nil
}

// GoogleRedirectURL returns the redirect URI registered with the
// provider. It must exactly match the URI the frontend used to obtain
// the authorization code.
func (c Config) GoogleRedirectURL() string {
	return c.FrontendBaseURL + googleCallbackPath
}

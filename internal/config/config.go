package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config carries all process configuration. It is built once at startup and
// injected into the layers that need it.
type Config struct {
	Port            string
	JWTSecret       string
	TokenExpiration time.Duration
	DatabaseURL     string
	FrontendURL     string
	BaseURL         string
	UploadDir       string
}

// ErrMissingSecret is returned when JWT_SECRET is unset. The server must fail
// closed rather than fall back to a known default.
var ErrMissingSecret = errors.New("JWT_SECRET is not set")

// Load reads configuration from the environment.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingSecret
	}

	expiration := time.Hour
	if raw := os.Getenv("TOKEN_EXPIRATION"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_EXPIRATION %q: %w", raw, err)
		}
		expiration = d
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}

	return &Config{
		Port:            port,
		JWTSecret:       secret,
		TokenExpiration: expiration,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		FrontendURL:     os.Getenv("FRONTEND_URL"),
		BaseURL:         baseURL,
		UploadDir:       uploadDir,
	}, nil
}

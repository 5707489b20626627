package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"procurement/internal/apperr"
)

const devJWTSecret = "default_super_secret_key"

// Config carries every setting the API process needs. It is built once in
// main and handed to the components that need it.
type Config struct {
	Port    string
	GinMode string

	DB DBConfig

	JWTSecret []byte
	TokenTTL  time.Duration

	UserDirectoryFile string
	CORSOrigins       []string

	TextGen TextGenConfig
}

type DBConfig struct {
	Driver     string // postgres or sqlite
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

type TextGenConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// DSN returns the connection string for the configured driver.
func (c DBConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.SQLitePath
	}
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.Name + "?sslmode=" + c.SSLMode
}

// Load reads configs/.env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:    get("PORT", "8080"),
		GinMode: getenv("GIN_MODE"),
		DB: DBConfig{
			Driver:     get("DB_DRIVER", "postgres"),
			Host:       get("DB_HOST", "localhost"),
			Port:       get("DB_PORT", "5432"),
			User:       get("DB_USER", "postgres"),
			Password:   get("DB_PASSWORD", "postgres"),
			Name:       get("DB_NAME", "postgres"),
			SSLMode:    get("DB_SSLMODE", "disable"),
			SQLitePath: get("SQLITE_PATH", "procurement.db"),
		},
		UserDirectoryFile: get("USER_DIRECTORY_FILE", "configs/users.yml"),
		CORSOrigins:       splitList(get("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		TextGen: TextGenConfig{
			URL:    getenv("TEXTGEN_URL"),
			APIKey: getenv("TEXTGEN_API_KEY"),
		},
	}

	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "sqlite" {
		return nil, fmt.Errorf("%w: DB_DRIVER must be postgres or sqlite, got %q", apperr.ErrConfiguration, cfg.DB.Driver)
	}

	secret := getenv("JWT_SECRET")
	if secret == "" {
		if cfg.GinMode == "release" {
			return nil, fmt.Errorf("%w: JWT_SECRET environment variable is required in release mode", apperr.ErrConfiguration)
		}
		secret = devJWTSecret // development fallback only
	}
	cfg.JWTSecret = []byte(secret)

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("%w: invalid TOKEN_TTL: %v", apperr.ErrConfiguration, err)
	}
	if cfg.TextGen.Timeout, err = time.ParseDuration(get("TEXTGEN_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("%w: invalid TEXTGEN_TIMEOUT: %v", apperr.ErrConfiguration, err)
	}
	return cfg, nil
}

// SecureCookies reports whether auth cookies need Secure + SameSite=None.
func (c *Config) SecureCookies() bool {
	return c.GinMode == "release"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

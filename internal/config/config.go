package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

var ErrInsecureAPI = errors.New("API_BASE_URL must use https in production")

type Config struct {
	Env            string        `env:"ENV" envDefault:"development"`
	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"http://localhost:8080/api"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	AuthRateLimit  float64       `env:"AUTH_RATE_LIMIT" envDefault:"5"`
	AuthRateBurst  int           `env:"AUTH_RATE_BURST" envDefault:"10"`
	StoreDriver    string        `env:"STORE_DRIVER" envDefault:"sqlite"`
	StoreDSN       string        `env:"STORE_DSN" envDefault:"file:aerophilia.db"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogDev         bool          `env:"LOG_DEV" envDefault:"false"`
	FestivalStart  time.Time     `env:"FESTIVAL_START" envDefault:"2025-03-27T09:00:00+05:30"`
	Locale         string        `env:"LOCALE" envDefault:"en"`
}

func (c Config) IsProduction() bool { return c.Env == "production" }

// Language parses Locale, falling back to English.
func (c Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Load reads the environment. Callers load .env first if they want one.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Host == "" {
		return Config{}, fmt.Errorf("invalid API_BASE_URL %q", cfg.APIBaseURL)
	}
	if cfg.IsProduction() && u.Scheme != "https" && !isLoopback(u.Hostname()) {
		return Config{}, ErrInsecureAPI
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}

	return cfg, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

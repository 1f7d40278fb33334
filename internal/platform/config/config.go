package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	errInvalidPort          = errors.New("config: invalid PORT number")
	errInvalidFetchTimeout  = errors.New("config: FETCH_TIMEOUT must be positive")
	errRedirectsOutOfRange  = errors.New("config: MAX_REDIRECTS must be 0-20")
	errInvalidPageSize      = errors.New("config: MAX_PAGE_CHARS must be positive")
	errRequestTimeoutTooLow = errors.New("config: REQUEST_TIMEOUT must not be shorter than FETCH_TIMEOUT")
	errInvalidRateLimit     = errors.New("config: RATE_LIMIT_PER_HOUR must be at least 1")
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port              string
	LogLevel          string
	FetchTimeout      time.Duration
	MaxRedirects      int
	MaxPageChars      int
	RequestTimeout    time.Duration
	RateLimitPerHour  int
	RedisURL          string
	TrustForwardedFor bool
	OpenAI            OpenAIConfig
}

// OpenAIConfig configures the optional interpretation provider.
// An empty APIKey disables interpretation.
type OpenAIConfig struct {
	APIKey string
	APIURL string
	Model  string
}

// Load reads configuration from environment variables with sensible defaults.
// Files named .env in the working directory are loaded first when present;
// variables already set in the process environment take precedence.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return Config{}, fmt.Errorf("config: load .env: %w", err)
		}
	}

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "ERROR"),
		FetchTimeout:      getEnvAsDuration("FETCH_TIMEOUT", 12*time.Second),
		MaxRedirects:      getEnvAsInt("MAX_REDIRECTS", 4),
		MaxPageChars:      getEnvAsInt("MAX_PAGE_CHARS", 1_500_000),
		RequestTimeout:    getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),
		RateLimitPerHour:  getEnvAsInt("RATE_LIMIT_PER_HOUR", 30),
		RedisURL:          getEnv("REDIS_URL", ""),
		TrustForwardedFor: getEnvAsBool("TRUST_FORWARDED_FOR", true),
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			APIURL: getEnv("OPENAI_API_URL", "https://api.openai.com/v1"),
			Model:  getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		},
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("%w: got %s", errInvalidFetchTimeout, c.FetchTimeout)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 20 {
		return fmt.Errorf("%w: got %d", errRedirectsOutOfRange, c.MaxRedirects)
	}

	if c.MaxPageChars < 1 {
		return fmt.Errorf("%w: got %d", errInvalidPageSize, c.MaxPageChars)
	}

	if c.RequestTimeout < c.FetchTimeout {
		return fmt.Errorf("%w: %s < %s", errRequestTimeoutTooLow, c.RequestTimeout, c.FetchTimeout)
	}

	if c.RateLimitPerHour < 1 {
		return fmt.Errorf("%w: got %d", errInvalidRateLimit, c.RateLimitPerHour)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsBool(key string, fallback bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return v
}

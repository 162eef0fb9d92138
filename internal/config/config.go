package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
)

type Config struct {
	// GeminiAPIKey may be empty; the generate action then reports a missing
	// credential instead of the process refusing to start.
	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiAPIVersion string
	GeminiModel      string
	GeminiBackend    string

	WebAddr string

	LogLevel  string
	LogFormat string

	PreferIPv4     bool
	HTTPTimeout    time.Duration
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

func Load() (Config, error) {
	cfg := Config{
		GeminiBaseURL:    strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiAPIVersion: strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
		GeminiModel:      strings.TrimSpace(getEnv("GEMINI_MODEL", "gemini-2.5-flash-image")),
		GeminiBackend:    strings.ToLower(strings.TrimSpace(getEnv("GEMINI_BACKEND", BackendREST))),
		WebAddr:          strings.TrimSpace(getEnv("WEB_ADDR", ":8080")),
		LogLevel:         strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		LogFormat:        strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", "json"))),
		PreferIPv4:       getEnvBool("PREFER_IPV4", true),
		HTTPTimeout:      time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		RequestTimeout:   time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 240)) * time.Second,
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
	}

	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("API_KEY"))
	}

	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize applies defaults to zero values and validates enumerations. It is
// called again after command-line flags override fields.
func (c *Config) Normalize() error {
	switch c.GeminiBackend {
	case "":
		c.GeminiBackend = BackendREST
	case BackendREST, BackendSDK:
	default:
		return errors.New("GEMINI_BACKEND must be rest or sdk")
	}

	if c.WebAddr == "" {
		c.WebAddr = ":8080"
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 180 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 240 * time.Second
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10 << 20
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

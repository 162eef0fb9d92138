package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "API_KEY", "GEMINI_BASE_URL", "GEMINI_API_VERSION", "GEMINI_MODEL",
		"GEMINI_BACKEND", "WEB_ADDR", "LOG_LEVEL", "LOG_FORMAT", "PREFER_IPV4",
		"HTTP_TIMEOUT_SECONDS", "REQUEST_TIMEOUT_SECONDS", "MAX_UPLOAD_MB",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("missing key must not fail loading: %v", err)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("expected empty key")
	}
	if cfg.WebAddr != ":8080" || cfg.GeminiBackend != BackendREST {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RequestTimeout != 240*time.Second || cfg.HTTPTimeout != 180*time.Second {
		t.Errorf("unexpected timeouts: %s/%s", cfg.RequestTimeout, cfg.HTTPTimeout)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("unexpected upload ceiling: %d", cfg.MaxUploadBytes)
	}
	if cfg.GeminiModel != "gemini-2.5-flash-image" {
		t.Errorf("unexpected model: %s", cfg.GeminiModel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", " fallback-key ")
	t.Setenv("GEMINI_BACKEND", "SDK")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "-5")
	t.Setenv("MAX_UPLOAD_MB", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GeminiAPIKey != "fallback-key" {
		t.Errorf("expected API_KEY fallback, got %q", cfg.GeminiAPIKey)
	}
	if cfg.GeminiBackend != BackendSDK {
		t.Errorf("expected sdk backend, got %q", cfg.GeminiBackend)
	}
	if cfg.RequestTimeout != 240*time.Second {
		t.Errorf("non-positive timeout should fall back, got %s", cfg.RequestTimeout)
	}
	if cfg.MaxUploadBytes != 4<<20 {
		t.Errorf("unexpected upload ceiling: %d", cfg.MaxUploadBytes)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_BACKEND", "grpc")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

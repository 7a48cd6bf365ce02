package app

import (
	"testing"
	"time"
)

func TestEnvHelpers_Defaults(t *testing.T) {
	if got := EnvString("AUTHD_TEST_UNSET_STRING", "def"); got != "def" {
		t.Fatalf("EnvString default: %q", got)
	}
	if got := EnvBool("AUTHD_TEST_UNSET_BOOL", true); !got {
		t.Fatalf("EnvBool default: %v", got)
	}
	if got := EnvInt("AUTHD_TEST_UNSET_INT", 7); got != 7 {
		t.Fatalf("EnvInt default: %d", got)
	}
	if got := EnvDuration("AUTHD_TEST_UNSET_DUR", time.Minute); got != time.Minute {
		t.Fatalf("EnvDuration default: %v", got)
	}
	if got := EnvStringSlice("AUTHD_TEST_UNSET_SLICE", nil); got != nil {
		t.Fatalf("EnvStringSlice default: %v", got)
	}
}

func TestEnvHelpers_Parsing(t *testing.T) {
	t.Setenv("AUTHD_TEST_BOOL", "true")
	t.Setenv("AUTHD_TEST_INT", "42")
	t.Setenv("AUTHD_TEST_INT_BAD", "-3")
	t.Setenv("AUTHD_TEST_DUR", "90s")
	t.Setenv("AUTHD_TEST_SLICE", "a, b ,,c")

	if got := EnvBool("AUTHD_TEST_BOOL", false); !got {
		t.Fatalf("EnvBool: %v", got)
	}
	if got := EnvInt("AUTHD_TEST_INT", 1); got != 42 {
		t.Fatalf("EnvInt: %d", got)
	}
	// Non-positive values fall back to the default.
	if got := EnvInt("AUTHD_TEST_INT_BAD", 5); got != 5 {
		t.Fatalf("EnvInt bad: %d", got)
	}
	if got := EnvDuration("AUTHD_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("EnvDuration: %v", got)
	}
	got := EnvStringSlice("AUTHD_TEST_SLICE", nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("EnvStringSlice: %v", got)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AUTHD_HTTP_ADDR", "")
	t.Setenv("AUTHD_LOG_LEVEL", "")
	t.Setenv("AUTHD_DATABASE_URL", "")
	t.Setenv("AUTHD_CLEANUP_INTERVAL", "")
	t.Setenv("AUTHD_METRICS_ENABLED", "")

	cfg := LoadConfig()

	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("addr mismatch: %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level mismatch: %q", cfg.LogLevel)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("expected empty database url, got %q", cfg.DatabaseURL)
	}
	if cfg.CleanupInterval != 10*time.Minute {
		t.Fatalf("cleanup interval mismatch: %v", cfg.CleanupInterval)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("expected metrics enabled by default")
	}
}

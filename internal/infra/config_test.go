package infra

import (
	"errors"
	"testing"
	"time"

	"clipforge/internal/generation"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("RUNWARE_API_KEY", "rw-key")
	t.Setenv("MIRELO_API_KEY", "mi-key")
	t.Setenv("PORT", "")
	t.Setenv("MAX_WORKERS", "")
	t.Setenv("POLL_INTERVAL_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "8080")
	}
	if cfg.MaxWorkers != 3 {
		t.Fatalf("MaxWorkers mismatch: got %d want 3", cfg.MaxWorkers)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Fatalf("PollInterval mismatch: got %s want 10s", cfg.PollInterval)
	}
	if cfg.RunwareBaseURL != "https://api.runware.ai/v1" {
		t.Fatalf("RunwareBaseURL mismatch: got %q", cfg.RunwareBaseURL)
	}
	if cfg.MaxUploadBytes != 50<<20 {
		t.Fatalf("MaxUploadBytes mismatch: got %d", cfg.MaxUploadBytes)
	}
}

func TestLoadConfigClampsWorkerCount(t *testing.T) {
	t.Setenv("RUNWARE_API_KEY", "rw-key")
	t.Setenv("MAX_WORKERS", "-2")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.MaxWorkers != 1 {
		t.Fatalf("MaxWorkers mismatch: got %d want 1", cfg.MaxWorkers)
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := &Config{RunwareAPIKey: "rw-key"}
	if err := cfg.RequireCredentials(false); err != nil {
		t.Fatalf("video-only credentials rejected: %v", err)
	}

	err := cfg.RequireCredentials(true)
	var ce *generation.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *generation.ConfigurationError", err)
	}
	if ce.Key != "MIRELO_API_KEY" {
		t.Fatalf("Key = %q, want MIRELO_API_KEY", ce.Key)
	}

	cfg.RunwareAPIKey = ""
	err = cfg.RequireCredentials(false)
	if !errors.As(err, &ce) || ce.Key != "RUNWARE_API_KEY" {
		t.Fatalf("err = %v, want missing RUNWARE_API_KEY", err)
	}
}

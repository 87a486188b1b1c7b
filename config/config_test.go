package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("READ_TIMEOUT", "10s")
	os.Setenv("TEST_MODE", "true")
	os.Setenv("LOG_DIR", filepath.Join(dir, "logs"))
	os.Setenv("RESULTS_DIR", filepath.Join(dir, "results"))
	os.Setenv("TRANSCRIPT_WORKERS", "3")
	os.Setenv("YT_RATE_LIMIT_RPS", "2.5")
	defer func() {
		for _, key := range []string{
			"SERVER_PORT", "READ_TIMEOUT", "TEST_MODE", "LOG_DIR",
			"RESULTS_DIR", "TRANSCRIPT_WORKERS", "YT_RATE_LIMIT_RPS",
		} {
			os.Unsetenv(key)
		}
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("expected 9090, got %s", cfg.ServerPort)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("expected 10s, got %s", cfg.ReadTimeout)
	}
	if !cfg.TestMode {
		t.Error("expected test mode enabled")
	}
	if cfg.Job.TranscriptWorkers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Job.TranscriptWorkers)
	}
	if cfg.Upstream.RequestsPerSecond != 2.5 {
		t.Errorf("expected 2.5 rps, got %v", cfg.Upstream.RequestsPerSecond)
	}

	// Load must create the configured directories.
	if _, err := os.Stat(cfg.ResultsDir); err != nil {
		t.Errorf("results directory not created: %v", err)
	}
}

func TestValidateRejectsBadWorkerCount(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		LogDir:       filepath.Join(dir, "logs"),
		ResultsDir:   filepath.Join(dir, "results"),
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		Job:          JobConfig{TranscriptWorkers: 0},
		Upstream:     UpstreamConfig{RequestsPerSecond: 1},
	}

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero transcript workers")
	}
}

func TestSpacesEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  SpacesConfig
		want bool
	}{
		{"Unconfigured", SpacesConfig{}, false},
		{"Bucket only", SpacesConfig{Bucket: "b"}, false},
		{"Fully configured", SpacesConfig{Bucket: "b", AccessKey: "k", SecretKey: "s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8380 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8380)
	}
	if !cfg.API.Metrics {
		t.Error("API.Metrics should default to true")
	}
	if cfg.Engine.Damping != 0.85 {
		t.Errorf("Engine.Damping = %v, want 0.85", cfg.Engine.Damping)
	}
	if cfg.Engine.DecayBase != 0.95 {
		t.Errorf("Engine.DecayBase = %v, want 0.95", cfg.Engine.DecayBase)
	}
	if cfg.Engine.BatchChunk != 100 || cfg.Engine.BatchWorkers != 4 {
		t.Errorf("batch defaults = %d/%d, want 100/4", cfg.Engine.BatchChunk, cfg.Engine.BatchWorkers)
	}
	if cfg.Guardian.URL != "" {
		t.Errorf("Guardian.URL should default to empty (verification off), got %q", cfg.Guardian.URL)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if cfg.API.Port != 8380 {
		t.Errorf("missing file should yield defaults, got port %d", cfg.API.Port)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[api]
host = "0.0.0.0"
port = 9000

[engine]
damping = 0.25

[guardian]
url = "https://verify.example.com"
token = "secret"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Addr() != "0.0.0.0:9000" {
		t.Errorf("Addr = %q, want 0.0.0.0:9000", cfg.API.Addr())
	}
	if cfg.Engine.Damping != 0.25 {
		t.Errorf("Damping = %v, want 0.25", cfg.Engine.Damping)
	}
	// Unspecified fields keep defaults.
	if cfg.Engine.DecayBase != 0.95 {
		t.Errorf("DecayBase = %v, want default 0.95", cfg.Engine.DecayBase)
	}
	if cfg.Guardian.URL != "https://verify.example.com" {
		t.Errorf("Guardian.URL = %q", cfg.Guardian.URL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[engine]\ndamping = 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("damping outside (0,1) must fail validation")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"90s", 90 * time.Second},
		{"1h", time.Hour},
		{"", time.Minute},        // fallback
		{"bogus", time.Minute},   // fallback
		{"-5s", time.Minute},     // non-positive falls back
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseDuration(tt.input, time.Minute); got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

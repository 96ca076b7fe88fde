// Package daemon wires the reputation service together: configuration,
// storage, engine, and the HTTP API lifecycle.
package daemon

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration, loaded from TOML.
type Config struct {
	API      APIConfig      `toml:"api"`
	Engine   EngineConfig   `toml:"engine"`
	Guardian GuardianConfig `toml:"guardian"`
	Storage  StorageConfig  `toml:"storage"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
	Timeout string `toml:"timeout"` // per-request budget, Go duration
}

// EngineConfig configures scoring.
type EngineConfig struct {
	Damping       float64 `toml:"damping"`
	DecayBase     float64 `toml:"decay_base"`
	CacheTTL      string  `toml:"cache_ttl"` // Go duration
	BatchChunk    int     `toml:"batch_chunk"`
	BatchWorkers  int     `toml:"batch_workers"`
	CommunitySeed int64   `toml:"community_seed"`
}

// GuardianConfig configures the external content verifier. An empty URL
// disables verification (content scores stay neutral); "mock" selects the
// deterministic in-process verifier.
type GuardianConfig struct {
	URL     string `toml:"url"`
	Token   string `toml:"token"`
	Timeout string `toml:"timeout"` // Go duration, capped at 30s
}

// StorageConfig configures durable state.
type StorageConfig struct {
	Path string `toml:"path"` // sqlite file; empty = in-memory only
}

// DefaultConfig returns the defaults used when no config file exists.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8380,
			Metrics: true,
			Timeout: "60s",
		},
		Engine: EngineConfig{
			Damping:       0.85,
			DecayBase:     0.95,
			CacheTTL:      "1h",
			BatchChunk:    100,
			BatchWorkers:  4,
			CommunitySeed: 1,
		},
		Guardian: GuardianConfig{
			Timeout: "30s",
		},
		Storage: StorageConfig{
			Path: defaultStoragePath(),
		},
	}
}

// Load reads TOML config from path, falling back to defaults for absent
// fields. A missing file yields pure defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.Engine.Damping <= 0 || c.Engine.Damping >= 1 {
		return fmt.Errorf("engine.damping %v must be in (0,1)", c.Engine.Damping)
	}
	if c.Engine.DecayBase <= 0 || c.Engine.DecayBase > 1 {
		return fmt.Errorf("engine.decay_base %v must be in (0,1]", c.Engine.DecayBase)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SplitAddr splits a host:port flag value into config fields.
func SplitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("bad listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("bad port in %q", addr)
	}
	return host, port, nil
}

// ParseDuration parses a config duration with a fallback for empty or
// malformed values.
func ParseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dotrep.db"
	}
	return filepath.Join(home, ".dotrep", "dotrep.db")
}

// Package config loads the engine's recognized options (§6): savepath,
// saveinterval, bycount, and the opaque basis.<bkey>.* sub-sections
// passed through to the kernel factory.
package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the decoded engine configuration.
type Config struct {
	SavePath       string            `toml:"savepath"`
	SaveIntervalMS int64             `toml:"saveinterval"`
	ByCount        int               `toml:"bycount"`
	ReaderWorkers  int               `toml:"readerworkers"`
	Basis          map[string]BasisConfig `toml:"basis"`
}

// BasisConfig is one basis.<bkey> sub-section, passed opaquely to the
// kernel factory (§6) — the engine never interprets these values.
type BasisConfig map[string]string

// SaveInterval returns SaveIntervalMS as a time.Duration.
func (c Config) SaveInterval() time.Duration {
	return time.Duration(c.SaveIntervalMS) * time.Millisecond
}

// Default returns a Config with the spec's implicit defaults: saves
// every 5 minutes, progress logs every 1000 writes, 64 reader workers
// (inside the reader pool's allowed [53, 83] range).
func Default() Config {
	return Config{
		SavePath:       "data",
		SaveIntervalMS: int64(5 * time.Minute / time.Millisecond),
		ByCount:        1000,
		ReaderWorkers:  64,
		Basis:          map[string]BasisConfig{},
	}
}

// Load reads and decodes a TOML config file at path, filling in
// Default() for any field the file omits.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	// Decode over the defaults so an omitted field keeps its default.
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Package config handles loading and validation of the revd configuration
// file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

// Logging contains the logging configuration.
type Logging struct {
	// Format is the output format of the logger, "json" or "text".
	Format string `toml:"format,omitempty" envconfig:"LOG_FORMAT"`
	// Level is the minimum level that gets logged.
	Level string `toml:"level,omitempty" envconfig:"LOG_LEVEL"`
}

// Storage contains the configuration of the storage root.
type Storage struct {
	// Root is the directory all revisions are stored under. It is created
	// on startup if it does not exist.
	Root string `toml:"root,omitempty" envconfig:"STORAGE_ROOT"`
}

// Cfg is the main configuration of revd.
type Cfg struct {
	// ListenAddr is the TCP address the HTTP API listens on.
	ListenAddr string `toml:"listen_addr,omitempty" envconfig:"LISTEN_ADDR"`
	// PrometheusListenAddr is the TCP address of the optional monitoring
	// endpoint. Monitoring is disabled when empty.
	PrometheusListenAddr string `toml:"prometheus_listen_addr,omitempty" envconfig:"PROMETHEUS_LISTEN_ADDR"`

	Storage Storage `toml:"storage,omitempty"`
	Logging Logging `toml:"logging,omitempty"`
}

// Load decodes a TOML configuration and applies REVD_* environment variable
// overrides on top of it.
func Load(reader io.Reader) (Cfg, error) {
	var cfg Cfg

	if err := toml.NewDecoder(reader).Decode(&cfg); err != nil {
		return Cfg{}, fmt.Errorf("decode config: %w", err)
	}

	if err := envconfig.Process("revd", &cfg); err != nil {
		return Cfg{}, fmt.Errorf("envconfig: %w", err)
	}

	cfg.setDefaults()

	return cfg, nil
}

func (cfg *Cfg) setDefaults() {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":4000"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks the configuration for errors. It does not touch the
// filesystem; the storage root is created by the store on startup.
func (cfg *Cfg) Validate() error {
	if cfg.ListenAddr == "" {
		return errors.New("listen_addr is not set")
	}

	return cfg.validateStorage()
}

func (cfg *Cfg) validateStorage() error {
	if cfg.Storage.Root == "" {
		return errors.New("storage root is not set")
	}

	if !filepath.IsAbs(cfg.Storage.Root) {
		abs, err := filepath.Abs(cfg.Storage.Root)
		if err != nil {
			return fmt.Errorf("resolve storage root: %w", err)
		}
		cfg.Storage.Root = abs
	}

	if fi, err := os.Stat(cfg.Storage.Root); err == nil && !fi.IsDir() {
		return fmt.Errorf("storage root %q is not a directory", cfg.Storage.Root)
	}

	return nil
}

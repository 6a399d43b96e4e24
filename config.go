package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var CONFIG_FILE = "kmangle.toml"

const (
	FORMAT_TABLE = "table"
	FORMAT_PLAIN = "plain"
)

// Config mirrors kmangle.toml. Keys missing from the file keep their
// defaults.
type Config struct {
	Symbols SymbolsConfig `toml:"symbols"`
	Output  OutputConfig  `toml:"output"`
	Cache   CacheConfig   `toml:"cache"`
}

type SymbolsConfig struct {
	MaxLength int `toml:"max_length"` // >0: longer symbols are replaced by their _Sh alias
}

type OutputConfig struct {
	Format string `toml:"format"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func defaultConfig() Config {
	return Config{
		Output: OutputConfig{Format: FORMAT_TABLE},
		Cache:  CacheConfig{Enabled: true},
	}
}

// findConfig walks up from startDir looking for kmangle.toml.
func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, CONFIG_FILE)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig returns the configuration in effect for startDir and the path
// it was read from, which is empty when no kmangle.toml exists.
func loadConfig(startDir string) (Config, string, error) {
	cfg := defaultConfig()
	path, ok, err := findConfig(startDir)
	if err != nil || !ok {
		return cfg, "", err
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, path, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, path, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.validate(); err != nil {
		return cfg, path, fmt.Errorf("%s: %w", path, err)
	}
	// a relative cache dir is relative to the file declaring it
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, path, nil
}

func (c Config) validate() error {
	if c.Symbols.MaxLength < 0 {
		return fmt.Errorf("symbols.max_length must not be negative, got %d", c.Symbols.MaxLength)
	}
	return validateFormat(c.Output.Format)
}

func validateFormat(format string) error {
	switch format {
	case FORMAT_TABLE, FORMAT_PLAIN:
		return nil
	}
	return fmt.Errorf("unknown output format %q (table|plain)", format)
}

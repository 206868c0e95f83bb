package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up when no -config flag is given.
const FileName = "vvardenfell.yaml"

// Environment overrides, applied between the file and the flags.
const (
	EnvDataDir  = "VVARDENFELL_DATA"
	EnvCacheDir = "VVARDENFELL_CACHE_DIR"
	EnvLogLevel = "VVARDENFELL_LOG_LEVEL"
	EnvWorkers  = "VVARDENFELL_WORKERS"
)

// Load loads configuration with priority: defaults < file < environment < flags.
// The result is validated.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file in the working
// directory or the user config directory.
func findConfigFile() string {
	for _, path := range []string{
		FileName,
		filepath.Join(ConfigDir(), FileName),
	} {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory for the loader. It is
// also the parent of the default snapshot directory.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		// no home directory; keep state next to the working directory
		base, _ = filepath.Abs(".")
	}
	return filepath.Join(base, "vvardenfell")
}

// loadFromFile merges a YAML file into cfg. Unknown keys are an error so
// that a misspelt setting does not silently fall back to its default. An
// empty file leaves cfg unchanged.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv applies environment overrides. lookup is os.LookupEnv outside
// tests.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		cfg.Data.DataDir = v
	}
	if v, ok := lookup(EnvCacheDir); ok && v != "" {
		cfg.Cache.Dir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		cfg.Loading.Workers = n
	}
	return nil
}

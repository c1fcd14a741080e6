package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const appDirName = "totalmix-osc-bridge"

// Config is the bridge's only durable state. Everything else lives in the
// console or in the in-memory cache.
type Config struct {
	RunAtStartup bool `yaml:"run_at_startup"`
}

func Default() Config {
	return Config{RunAtStartup: false}
}

// DefaultPath returns the per-user location of the config file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, "config.yaml"), nil
}

// Load reads the config at path. A missing file is not an error; defaults
// are returned so a fresh install works without setup.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes the whole config record to path, creating parent directories
// as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

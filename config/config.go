// Package config loads the clinvoice.toml configuration file.
//
// The file is located by searching, in order: an explicitly given path,
// <data directory>/clinvoice.toml, ./clinvoice.toml, and
// ~/.config/clinvoice/clinvoice.toml. Keys are addressed with
// dot-separated paths ("contract.hourly_rate").
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

// Config provides typed access to the loaded configuration.
type Config struct {
	k    *koanf.Koanf
	path string
}

// Load locates and parses the configuration file. configFile, when
// non-empty, must point at an existing file; dataDir, when non-empty, is
// searched before the default locations.
func Load(configFile, dataDir string) (*Config, error) {
	path, err := findConfigPath(configFile, dataDir)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	return &Config{k: k, path: path}, nil
}

func findConfigPath(configFile, dataDir string) (string, error) {
	if configFile != "" {
		log.Tracef("user specified config file %s", configFile)
		if _, err := os.Stat(configFile); err != nil {
			return "", fmt.Errorf("specified config file does not exist: %s", configFile)
		}
		return configFile, nil
	}

	var candidates []string
	if dataDir != "" {
		log.Tracef("user specified directory %s", dataDir)
		candidates = append(candidates, filepath.Join(dataDir, "clinvoice.toml"))
	}
	candidates = append(candidates, "clinvoice.toml")
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "clinvoice", "clinvoice.toml"))
	}

	for _, candidate := range candidates {
		log.Tracef("checking config candidate %s", candidate)
		if _, err := os.Stat(candidate); err == nil {
			log.Debugf("found configuration %s", candidate)
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no config file found in searched locations")
}

// Path returns the location the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Has reports whether key exists in the configuration.
func (c *Config) Has(key string) bool {
	return c.k.Exists(key)
}

// String returns the string value at key, or the empty string.
func (c *Config) String(key string) string {
	return c.k.String(key)
}

// StringOr returns the string value at key, or def when the key is
// absent.
func (c *Config) StringOr(key, def string) string {
	if !c.k.Exists(key) {
		return def
	}
	return c.k.String(key)
}

// Float64Or returns the float value at key (integers are converted), or
// def when the key is absent.
func (c *Config) Float64Or(key string, def float64) float64 {
	if !c.k.Exists(key) {
		return def
	}
	return c.k.Float64(key)
}

// IntOr returns the integer value at key, or def when the key is absent.
func (c *Config) IntOr(key string, def int) int {
	if !c.k.Exists(key) {
		return def
	}
	return c.k.Int(key)
}

// Keys returns all leaf keys under the given prefix, relative to it.
// Keys("generator") lists the configured generator names and their keys.
func (c *Config) Keys(prefix string) []string {
	return c.k.Cut(prefix).Keys()
}

// Flatten returns every scalar value keyed by its dot-separated path.
// Used to expose the whole configuration to invoice templates.
func (c *Config) Flatten() map[string]interface{} {
	return c.k.All()
}

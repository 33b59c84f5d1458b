// Package config provides configuration loading, defaults, and validation for
// chemsim.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CHEMSIM"

// configFileNames are the files searched for when no explicit path is given.
// Only names with a YAML extension match, so the chemsim binary sitting in the
// working directory is never read as configuration.
var configFileNames = []string{"chemsim.yaml", "chemsim.yml"}

// newViper builds a Viper instance with YAML file type, the CHEMSIM_ env
// prefix and a key replacer mapping "." → "_", so that "cache.redis.addr"
// resolves to CHEMSIM_CACHE_REDIS_ADDR.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaultKeys() {
		v.SetDefault(key, value)
	}
	return v
}

// SearchPaths returns the directories searched for chemsim.yaml when Load is
// called without an explicit path.
func SearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".chemsim"))
	}
	return append(paths, "/etc/chemsim")
}

// Load reads the YAML file at configPath, merges CHEMSIM_* environment
// overrides, applies defaults and validates the result.
//
// An empty configPath searches SearchPaths for chemsim.yaml or chemsim.yml; finding no file
// there is not an error and the configuration is built from the environment
// and defaults alone.  An explicit path that cannot be read is an error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	if configPath == "" {
		found, ok := findConfigFile(SearchPaths())
		if !ok {
			return unmarshalAndFinalize(v)
		}
		configPath = found
	}

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// findConfigFile returns the first regular file named in configFileNames
// found in dirs, in order.
func findConfigFile(dirs []string) (string, bool) {
	for _, dir := range dirs {
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path, true
			}
		}
	}
	return "", false
}

// LoadFromEnv builds a Config from CHEMSIM_* environment variables and
// defaults only.
//
//	CHEMSIM_<SECTION>_<FIELD>   e.g.  CHEMSIM_SIMILARITY_WORKERS, CHEMSIM_CACHE_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// unmarshalAndFinalize unmarshals viper state into a Config, applies defaults
// and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending

// Package config loads the client/CLI configuration from a YAML file and
// MAINTOPS_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the client application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Debug   bool          `mapstructure:"debug"`
}

type SessionConfig struct {
	// Variant selects the permission table: "pc" or "h5".
	Variant string `mapstructure:"variant"`
	// StoragePath is the encrypted session file; empty means in-memory only.
	StoragePath string `mapstructure:"storage_path"`
	// StorageSecret encrypts persisted tokens.
	StorageSecret     string        `mapstructure:"storage_secret"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

// Load reads configuration from the given file (optional) plus environment
// overrides, applying defaults for anything unset.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "http://localhost:8080/api/v1")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.debug", false)
	v.SetDefault("session.variant", "pc")
	v.SetDefault("session.storage_path", defaultStoragePath())
	v.SetDefault("session.storage_secret", "sstcp-maintenance-system")
	v.SetDefault("session.heartbeat_interval", time.Minute)

	v.SetEnvPrefix("MAINTOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("maintops")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".maintops"))
		}
		// A missing default config file is fine; defaults and env apply.
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".maintops-session.json"
	}
	return filepath.Join(home, ".maintops", "session.json")
}

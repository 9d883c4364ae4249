// Package config loads pharmstock settings through viper.
//
// Precedence, highest first: bound command-line flags, PHARMSTOCK_* env
// vars, an optional pharmstock.yaml config file, defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyDB       = "db"
	KeyLogLevel = "log_level"
	KeyEnv      = "env"
)

// EnvPrefix prefixes every environment variable, e.g. PHARMSTOCK_DB.
const EnvPrefix = "PHARMSTOCK"

// Config is the resolved configuration.
type Config struct {
	DBPath   string // SQLite file location
	LogLevel string // trace, debug, info, warn, error
	Env      string // development, production
}

// New returns a viper instance with defaults, env binding and config file
// search paths set. With no paths given it searches the working directory
// and $HOME/.config/pharmstock.
func New(paths ...string) *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyDB, "inventory.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyEnv, "production")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("pharmstock")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "$HOME/.config/pharmstock"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	return v
}

// Load reads the config file if one exists and resolves all settings.
// A missing file is not an error; a malformed one is.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DBPath:   strings.TrimSpace(v.GetString(KeyDB)),
		LogLevel: v.GetString(KeyLogLevel),
		Env:      v.GetString(KeyEnv),
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("config: %s must not be empty", KeyDB)
	}

	return cfg, nil
}

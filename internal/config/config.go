// Package config loads clinicflow settings from defaults, an optional YAML
// file, CLINICFLOW_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CLINICFLOW_DB.
const EnvPrefix = "CLINICFLOW"

// Config holds the resolved settings.
type Config struct {
	DB       string `mapstructure:"db"`
	DataFile string `mapstructure:"data_file"`
	LogLevel string `mapstructure:"log_level"`
	Format   string `mapstructure:"format"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"db":        "db",
	"data-file": "data_file",
	"format":    "format",
	"log-level": "log_level",
}

// Load resolves the configuration. path may be empty, in which case no file
// is read. flags may be nil; flags not present in the set are skipped and
// only flags the user actually set override the other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("db", "clinicflow.db")
	v.SetDefault("data_file", "dbPacientes.txt")
	v.SetDefault("log_level", "info")
	v.SetDefault("format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, key := range flagKeys {
		// AutomaticEnv alone is not seen by Unmarshal.
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Format = strings.ToLower(cfg.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every value is one the CLI understands.
func (c *Config) Validate() error {
	var errs []error
	if c.DB == "" {
		errs = append(errs, errors.New("db must not be empty"))
	}
	if c.DataFile == "" {
		errs = append(errs, errors.New("data_file must not be empty"))
	}
	switch c.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("format must be \"text\" or \"json\", got %q", c.Format))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
}

// Package config provides configuration types and defaults for turbo-gherkin-ls.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment variable, e.g. TGLS_LOG_LEVEL
const EnvPrefix = "TGLS"

// Config holds all configuration options for the server.
type Config struct {
	LogLevel         string     `mapstructure:"log_level"`
	LogFile          string     `mapstructure:"log_file"` // empty logs to stderr
	Registry         string     `mapstructure:"registry"` // YAML or JSON registry loaded at startup
	ImportDirectives []string   `mapstructure:"import_directives"`
	Memo             MemoConfig `mapstructure:"memo"`
}

// MemoConfig controls the syntax check cache.
type MemoConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		LogLevel:         "info",
		ImportDirectives: []string{"import", "импорт"},
		Memo: MemoConfig{
			TTL: 5 * time.Minute,
		},
	}
}

// SetDefaults registers Defaults with v so environment variables bind to every key.
func SetDefaults(v *viper.Viper) {
	defaults := Defaults()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("registry", defaults.Registry)
	v.SetDefault("import_directives", defaults.ImportDirectives)
	v.SetDefault("memo.ttl", defaults.Memo.TTL)
}

// Load resolves configuration from flags already bound to v, the environment
// and, when path is set, a config file.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks every option and reports all problems at once.
func (c Config) Validate() error {
	var errs error
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.Memo.TTL < 0 {
		errs = multierr.Append(errs, fmt.Errorf("memo.ttl must not be negative, got %s", c.Memo.TTL))
	}
	for i, directive := range c.ImportDirectives {
		if strings.TrimSpace(directive) == "" || strings.ContainsAny(directive, " \t") {
			errs = multierr.Append(errs, fmt.Errorf("import_directives[%d]: %q must be a single word", i, directive))
		}
	}
	return errs
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() zapcore.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func parseLevel(text string) (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return level, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

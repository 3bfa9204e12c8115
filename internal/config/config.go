// Package config loads wirechan-inspect configuration from YAML files and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/wippyai/wirechan/channel"
	"github.com/wippyai/wirechan/codec"
)

// EnvPrefix prefixes environment overrides, e.g. WIRECHAN_LOG_LEVEL=debug.
const EnvPrefix = "WIRECHAN"

// Config is the root configuration.
type Config struct {
	// Log holds logging configuration
	Log LogConfig `mapstructure:"log"`

	// Limits bound lengths accepted by codecs
	Limits LimitsConfig `mapstructure:"limits"`

	// Channel holds channel options
	Channel ChannelConfig `mapstructure:"channel"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	Rotation    RotationConfig `mapstructure:"rotation"`
	Development bool           `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// LimitsConfig bounds decoded list counts and string lengths.
type LimitsConfig struct {
	MaxListLen   int `mapstructure:"max_list_len"`
	MaxStringLen int `mapstructure:"max_string_len"`
}

// ChannelConfig holds per-channel settings such as the dispatch depth bound.
type ChannelConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	limits := codec.DefaultLimits()
	return &Config{
		Log: LogConfig{
			Level:   "warn",
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: RotationConfig{
				Filename:   "logs/wirechan.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Limits: LimitsConfig{
			MaxListLen:   limits.MaxListLen,
			MaxStringLen: limits.MaxStringLen,
		},
		Channel: ChannelConfig{MaxDepth: channel.DefaultMaxDepth},
	}
}

// Load reads configuration from path, or from wirechan.yaml in the working
// directory or ~/.wirechan when path is empty. A missing file is not an
// error. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("limits.max_list_len", cfg.Limits.MaxListLen)
	v.SetDefault("limits.max_string_len", cfg.Limits.MaxStringLen)
	v.SetDefault("channel.max_depth", cfg.Channel.MaxDepth)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wirechan")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".wirechan"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "":
		c.Log.Format = "console"
	case "console", "json":
	default:
		return fmt.Errorf("invalid log.format: %q", c.Log.Format)
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
	if c.Limits.MaxListLen <= 0 || c.Limits.MaxStringLen <= 0 {
		return fmt.Errorf("limits must be positive: list=%d string=%d", c.Limits.MaxListLen, c.Limits.MaxStringLen)
	}
	if c.Channel.MaxDepth <= 0 {
		return fmt.Errorf("invalid channel.max_depth: %d", c.Channel.MaxDepth)
	}
	return nil
}

// CodecLimits converts the configured limits for codec use.
func (c *Config) CodecLimits() codec.Limits {
	return codec.Limits{
		MaxListLen:   c.Limits.MaxListLen,
		MaxStringLen: c.Limits.MaxStringLen,
	}
}

// ChannelOptions returns the channel options implied by c.
func (c *Config) ChannelOptions() []channel.Option {
	return []channel.Option{
		channel.WithLimits(c.CodecLimits()),
		channel.WithMaxDepth(c.Channel.MaxDepth),
	}
}

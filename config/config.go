// Package config loads xamlai settings from defaults, an optional config
// file, an optional .env file, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "XAMLAI"

// Provider names accepted in Config.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
)

type Config struct {
	Provider    string          `mapstructure:"provider"`
	SourceLang  string          `mapstructure:"source_lang"`
	TargetLang  string          `mapstructure:"lang"`
	Concurrency int             `mapstructure:"concurrency"`
	CallTimeout time.Duration   `mapstructure:"call_timeout"`
	OpenAI      OpenAIConfig    `mapstructure:"openai"`
	Google      GoogleConfig    `mapstructure:"google"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Log         LogConfig       `mapstructure:"log"`
	Server      ServerConfig    `mapstructure:"server"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
}

type GoogleConfig struct {
	APIKey          string `mapstructure:"api_key"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// RateLimitConfig enables client-side rate limiting when RPM is positive.
type RateLimitConfig struct {
	RPM   int `mapstructure:"rpm"`
	Burst int `mapstructure:"burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// Options controls where Load looks for settings.
type Options struct {
	// ConfigFile is an explicit config file path. Empty means no file.
	ConfigFile string

	// DotEnvFile is loaded into the process environment when it exists.
	// Variables already set to a non-empty value are left alone.
	DotEnvFile string

	// Flags maps config keys ("openai.model") to command-line flags.
	// A flag only overrides other sources when it was set explicitly.
	Flags map[string]*pflag.Flag
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("source_lang", "English")
	v.SetDefault("lang", "")
	v.SetDefault("concurrency", 1)
	v.SetDefault("call_timeout", 60*time.Second)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.temperature", 0)

	v.SetDefault("google.api_key", "")
	v.SetDefault("google.credentials_file", "")

	v.SetDefault("rate_limit.rpm", 0)
	v.SetDefault("rate_limit.burst", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_bytes", 10<<20)
}

// Load builds a Config. Sources, lowest precedence first: defaults, the
// config file, the environment (after .env has been merged into it),
// explicitly set flags.
func Load(opts Options) (*Config, error) {
	if opts.DotEnvFile != "" {
		if err := loadDotEnv(opts.DotEnvFile); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The bare OpenAI variables are honoured as well as the prefixed one.
	if err := v.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("google.credentials_file", EnvPrefix+"_GOOGLE_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS"); err != nil {
		return nil, err
	}

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %q: %w", flag.Name, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	return cfg, nil
}

// loadDotEnv merges KEY=VALUE pairs from path into the environment.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if os.Getenv(name) != "" {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks settings that do not depend on the command being run.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGoogle:
	default:
		return fmt.Errorf("unknown provider %q (want %q or %q)", c.Provider, ProviderOpenAI, ProviderGoogle)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (want console or json)", c.Log.Format)
	}

	if c.CallTimeout < 0 {
		return errors.New("call_timeout must not be negative")
	}
	if c.RateLimit.RPM < 0 {
		return errors.New("rate_limit.rpm must not be negative")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.max_upload_bytes must be positive")
	}

	return nil
}

// CheckCredentials reports a missing credential for the selected provider.
func (c *Config) CheckCredentials() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return errors.New("OpenAI API key is not set (use OPENAI_KEY or OPENAI_API_KEY)")
		}
	case ProviderGoogle:
		// Application default credentials are used when both are empty.
	}
	return nil
}

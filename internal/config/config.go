package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	AIProvider string `mapstructure:"ai_provider" yaml:"ai_provider"`

	AnthropicAPIKey  string `mapstructure:"anthropic_api_key" yaml:"anthropic_api_key,omitempty"`
	AnthropicModel   string `mapstructure:"anthropic_model" yaml:"anthropic_model"`
	AnthropicBaseURL string `mapstructure:"anthropic_base_url" yaml:"anthropic_base_url"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key" yaml:"openai_api_key,omitempty"`
	OpenAIModel   string `mapstructure:"openai_model" yaml:"openai_model"`
	OpenAIBaseURL string `mapstructure:"openai_base_url" yaml:"openai_base_url"`

	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	HTTPTimeoutSec int     `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	// Reports are written to <report_dir>/<analysis id>/
	ReportDir string `mapstructure:"report_dir" yaml:"report_dir"`
}

// Keys lists every configuration key, in display order.
var Keys = []string{
	"ai_provider",
	"anthropic_api_key", "anthropic_model", "anthropic_base_url",
	"openai_api_key", "openai_model", "openai_base_url",
	"max_tokens", "temperature", "http_timeout_sec",
	"report_dir",
}

// DefaultPath returns ~/.autoinsight/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".autoinsight", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.autoinsight/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	// config may carry API keys
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is loaded first and never overrides variables already set.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("AUTOINSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Provider keys are also honoured under their conventional names.
	_ = v.BindEnv("anthropic_api_key", "AUTOINSIGHT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("openai_api_key", "AUTOINSIGHT_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("ai_provider", "AUTOINSIGHT_AI_PROVIDER", "AI_PROVIDER")

	// Defaults
	v.SetDefault("ai_provider", "anthropic")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("anthropic_model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic_base_url", "https://api.anthropic.com")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4-turbo-preview")
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("max_tokens", 4000)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("http_timeout_sec", 120)
	v.SetDefault("report_dir", "reports")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// A missing file is fine; a malformed one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.AIProvider = strings.ToLower(strings.TrimSpace(c.AIProvider))
	return &c, nil
}

// Set assigns a single key by name, as used by `config set`.
func (c *Global) Set(key, value string) error {
	var err error
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "ai_provider":
		c.AIProvider = strings.ToLower(strings.TrimSpace(value))
	case "anthropic_api_key":
		c.AnthropicAPIKey = value
	case "anthropic_model":
		c.AnthropicModel = value
	case "anthropic_base_url":
		c.AnthropicBaseURL = value
	case "openai_api_key":
		c.OpenAIAPIKey = value
	case "openai_model":
		c.OpenAIModel = value
	case "openai_base_url":
		c.OpenAIBaseURL = value
	case "max_tokens":
		_, err = fmt.Sscan(value, &c.MaxTokens)
	case "temperature":
		_, err = fmt.Sscan(value, &c.Temperature)
	case "http_timeout_sec":
		_, err = fmt.Sscan(value, &c.HTTPTimeoutSec)
	case "report_dir":
		c.ReportDir = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// Redacted returns a copy safe for printing: API keys are masked.
func (c *Global) Redacted() Global {
	r := *c
	r.AnthropicAPIKey = mask(r.AnthropicAPIKey)
	r.OpenAIAPIKey = mask(r.OpenAIAPIKey)
	return r
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

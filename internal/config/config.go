// Package config provides the relay's process configuration.
package config

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gptyar/telegram-relay/internal/conversation"
	"github.com/gptyar/telegram-relay/internal/store"
	relayerr "github.com/gptyar/telegram-relay/pkg/errors"
	"github.com/gptyar/telegram-relay/pkg/logger"
)

// Config holds all configuration for the application. It is built once by
// Load and passed to constructors; nothing mutates it afterwards.
type Config struct {
	// Server settings
	Port               string        `mapstructure:"port"`
	AdminPort          string        `mapstructure:"admin_port"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	PublicURL          string        `mapstructure:"public_url"`

	// Telegram settings
	TelegramBotToken      string        `mapstructure:"telegram_bot_token"`
	TelegramAPIBase       string        `mapstructure:"telegram_api_base"`
	TelegramWebhookSecret string        `mapstructure:"telegram_webhook_secret"`
	TelegramTimeout       time.Duration `mapstructure:"telegram_timeout"`

	// Inference settings
	InferenceProvider  string        `mapstructure:"inference_provider"`
	InferenceAPIKey    string        `mapstructure:"inference_api_key"`
	OpenAIAPIKey       string        `mapstructure:"openai_api_key"`
	AnthropicAPIKey    string        `mapstructure:"anthropic_api_key"`
	InferenceBaseURL   string        `mapstructure:"inference_base_url"`
	InferenceModel     string        `mapstructure:"inference_model"`
	InferenceMaxTokens int           `mapstructure:"inference_max_tokens"`
	InferenceTimeout   time.Duration `mapstructure:"inference_timeout"`

	// Conversation settings
	SystemPrompt  string `mapstructure:"system_prompt"`
	HistoryCap    int    `mapstructure:"history_cap"`
	FallbackReply string `mapstructure:"fallback_reply"`

	// Store settings
	StoreBackend string `mapstructure:"store_backend"`
	StorePath    string `mapstructure:"store_path"`
	NATSURL      string `mapstructure:"nats_url"`
	NATSCAFile   string `mapstructure:"nats_ca_file"`
	NATSCertFile string `mapstructure:"nats_cert_file"`
	NATSKeyFile  string `mapstructure:"nats_key_file"`
	NATSToken    string `mapstructure:"nats_token"`
	NATSKVBucket string `mapstructure:"nats_kv_bucket"`

	// Rate limiting (0 disables)
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`

	// Logging
	LogLevel string `mapstructure:"log_level"`

	// Tracing
	TracingEndpoint string `mapstructure:"tracing_endpoint"`
	TracingEnabled  bool   `mapstructure:"tracing_enabled"`
}

// StoreBackends lists the accepted STORE_BACKEND values.
var StoreBackends = []string{"nats", "bolt", "sqlite", "memory"}

var defaults = map[string]any{
	"port":                    "8080",
	"admin_port":              "9090",
	"server_read_timeout":     30 * time.Second,
	"server_write_timeout":    120 * time.Second,
	"public_url":              "",
	"telegram_bot_token":      "",
	"telegram_api_base":       "https://api.telegram.org",
	"telegram_webhook_secret": "",
	"telegram_timeout":        10 * time.Second,
	"inference_provider":      "openai",
	"inference_api_key":       "",
	"openai_api_key":          "",
	"anthropic_api_key":       "",
	"inference_base_url":      "",
	"inference_model":         "",
	"inference_max_tokens":    1024,
	"inference_timeout":       60 * time.Second,
	"system_prompt":           conversation.DefaultSystemPrompt,
	"history_cap":             conversation.DefaultCap,
	"fallback_reply":          conversation.DefaultFallbackReply,
	"store_backend":           "nats",
	"store_path":              "data/conversations.db",
	"nats_url":                "nats://localhost:4222",
	"nats_ca_file":            "",
	"nats_cert_file":          "",
	"nats_key_file":           "",
	"nats_token":              "",
	"nats_kv_bucket":          "CONVERSATIONS",
	"rate_limit_requests":     0,
	"rate_limit_window":       time.Minute,
	"log_level":               "info",
	"tracing_endpoint":        "localhost:4318",
	"tracing_enabled":         false,
}

// Load reads configuration with Read and validates it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, relayerr.Errorf(relayerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// Read reads configuration from environment variables (TELEGRAM_BOT_TOKEN,
// STORE_BACKEND, ...) and, when path is non-empty, from a config file whose
// keys are the lower-case variable names. The result is not validated;
// operator tooling uses it when only part of the configuration matters.
func Read(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Environment
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, relayerr.Errorf(relayerr.CodeConfigValidateInvalidValue, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, relayerr.Errorf(relayerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	cfg.InferenceProvider = strings.ToLower(strings.TrimSpace(cfg.InferenceProvider))
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if cfg.InferenceAPIKey == "" {
		switch cfg.InferenceProvider {
		case "openai":
			cfg.InferenceAPIKey = cfg.OpenAIAPIKey
		case "anthropic":
			cfg.InferenceAPIKey = cfg.AnthropicAPIKey
		}
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors, collecting every
// issue rather than stopping at the first one. The bot token is not checked
// here: its absence is reported per request by webhook registration.
func (c *Config) Validate() []error {
	var errs []error

	switch c.InferenceProvider {
	case "openai", "anthropic":
	default:
		errs = append(errs, relayerr.Errorf(relayerr.CodeConfigValidateInvalidValue,
			"config: INFERENCE_PROVIDER must be one of [openai, anthropic], got %q", c.InferenceProvider))
	}
	if c.InferenceAPIKey == "" {
		errs = append(errs, relayerr.New(relayerr.CodeConfigBindingMissing,
			"config: inference binding missing (set INFERENCE_API_KEY or the provider key)"))
	}

	if !slices.Contains(StoreBackends, c.StoreBackend) {
		errs = append(errs, relayerr.Errorf(relayerr.CodeConfigBindingMissing,
			"config: STORE_BACKEND must be one of %v, got %q", StoreBackends, c.StoreBackend))
	}
	if (c.StoreBackend == "bolt" || c.StoreBackend == "sqlite") && c.StorePath == "" {
		errs = append(errs, relayerr.New(relayerr.CodeConfigBindingMissing,
			"config: STORE_PATH is required for embedded store backends"))
	}
	if c.StoreBackend == "nats" && c.NATSURL == "" {
		errs = append(errs, relayerr.New(relayerr.CodeConfigBindingMissing,
			"config: NATS_URL is required for the nats store backend"))
	}

	if c.HistoryCap < 1 {
		errs = append(errs, relayerr.Errorf(relayerr.CodeConfigValidateInvalidValue,
			"config: HISTORY_CAP must be at least 1, got %d", c.HistoryCap))
	}
	if strings.TrimSpace(c.SystemPrompt) == "" {
		errs = append(errs, relayerr.New(relayerr.CodeConfigValidateInvalidValue,
			"config: SYSTEM_PROMPT must not be empty"))
	}
	if c.FallbackReply == "" {
		errs = append(errs, relayerr.New(relayerr.CodeConfigValidateInvalidValue,
			"config: FALLBACK_REPLY must not be empty"))
	}
	if c.InferenceTimeout <= 0 {
		errs = append(errs, relayerr.Errorf(relayerr.CodeConfigValidateInvalidValue,
			"config: INFERENCE_TIMEOUT must be positive, got %s", c.InferenceTimeout))
	}
	if c.RateLimitRequests < 0 {
		errs = append(errs, relayerr.Errorf(relayerr.CodeConfigValidateInvalidValue,
			"config: RATE_LIMIT_REQUESTS must not be negative, got %d", c.RateLimitRequests))
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindow <= 0 {
		errs = append(errs, relayerr.Errorf(relayerr.CodeConfigValidateInvalidValue,
			"config: RATE_LIMIT_WINDOW must be positive when rate limiting is enabled"))
	}

	return errs
}

// StoreOptions returns the settings for opening the configured store backend.
func (c *Config) StoreOptions(log *logger.Logger) store.Options {
	return store.Options{
		Path: c.StorePath,
		NATS: store.NATSOptions{
			URL:      c.NATSURL,
			CAFile:   c.NATSCAFile,
			CertFile: c.NATSCertFile,
			KeyFile:  c.NATSKeyFile,
			Token:    c.NATSToken,
			Bucket:   c.NATSKVBucket,
		},
		Logger: log,
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gptyar/telegram-relay/internal/conversation"
	relayerr "github.com/gptyar/telegram-relay/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "9090", cfg.AdminPort)
	assert.Equal(t, "openai", cfg.InferenceProvider)
	assert.Equal(t, "sk-test", cfg.InferenceAPIKey)
	assert.Equal(t, "nats", cfg.StoreBackend)
	assert.Equal(t, conversation.DefaultCap, cfg.HistoryCap)
	assert.Equal(t, conversation.DefaultSystemPrompt, cfg.SystemPrompt)
	assert.Equal(t, conversation.DefaultFallbackReply, cfg.FallbackReply)
	assert.Equal(t, 60*time.Second, cfg.InferenceTimeout)
	assert.Equal(t, 0, cfg.RateLimitRequests)
	assert.Empty(t, cfg.TelegramBotToken)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("INFERENCE_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("STORE_BACKEND", "bolt")
	t.Setenv("STORE_PATH", "/tmp/relay.db")
	t.Setenv("HISTORY_CAP", "6")
	t.Setenv("INFERENCE_TIMEOUT", "15s")
	t.Setenv("RATE_LIMIT_REQUESTS", "20")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.InferenceProvider)
	assert.Equal(t, "ak-test", cfg.InferenceAPIKey)
	assert.Equal(t, "123:abc", cfg.TelegramBotToken)
	assert.Equal(t, "bolt", cfg.StoreBackend)
	assert.Equal(t, "/tmp/relay.db", cfg.StorePath)
	assert.Equal(t, 6, cfg.HistoryCap)
	assert.Equal(t, 15*time.Second, cfg.InferenceTimeout)
	assert.Equal(t, 20, cfg.RateLimitRequests)
}

func TestLoadExplicitKeyWins(t *testing.T) {
	t.Setenv("INFERENCE_API_KEY", "explicit")
	t.Setenv("OPENAI_API_KEY", "fallback")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.InferenceAPIKey)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inference_api_key: from-file\nstore_backend: memory\nport: \"8181\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.InferenceAPIKey)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, "8181", cfg.Port)
}

func TestLoadMissingInferenceKey(t *testing.T) {
	t.Setenv("INFERENCE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load("")
	require.Error(t, err)
	assert.True(t, relayerr.IsConfiguration(err))
	assert.Contains(t, err.Error(), "inference binding missing")
}

func TestReadSkipsValidation(t *testing.T) {
	t.Setenv("INFERENCE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("STORE_BACKEND", "sqlite")

	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StoreBackend)
	assert.NotEmpty(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		InferenceProvider: "workers",
		StoreBackend:      "redis",
		HistoryCap:        0,
		InferenceTimeout:  0,
		RateLimitRequests: -1,
	}

	errs := cfg.Validate()
	// provider, key, backend, cap, prompt, fallback, timeout, rate limit
	assert.Len(t, errs, 8)
	for _, err := range errs {
		assert.True(t, relayerr.IsConfiguration(err), err.Error())
	}
}

func TestValidateEmbeddedBackendNeedsPath(t *testing.T) {
	cfg := validConfig()
	cfg.StoreBackend = "sqlite"
	cfg.StorePath = ""

	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.True(t, relayerr.HasCode(errs[0], relayerr.CodeConfigBindingMissing))
}

func TestValidateRateLimitWindow(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimitRequests = 5
	cfg.RateLimitWindow = 0

	assert.Len(t, cfg.Validate(), 1)
}

func validConfig() *Config {
	return &Config{
		InferenceProvider: "openai",
		InferenceAPIKey:   "k",
		StoreBackend:      "memory",
		HistoryCap:        10,
		SystemPrompt:      "sys",
		FallbackReply:     "none",
		InferenceTimeout:  time.Second,
		RateLimitWindow:   time.Minute,
	}
}

func TestStoreOptions(t *testing.T) {
	cfg := validConfig()
	cfg.StorePath = "/var/lib/relay.db"
	cfg.NATSURL = "nats://nats:4222"
	cfg.NATSKVBucket = "CHATS"

	opts := cfg.StoreOptions(nil)
	assert.Equal(t, "/var/lib/relay.db", opts.Path)
	assert.Equal(t, "nats://nats:4222", opts.NATS.URL)
	assert.Equal(t, "CHATS", opts.NATS.Bucket)
}

// Package llm provides the inference gateway interface and implementations.
package llm

import (
	"context"
	"fmt"

	"github.com/gptyar/telegram-relay/internal/model"
)

// Reply is the gateway's answer to one invocation. Text may be empty; the
// caller decides what to send in that case.
type Reply struct {
	Text       string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Gateway is the interface for inference providers. Invoke is attempted
// once per call; implementations must not retry.
type Gateway interface {
	// Invoke sends the ordered conversation and returns one reply.
	Invoke(ctx context.Context, modelID string, messages []model.Message) (*Reply, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of inference provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// Options configures a gateway.
type Options struct {
	APIKey string
	// BaseURL points OpenAI-compatible clients at another endpoint, such as
	// Cloudflare Workers AI.
	BaseURL   string
	MaxTokens int
}

// NewGateway creates a gateway for provider.
func NewGateway(provider Provider, opts Options) (Gateway, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(opts)
	case ProviderOpenAI:
		return NewOpenAIClient(opts)
	default:
		return nil, fmt.Errorf("unknown inference provider %q", provider)
	}
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return 1024
	}
	return n
}

package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/gptyar/telegram-relay/internal/model"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient talks to OpenAI or any OpenAI-compatible chat completions API.
type OpenAIClient struct {
	client    *openai.Client
	maxTokens int
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(opts Options) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(config),
		maxTokens: maxTokensOrDefault(opts.MaxTokens),
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return string(ProviderOpenAI)
}

// Invoke sends a chat completion request.
func (c *OpenAIClient) Invoke(ctx context.Context, modelID string, msgs []model.Message) (*Reply, error) {
	start := time.Now()

	if modelID == "" {
		modelID = DefaultOpenAIModel
	}

	messages := make([]openai.ChatCompletionMessage, len(msgs))
	for i, msg := range msgs {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     modelID,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	reply := &Reply{
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if len(resp.Choices) > 0 {
		reply.Text = resp.Choices[0].Message.Content
		reply.StopReason = string(resp.Choices[0].FinishReason)
	}

	return reply, nil
}

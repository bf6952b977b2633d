package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gptyar/telegram-relay/internal/telegram"
	relayerr "github.com/gptyar/telegram-relay/pkg/errors"
	"github.com/gptyar/telegram-relay/pkg/logger"
)

// Registrar configures the messaging platform's webhook.
type Registrar interface {
	SetWebhook(ctx context.Context, callbackURL, secretToken string) (*telegram.Response, error)
}

// WebhookConfig holds webhook registration settings.
type WebhookConfig struct {
	BotToken string
	// Secret is passed to the platform as secret_token when non-empty.
	Secret string
	// PublicURL overrides the request origin as callback target.
	PublicURL string
}

// WebhookService registers the relay's public URL with the platform.
type WebhookService struct {
	registrar Registrar
	cfg       WebhookConfig
	logger    *logger.Logger
}

// NewWebhookService creates a new webhook service.
func NewWebhookService(registrar Registrar, cfg WebhookConfig, log *logger.Logger) *WebhookService {
	return &WebhookService{
		registrar: registrar,
		cfg:       cfg,
		logger:    log,
	}
}

// Register points the platform webhook at origin (or the configured public
// URL) with a single call. A missing bot token fails with
// config.binding.missing before any network call. When the platform answers
// but refuses, the response is returned together with a
// webhook.register.rejected error. Registering the same URL again is safe.
func (s *WebhookService) Register(ctx context.Context, origin string) (*telegram.Response, error) {
	if s.cfg.BotToken == "" {
		return nil, relayerr.New(relayerr.CodeConfigBindingMissing, "TELEGRAM_BOT_TOKEN not set")
	}

	callback := origin
	if s.cfg.PublicURL != "" {
		callback = s.cfg.PublicURL
	}
	callback = strings.TrimRight(callback, "/")

	resp, err := s.registrar.SetWebhook(ctx, callback, s.cfg.Secret)
	if err != nil {
		s.logger.Error("error setting webhook", zap.Error(err))
		return nil, relayerr.Wrap(err, relayerr.CodeWebhookRegisterFailure, "setting webhook")
	}
	if !resp.OK {
		s.logger.Warn("webhook rejected",
			zap.Int("error_code", resp.ErrorCode),
			zap.String("description", resp.Description),
		)
		return resp, relayerr.Errorf(relayerr.CodeWebhookRejected, "webhook rejected: %s", resp.Description)
	}

	s.logger.Info("webhook set", zap.String("url", callback))
	return resp, nil
}

// Package handler adapts the relay services to HTTP.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gptyar/telegram-relay/internal/telegram"
	relayerr "github.com/gptyar/telegram-relay/pkg/errors"
	"github.com/gptyar/telegram-relay/pkg/logger"
)

// Response bodies for the public listener.
const (
	BodyWebhookSet    = "Webhook set successfully"
	BodyTokenNotSet   = "TELEGRAM_BOT_TOKEN not set"
	BodyProcessed     = "Message processed"
	BodyNoMessage     = "No message provided"
	BodyInternalError = "Internal server error"
	bodyFailedPrefix  = "Failed: "
)

const (
	maxUpdatePayload  = 1 << 20
	forwardedProtoHdr = "X-Forwarded-Proto"
	forwardedHostHdr  = "X-Forwarded-Host"
)

// WebhookRegisterer registers the relay's callback URL.
type WebhookRegisterer interface {
	Register(ctx context.Context, origin string) (*telegram.Response, error)
}

// WebhookHandler handles GET /set-webhook.
type WebhookHandler struct {
	service WebhookRegisterer
	logger  *logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(svc WebhookRegisterer, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: svc,
		logger:  log,
	}
}

// ServeHTTP registers the request origin as webhook target.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Register(r.Context(), Origin(r))
	switch {
	case err == nil:
		writeText(w, http.StatusOK, BodyWebhookSet)
	case relayerr.IsConfiguration(err):
		writeText(w, http.StatusBadRequest, BodyTokenNotSet)
	case relayerr.HasCode(err, relayerr.CodeWebhookRejected) && resp != nil:
		raw, _ := json.Marshal(resp)
		writeText(w, http.StatusInternalServerError, bodyFailedPrefix+string(raw))
	default:
		h.logger.Error("webhook registration failed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, BodyInternalError)
	}
}

// Origin returns scheme://host of the request as seen by the client,
// honouring reverse proxy headers.
func Origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get(forwardedProtoHdr); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	host := r.Host
	if fwd := r.Header.Get(forwardedHostHdr); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}

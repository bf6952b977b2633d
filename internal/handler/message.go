package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gptyar/telegram-relay/internal/service"
	relayerr "github.com/gptyar/telegram-relay/pkg/errors"
	"github.com/gptyar/telegram-relay/pkg/logger"
)

// MessageProcessor handles one inbound update payload.
type MessageProcessor interface {
	HandleMessage(ctx context.Context, payload []byte) (*service.Result, error)
}

// MessageHandler handles POST /.
type MessageHandler struct {
	service MessageProcessor
	logger  *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(svc MessageProcessor, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		service: svc,
		logger:  log,
	}
}

// ServeHTTP runs the update through the relay. Failures are already logged
// by the service; here they only become status codes.
func (h *MessageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpdatePayload))
	if err != nil {
		writeText(w, http.StatusBadRequest, BodyNoMessage)
		return
	}

	_, err = h.service.HandleMessage(r.Context(), payload)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, BodyProcessed)
	case relayerr.HasCode(err, relayerr.CodeRelayPayloadInvalid):
		writeText(w, http.StatusBadRequest, BodyNoMessage)
	default:
		writeText(w, http.StatusInternalServerError, BodyInternalError)
	}
}

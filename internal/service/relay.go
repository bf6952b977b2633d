package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gptyar/telegram-relay/internal/conversation"
	"github.com/gptyar/telegram-relay/internal/llm"
	"github.com/gptyar/telegram-relay/internal/model"
	"github.com/gptyar/telegram-relay/internal/store"
	relayerr "github.com/gptyar/telegram-relay/pkg/errors"
	"github.com/gptyar/telegram-relay/pkg/logger"
	"github.com/gptyar/telegram-relay/pkg/metrics"
	"github.com/gptyar/telegram-relay/pkg/tracing"
)

// Sender delivers a reply to the originating chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// RelayConfig holds the conversation settings of a RelayService.
type RelayConfig struct {
	Model            string
	SystemPrompt     string
	HistoryCap       int
	FallbackReply    string
	InferenceTimeout time.Duration
}

// Result describes how one inbound message was handled.
type Result struct {
	// State is StateDone or StateFailed.
	State State
	// FailedAt is the state whose transition failed, if any.
	FailedAt       State
	ChatID         int64
	ConversationID model.ConversationID
	Reply          string
	Trimmed        int
	// Relayed is false when delivery failed after the log was persisted.
	Relayed bool
	// Messages is the log as written to the session store.
	Messages []model.Message
}

// RelayService runs the message handling state machine: load the chat's
// log, append the user turn, invoke inference, append the reply, trim,
// persist and relay.
type RelayService struct {
	store   store.SessionStore
	gateway llm.Gateway
	sender  Sender
	cfg     RelayConfig
	logger  *logger.Logger
	tracer  trace.Tracer
}

// NewRelayService creates a new relay service.
func NewRelayService(
	sessions store.SessionStore,
	gateway llm.Gateway,
	sender Sender,
	cfg RelayConfig,
	log *logger.Logger,
) *RelayService {
	if cfg.HistoryCap < 1 {
		cfg.HistoryCap = conversation.DefaultCap
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = conversation.DefaultSystemPrompt
	}
	if cfg.FallbackReply == "" {
		cfg.FallbackReply = conversation.DefaultFallbackReply
	}
	return &RelayService{
		store:   sessions,
		gateway: gateway,
		sender:  sender,
		cfg:     cfg,
		logger:  log,
		tracer:  tracing.Tracer("relay"),
	}
}

// exchange is the working state of one request.
type exchange struct {
	payload []byte
	result  Result
	user    model.Message
	log     *conversation.Log
	reply   *llm.Reply
	logger  *logger.Logger
}

// HandleMessage processes one webhook payload. The returned Result is never
// nil. Errors carry a code: relay.payload.invalid for unusable payloads,
// store.* and inference.* for server-side failures. Delivery failures are
// logged and reported through Result.Relayed only.
func (s *RelayService) HandleMessage(ctx context.Context, payload []byte) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "relay.HandleMessage")
	defer span.End()

	x := &exchange{payload: payload, logger: s.logger}

	for state := StateReceived; !state.Terminal(); state = state.Next() {
		if err := s.step(ctx, state, x); err != nil {
			x.result.State = StateFailed
			x.result.FailedAt = state

			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.MessagesHandled.WithLabelValues(StateFailed.String()).Inc()

			x.logger.Error("message handling failed",
				zap.String("state", state.String()),
				zap.String("code", string(relayerr.CodeOf(err))),
				zap.Error(err),
			)
			return &x.result, err
		}
	}

	x.result.State = StateDone
	metrics.MessagesHandled.WithLabelValues(StateDone.String()).Inc()
	return &x.result, nil
}

// step runs the transition out of state.
func (s *RelayService) step(ctx context.Context, state State, x *exchange) error {
	ctx, span := s.tracer.Start(ctx, "relay."+state.String(),
		trace.WithAttributes(attribute.String("relay.state", state.String())))
	defer span.End()

	switch state {
	case StateReceived:
		if err := s.parse(ctx, x); err != nil {
			return err
		}
		span.SetAttributes(attribute.Int64("chat.id", x.result.ChatID))
		return nil
	case StateParsed:
		return s.load(ctx, x)
	case StateLogLoaded:
		return s.appendUser(x)
	case StateLogAppendedUser:
		return s.invoke(ctx, x)
	case StateInferenceInvoked:
		return s.appendAssistant(x)
	case StateLogAppendedAssistant:
		s.trim(x)
		return nil
	case StateLogTrimmed:
		return s.persist(ctx, x)
	case StateLogPersisted:
		s.relay(ctx, x)
		return nil
	case StateRelayed:
		return nil
	default:
		return relayerr.Errorf(relayerr.CodeServerInternalFailure, "no transition from state %s", state)
	}
}

// Received → Parsed
func (s *RelayService) parse(ctx context.Context, x *exchange) error {
	var update model.Update
	if err := json.Unmarshal(x.payload, &update); err != nil {
		return relayerr.Wrap(err, relayerr.CodeRelayPayloadInvalid, "decoding update")
	}
	if update.Message == nil || update.Message.Chat == nil || update.Message.Chat.ID == 0 {
		return relayerr.New(relayerr.CodeRelayPayloadInvalid, "update has no message or chat")
	}
	chatID := update.Message.Chat.ID
	if update.Message.Text == "" {
		return relayerr.New(relayerr.CodeRelayPayloadInvalid, "no message provided", relayerr.FieldChatID(chatID))
	}

	x.result.ChatID = chatID
	x.result.ConversationID = model.ChatConversationID(chatID)
	x.user = model.UserMessage(update.Message.Text)
	x.logger = s.logger.WithChat(logger.CorrelationID(ctx), chatID)
	return nil
}

// Parsed → LogLoaded
func (s *RelayService) load(ctx context.Context, x *exchange) error {
	messages, err := s.store.Get(ctx, x.result.ConversationID)
	if errors.Is(err, store.ErrNotFound) {
		err = nil
	}
	metrics.RecordStore("get", err)
	if err != nil {
		return relayerr.Wrap(err, relayerr.CodeStoreGetFailure, "loading conversation",
			relayerr.FieldConversationID(x.result.ConversationID.String()))
	}

	x.log = conversation.New(messages)
	return nil
}

// LogLoaded → LogAppendedUser
func (s *RelayService) appendUser(x *exchange) error {
	if x.log.Seed(s.cfg.SystemPrompt) {
		x.logger.Debug("seeded new conversation")
	}
	if err := x.log.Append(x.user); err != nil {
		return relayerr.Wrap(err, relayerr.CodeConversationInvariant, "appending user message")
	}
	return nil
}

// LogAppendedUser → InferenceInvoked
func (s *RelayService) invoke(ctx context.Context, x *exchange) error {
	if s.cfg.InferenceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.InferenceTimeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.gateway.Invoke(ctx, s.cfg.Model, x.log.Messages())
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordInference(s.gateway.Name(), "error", elapsed, 0, 0)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return relayerr.Wrap(err, relayerr.CodeInferenceTimeout,
				fmt.Sprintf("inference exceeded %s", s.cfg.InferenceTimeout))
		}
		return relayerr.Wrap(err, relayerr.CodeInferenceUpstreamFailure, "invoking inference gateway")
	}
	if reply == nil {
		reply = &llm.Reply{}
	}

	metrics.RecordInference(s.gateway.Name(), "success", elapsed, reply.TokensIn, reply.TokensOut)
	x.reply = reply
	return nil
}

// InferenceInvoked → LogAppendedAssistant
func (s *RelayService) appendAssistant(x *exchange) error {
	text := x.reply.Text
	if text == "" {
		text = s.cfg.FallbackReply
	}
	if err := x.log.Append(model.AssistantMessage(text)); err != nil {
		return relayerr.Wrap(err, relayerr.CodeConversationInvariant, "appending assistant message")
	}
	x.result.Reply = text
	return nil
}

// LogAppendedAssistant → LogTrimmed
func (s *RelayService) trim(x *exchange) {
	dropped := x.log.Trim(s.cfg.HistoryCap)
	if dropped > 0 {
		metrics.LogTrimmedTotal.Add(float64(dropped))
	}
	x.result.Trimmed = dropped
}

// LogTrimmed → LogPersisted. The write overwrites whatever is stored; a
// concurrent request for the same chat that persisted in between is lost.
func (s *RelayService) persist(ctx context.Context, x *exchange) error {
	messages := x.log.Messages()
	err := s.store.Put(ctx, x.result.ConversationID, messages)
	metrics.RecordStore("put", err)
	if err != nil {
		return relayerr.Wrap(err, relayerr.CodeStorePutFailure, "persisting conversation",
			relayerr.FieldConversationID(x.result.ConversationID.String()))
	}
	x.result.Messages = messages
	return nil
}

// LogPersisted → Relayed. Best-effort: a failed send is logged only.
func (s *RelayService) relay(ctx context.Context, x *exchange) {
	err := s.sender.SendMessage(ctx, x.result.ChatID, x.result.Reply)
	metrics.RecordRelay(err)
	if err != nil {
		err = relayerr.Wrap(err, relayerr.CodeRelaySendFailure, "sending reply")
		x.logger.Warn("reply not delivered",
			zap.String("code", string(relayerr.CodeOf(err))),
			zap.Error(err),
		)
		return
	}
	x.result.Relayed = true
}

// Package errors provides coded errors for the relay and their HTTP mapping.
package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"
	CodeConfigBindingMissing       Code = "config.binding.missing"

	CodeRelayPayloadInvalid Code = "relay.payload.invalid"
	CodeRelaySendFailure    Code = "relay.send.failure"

	CodeInferenceUpstreamFailure Code = "inference.upstream.failure"
	CodeInferenceTimeout         Code = "inference.upstream.timeout"

	CodeStoreGetFailure       Code = "store.get.failure"
	CodeStorePutFailure       Code = "store.put.failure"
	CodeStoreBackendUnknown   Code = "store.backend.unsupported"
	CodeStoreRecordInvalid    Code = "store.record.invalid_format"
	CodeConversationInvariant Code = "conversation.append.invalid"

	CodeWebhookRegisterFailure Code = "webhook.register.failure"
	CodeWebhookRejected        Code = "webhook.register.rejected"

	CodeServerAuthUnauthorized Code = "server.auth.unauthorized"
	CodeServerInternalFailure  Code = "server.internal.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldChatID(value int64) Attr {
	return Field("chat_id", value)
}

func FieldConversationID(value string) Attr {
	return Field("conversation_id", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// CodeOf returns the code attached to err, or "" for plain errors.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsConfiguration(err error) bool {
	return strings.HasPrefix(string(CodeOf(err)), "config.")
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_value" || r == "invalid_format"
}

func IsUnauthorized(err error) bool {
	return reason(CodeOf(err)) == "unauthorized"
}

// HTTPStatus maps an error to the status returned at the request boundary.
// Configuration errors are client-visible failures, not server faults.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsConfiguration(err), IsInvalidInput(err):
		return http.StatusBadRequest
	case IsUnauthorized(err):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}

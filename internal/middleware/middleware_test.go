package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gptyar/telegram-relay/pkg/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoggingSetsCorrelationID(t *testing.T) {
	var seen string
	h := Logging(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(CorrelationIDHeader))
}

func TestLoggingKeepsIncomingCorrelationID(t *testing.T) {
	var seen string
	h := Logging(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/set-webhook", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(CorrelationIDHeader))
}

func TestSecretTokenDisabled(t *testing.T) {
	h := SecretToken("")(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecretTokenEnforcedOnMessages(t *testing.T) {
	h := SecretToken("s3cret")(okHandler())

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"missing header", http.MethodPost, "/", "", http.StatusUnauthorized},
		{"wrong header", http.MethodPost, "/", "nope", http.StatusUnauthorized},
		{"matching header", http.MethodPost, "/", "s3cret", http.StatusOK},
		{"webhook registration unchecked", http.MethodGet, "/set-webhook", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(SecretTokenHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestChatRateLimitDisabled(t *testing.T) {
	h := ChatRateLimit(0, time.Minute)(okHandler())
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":{"chat":{"id":1},"text":"x"}}`)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestChatRateLimitPerChat(t *testing.T) {
	var bodies []string
	h := ChatRateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
	}))

	post := func(chatID string) int {
		rec := httptest.NewRecorder()
		body := `{"message":{"chat":{"id":` + chatID + `},"text":"x"}}`
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post("1"))
	assert.Equal(t, http.StatusOK, post("1"))
	assert.Equal(t, http.StatusTooManyRequests, post("1"))
	// Another chat has its own budget.
	assert.Equal(t, http.StatusOK, post("2"))

	// The handler still sees the full body after the limiter peeked at it.
	assert.Equal(t, `{"message":{"chat":{"id":1},"text":"x"}}`, bodies[0])
}

func TestPeekChatID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":{"chat":{"id":-100123},"text":"x"}}`))
	id, ok := peekChatID(req)
	assert.True(t, ok)
	assert.Equal(t, int64(-100123), id)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
	_, ok = peekChatID(req)
	assert.False(t, ok)
	rest, _ := io.ReadAll(req.Body)
	assert.Equal(t, "not json", string(rest))

	_, ok = peekChatID(httptest.NewRequest(http.MethodGet, "/set-webhook", nil))
	assert.False(t, ok)
}

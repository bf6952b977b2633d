package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/gptyar/telegram-relay/internal/model"
)

// maxPeekBytes bounds how much of a request body the limiter reads.
const maxPeekBytes = 1 << 20

// ChatRateLimit limits message deliveries per chat. Requests without a
// readable chat id are keyed by client IP. A requestLimit of zero or less
// disables limiting.
func ChatRateLimit(requestLimit int, windowLength time.Duration) func(http.Handler) http.Handler {
	if requestLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	retryAfter := strconv.Itoa(int(windowLength.Seconds()))
	return httprate.Limit(
		requestLimit,
		windowLength,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if chatID, ok := peekChatID(r); ok {
				return "chat:" + strconv.FormatInt(chatID, 10), nil
			}
			ip, err := httprate.KeyByIP(r)
			return "ip:" + ip, err
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", retryAfter)
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
		}),
	)
}

// peekChatID reads the update's chat id and restores the body for the next
// handler.
func peekChatID(r *http.Request) (int64, bool) {
	if r.Body == nil || r.Method != http.MethodPost {
		return 0, false
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return 0, false
	}

	var update model.Update
	if err := json.Unmarshal(raw, &update); err != nil {
		return 0, false
	}
	if update.Message == nil || update.Message.Chat == nil || update.Message.Chat.ID == 0 {
		return 0, false
	}
	return update.Message.Chat.ID, true
}

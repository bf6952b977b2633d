package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gptyar/telegram-relay/internal/router"
)

// SecretTokenHeader is set by Telegram on webhook deliveries when the
// webhook was registered with a secret_token.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// SecretToken rejects message deliveries that do not carry secret. An empty
// secret disables the check. Webhook registration is operator-triggered and
// is not checked.
func SecretToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if router.Classify(r.Method, r.URL.Path) == router.HandleMessage {
				got := r.Header.Get(SecretTokenHeader)
				if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Package router classifies inbound requests on the public listener and
// dispatches them to the webhook registration or message handlers.
package router

import "net/http"

// Route is the outcome of classifying a request.
type Route int

const (
	Rejected Route = iota
	RegisterWebhook
	HandleMessage
)

const (
	// WebhookPath is where operators trigger webhook registration.
	WebhookPath = "/set-webhook"
	// MessagePath is where the platform delivers updates.
	MessagePath = "/"
)

func (r Route) String() string {
	switch r {
	case RegisterWebhook:
		return "register_webhook"
	case HandleMessage:
		return "handle_message"
	default:
		return "rejected"
	}
}

// Classify maps a method and path to a Route. It has no side effects and
// every input yields a Route.
func Classify(method, path string) Route {
	switch {
	case method == http.MethodGet && path == WebhookPath:
		return RegisterWebhook
	case method == http.MethodPost && path == MessagePath:
		return HandleMessage
	default:
		return Rejected
	}
}

// Router is an http.Handler serving exactly the classified surface.
type Router struct {
	webhook http.Handler
	message http.Handler
}

// New creates a router dispatching to the given handlers.
func New(webhook, message http.Handler) *Router {
	return &Router{
		webhook: webhook,
		message: message,
	}
}

// ServeHTTP dispatches r, answering 405 for anything Classify rejects.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch Classify(r.Method, r.URL.Path) {
	case RegisterWebhook:
		rt.webhook.ServeHTTP(w, r)
	case HandleMessage:
		rt.message.ServeHTTP(w, r)
	default:
		http.Error(w, "Method or route not allowed", http.StatusMethodNotAllowed)
	}
}

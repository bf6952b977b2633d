// Package store defines the session store contract: one ordered message
// list per conversation id, read whole and overwritten whole.
package store

import (
	"context"
	"errors"

	"github.com/gptyar/telegram-relay/internal/model"
)

// ErrNotFound indicates no log is stored under the key. Callers treat it as
// an empty conversation.
var ErrNotFound = errors.New("conversation not found")

// SessionStore is the capability the relay needs from a key/value backend.
//
// Put overwrites unconditionally. A single Put is atomic per key but a
// Get followed by Put is not; concurrent requests for the same conversation
// can lose updates.
type SessionStore interface {
	Get(ctx context.Context, id model.ConversationID) ([]model.Message, error)
	Put(ctx context.Context, id model.ConversationID, messages []model.Message) error
}

// Deleter is implemented by backends that can drop a conversation. Only
// operator tooling uses it.
type Deleter interface {
	Delete(ctx context.Context, id model.ConversationID) error
}

// Backend is a SessionStore owning resources that must be released.
type Backend interface {
	SessionStore
	Deleter
	Ping(ctx context.Context) error
	Close() error
}

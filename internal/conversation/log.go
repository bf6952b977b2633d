// Package conversation implements the bounded, ordered message log kept for
// each chat.
//
// A log holds at most one system message and, when present, it is the first
// entry. Seeding only happens on an empty log. Trimming keeps the most recent
// entries and may drop the seeded system message; the log is not reseeded
// afterwards.
package conversation

import (
	"errors"
	"fmt"

	"github.com/gptyar/telegram-relay/internal/model"
)

// DefaultCap is the number of messages retained per conversation.
const DefaultCap = 10

var (
	// ErrSystemAppend is returned when a system message is appended to a
	// log directly. System messages only enter a log through Seed.
	ErrSystemAppend = errors.New("system message can only be seeded")

	// ErrEmptyContent is returned for user or assistant turns without text.
	ErrEmptyContent = errors.New("message content is empty")

	// ErrInvalidRole is returned for roles outside system/user/assistant.
	ErrInvalidRole = errors.New("invalid message role")
)

// Log is the in-memory working copy of one conversation. It is checked out
// from the session store, mutated by a single request and written back.
type Log struct {
	messages []model.Message
}

// New wraps messages loaded from the session store. A nil or empty slice
// yields an empty log.
func New(messages []model.Message) *Log {
	l := &Log{messages: make([]model.Message, len(messages))}
	copy(l.messages, messages)
	return l
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	return len(l.messages)
}

// Empty reports whether the log has no messages.
func (l *Log) Empty() bool {
	return len(l.messages) == 0
}

// Messages returns a copy of the ordered messages.
func (l *Log) Messages() []model.Message {
	out := make([]model.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Seed inserts the system instruction if the log is empty and reports
// whether it did.
func (l *Log) Seed(prompt string) bool {
	if !l.Empty() {
		return false
	}
	l.messages = append(l.messages, model.SystemMessage(prompt))
	return true
}

// Append adds a user or assistant turn at the end of the log.
func (l *Log) Append(m model.Message) error {
	switch {
	case !m.Role.Valid():
		return fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
	case m.Role == model.RoleSystem:
		return ErrSystemAppend
	case m.Content == "":
		return fmt.Errorf("%w: role %s", ErrEmptyContent, m.Role)
	}
	l.messages = append(l.messages, m)
	return nil
}

// Trim keeps only the last limit messages and returns how many were dropped.
// Survivors keep their relative order. A limit below one leaves the log
// untouched.
func (l *Log) Trim(limit int) int {
	if limit < 1 || len(l.messages) <= limit {
		return 0
	}
	dropped := len(l.messages) - limit
	kept := make([]model.Message, limit)
	copy(kept, l.messages[dropped:])
	l.messages = kept
	return dropped
}

// Seeded reports whether the first entry is the system instruction.
func (l *Log) Seeded() bool {
	return len(l.messages) > 0 && l.messages[0].Role == model.RoleSystem
}

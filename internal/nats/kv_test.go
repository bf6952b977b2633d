package nats

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gptyar/telegram-relay/internal/model"
	"github.com/gptyar/telegram-relay/internal/store"
	relayerr "github.com/gptyar/telegram-relay/pkg/errors"
)

// validKey mirrors the KeyValue key alphabet enforced by the server.
var validKey = regexp.MustCompile(`^[-/_=\.a-zA-Z0-9]+$`)

func TestKeyEncoding(t *testing.T) {
	tests := []struct {
		chatID int64
		want   string
	}{
		{42, "chat.42"},
		{-1001234567890, "chat.-1001234567890"},
		{0, "chat.0"},
	}

	for _, tt := range tests {
		key := Key(model.ChatConversationID(tt.chatID))
		assert.Equal(t, tt.want, key)
		assert.Regexp(t, validKey, key)
	}
}

func TestPingWithoutConnection(t *testing.T) {
	s := &KVStore{client: &Client{}}
	assert.Error(t, s.Ping(context.Background()))
}

func TestBackendRegisteredWithStore(t *testing.T) {
	_, err := store.Open(context.Background(), "nats", store.Options{
		NATS: store.NATSOptions{URL: "nats://127.0.0.1:1"},
	})
	require.Error(t, err)
	// The factory ran and failed to connect; the name itself is known.
	assert.False(t, relayerr.HasCode(err, relayerr.CodeStoreBackendUnknown))
	assert.Contains(t, err.Error(), "failed to connect to NATS")
}

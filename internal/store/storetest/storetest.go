// Package storetest holds behaviour checks shared by every session store
// backend's tests.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gptyar/telegram-relay/internal/model"
	"github.com/gptyar/telegram-relay/internal/store"
)

// Run exercises the SessionStore contract against a fresh backend.
func Run(t *testing.T, open func(t *testing.T) store.Backend) {
	t.Helper()

	t.Run("absent key is ErrNotFound", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(context.Background(), model.ChatConversationID(1))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("round trip preserves order", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		id := model.ChatConversationID(42)
		want := []model.Message{
			model.SystemMessage("sys"),
			model.UserMessage("سلام"),
			model.AssistantMessage("hello"),
		}

		require.NoError(t, s.Put(ctx, id, want))
		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("put overwrites", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		id := model.ChatConversationID(-100)

		require.NoError(t, s.Put(ctx, id, []model.Message{model.UserMessage("old")}))
		require.NoError(t, s.Put(ctx, id, []model.Message{model.UserMessage("new")}))

		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []model.Message{model.UserMessage("new")}, got)
	})

	t.Run("keys are isolated", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, model.ChatConversationID(1), []model.Message{model.UserMessage("one")}))
		require.NoError(t, s.Put(ctx, model.ChatConversationID(2), []model.Message{model.UserMessage("two")}))

		got, err := s.Get(ctx, model.ChatConversationID(1))
		require.NoError(t, err)
		assert.Equal(t, "one", got[0].Content)
	})

	t.Run("empty log round trips", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		id := model.ChatConversationID(3)

		require.NoError(t, s.Put(ctx, id, nil))
		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("delete removes key", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		id := model.ChatConversationID(4)

		require.NoError(t, s.Put(ctx, id, []model.Message{model.UserMessage("bye")}))
		require.NoError(t, s.Delete(ctx, id))
		_, err := s.Get(ctx, id)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("concurrent puts leave one complete value", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		id := model.ChatConversationID(5)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				msgs := []model.Message{model.UserMessage("u"), model.AssistantMessage(string(rune('a' + i)))}
				assert.NoError(t, s.Put(ctx, id, msgs))
			}(i)
		}
		wg.Wait()

		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, model.UserMessage("u"), got[0])
	})

	t.Run("ping", func(t *testing.T) {
		s := open(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}

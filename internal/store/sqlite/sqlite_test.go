package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gptyar/telegram-relay/internal/model"
	"github.com/gptyar/telegram-relay/internal/store"
	"github.com/gptyar/telegram-relay/internal/store/sqlite"
	"github.com/gptyar/telegram-relay/internal/store/storetest"
)

// testDBPath returns a temp SQLite database path.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name+".db")
}

func TestSQLiteStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		s, err := sqlite.Open(testDBPath(t, "contract"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := testDBPath(t, "reopen")
	ctx := context.Background()
	id := model.ChatConversationID(7)

	s, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, id, []model.Message{model.SystemMessage("sys"), model.UserMessage("hi")}))
	require.NoError(t, s.Close())

	s, err = sqlite.Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, model.RoleSystem, got[0].Role)
}

func TestSQLiteRegisteredBackend(t *testing.T) {
	b, err := store.Open(context.Background(), "sqlite", store.Options{Path: testDBPath(t, "registered")})
	require.NoError(t, err)
	defer b.Close()
	assert.NoError(t, b.Ping(context.Background()))
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatConversationID(t *testing.T) {
	id := ChatConversationID(42)
	assert.Equal(t, ConversationID("chat:42"), id)

	chatID, err := id.ChatID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), chatID)

	neg, err := ChatConversationID(-1001234).ChatID()
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234), neg)
}

func TestConversationIDWithoutPrefix(t *testing.T) {
	_, err := ConversationID("user:1").ChatID()
	assert.Error(t, err)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleSystem.Valid())
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("tool").Valid())
}

func TestMessageRecordFormat(t *testing.T) {
	data, err := json.Marshal([]Message{SystemMessage("be nice"), UserMessage("سلام")})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"role":"system","content":"be nice"},{"role":"user","content":"سلام"}]`, string(data))
}

func TestUpdateDecodesTelegramPayload(t *testing.T) {
	var u Update
	require.NoError(t, json.Unmarshal([]byte(`{"update_id":9,"message":{"chat":{"id":42},"text":"hi","from":{"id":1}}}`), &u))
	require.NotNil(t, u.Message)
	require.NotNil(t, u.Message.Chat)
	assert.Equal(t, int64(42), u.Message.Chat.ID)
	assert.Equal(t, "hi", u.Message.Text)
}

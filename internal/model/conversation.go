package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ConversationID is the opaque store key for one chat.
type ConversationID string

const conversationPrefix = "chat:"

// ChatConversationID derives the key for a messaging platform chat.
func ChatConversationID(chatID int64) ConversationID {
	return ConversationID(conversationPrefix + strconv.FormatInt(chatID, 10))
}

// ChatID recovers the platform chat id from a key built by ChatConversationID.
func (id ConversationID) ChatID() (int64, error) {
	raw, ok := strings.CutPrefix(string(id), conversationPrefix)
	if !ok {
		return 0, fmt.Errorf("conversation id %q has no %q prefix", id, conversationPrefix)
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (id ConversationID) String() string {
	return string(id)
}

package store

import (
	"encoding/json"
	"fmt"

	"github.com/gptyar/telegram-relay/internal/model"
)

// Encode serializes a conversation as a JSON list of {role, content}.
func Encode(messages []model.Message) ([]byte, error) {
	if messages == nil {
		messages = []model.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("encoding conversation: %w", err)
	}
	return data, nil
}

// Decode parses a stored conversation. Empty input decodes to an empty log.
func Decode(data []byte) ([]model.Message, error) {
	if len(data) == 0 {
		return []model.Message{}, nil
	}
	var messages []model.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decoding conversation: %w", err)
	}
	if messages == nil {
		messages = []model.Message{}
	}
	return messages, nil
}

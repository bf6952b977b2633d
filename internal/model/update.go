package model

// Update is the inbound webhook payload sent by the messaging platform.
// Only the fields the relay reads are declared.
type Update struct {
	UpdateID int64           `json:"update_id,omitempty"`
	Message  *InboundMessage `json:"message"`
}

// InboundMessage is the message object inside an Update.
type InboundMessage struct {
	Chat *Chat  `json:"chat"`
	Text string `json:"text"`
}

// Chat identifies the originating conversation.
type Chat struct {
	ID int64 `json:"id"`
}

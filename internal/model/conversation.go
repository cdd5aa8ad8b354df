package model

import "time"

// Sender identifies who authored a conversation row
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message constraints
const (
	MaxMessageLength = 4000
)

// Conversation represents a single chat message row
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"message_text"`
	CreatedOn time.Time `json:"created_on"`
}

package domain

import (
	"strings"
	"time"
)

const MaxMessageLength = 2000

// Message is a direct message between two matched profiles. Read flips once,
// when the receiver opens the thread.
type Message struct {
	ID         int       `json:"id" db:"id"`
	SenderID   int       `json:"sender_id" db:"sender_id"`
	ReceiverID int       `json:"receiver_id" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	Read       bool      `json:"read" db:"read"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// PartnerOf returns the other side of the message for userID.
func (m *Message) PartnerOf(userID int) int {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Conversation is one entry of the inbox: the partner and the newest message
// exchanged with them.
type Conversation struct {
	User        *Profile `json:"user"`
	LastMessage *Message `json:"last_message"`
}

// NormalizeMessageContent trims the body and rejects empty or oversized text.
func NormalizeMessageContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", &ValidationError{Reason: "message content is required"}
	}
	if len([]rune(content)) > MaxMessageLength {
		return "", &ValidationError{Reason: "message content is too long"}
	}
	return content, nil
}

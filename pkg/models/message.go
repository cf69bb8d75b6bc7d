package models

import (
	"time"

	"github.com/google/uuid"
)

// Broadcast is the receiver value used for messages addressed to every
// registered agent.
const Broadcast = "*"

// Message is a fire-and-forget notification between agents. Delivery is
// FIFO per receiver inbox; there is no acknowledgment and no ordering
// guarantee across different receivers.
type Message struct {
	ID        string                 `json:"id"`
	Sender    string                 `json:"sender"`
	Receiver  string                 `json:"receiver"`
	Content   string                 `json:"content"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewMessage builds a message with a fresh ID and the current timestamp.
func NewMessage(sender, receiver, content, msgType string, metadata map[string]interface{}) Message {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		Type:      msgType,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeBill MessageType = "bill"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeBill:
		return true
	}
	return false
}

// Message is one entry of a patient/pharmacy conversation.
type Message struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	SenderID   uuid.UUID   `json:"sender_id" db:"sender_id"`
	ReceiverID uuid.UUID   `json:"receiver_id" db:"receiver_id"`
	Content    string      `json:"content" db:"content"`
	Type       MessageType `json:"type" db:"type"`
	Metadata   JSONMap     `json:"metadata" db:"metadata"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}

// Involves reports whether the message was exchanged between a and b, in
// either direction.
func (m *Message) Involves(a, b uuid.UUID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// Metadata keys carried by bill messages.
const (
	MetaBillID     = "bill_id"
	MetaAmount     = "amount"
	MetaItemsCount = "items_count"
)

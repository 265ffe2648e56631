package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a direct message between two users. At least one of Message
// and AttachmentURL is always set.
type ChatMessage struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SenderID      uuid.UUID `gorm:"column:sender_id;type:uuid;not null;index"`
	ReceiverID    uuid.UUID `gorm:"column:receiver_id;type:uuid;not null;index"`
	Message       *string   `gorm:"column:message"`
	AttachmentURL *string   `gorm:"column:attachment_url"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

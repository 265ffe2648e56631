package models

import (
	"time"

	"github.com/google/uuid"
)

// FollowUp is an append-only note on a complaint. Rows are never edited or
// removed once written.
type FollowUp struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ComplaintID    uuid.UUID  `gorm:"column:complaint_id;type:uuid;not null;index"`
	ReviewerUserID *uuid.UUID `gorm:"column:reviewer_user_id;type:uuid"`
	Note           string     `gorm:"column:note;type:text;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

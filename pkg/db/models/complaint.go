package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casedesk/casedesk-backend/pkg/enums"
)

// Complaint is a customer-raised case moving through the support lifecycle.
type Complaint struct {
	ID          uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Subject     string                `gorm:"column:subject;type:text;not null"`
	Description string                `gorm:"column:description;type:text;not null"`
	ProductName *string               `gorm:"column:product_name"`
	ImageURL    *string               `gorm:"column:image_url"`
	Status      enums.ComplaintStatus `gorm:"column:status;type:text;not null"`

	AssignedToName   *string    `gorm:"column:assigned_to_name"`
	AssignedToUserID *uuid.UUID `gorm:"column:assigned_to_user_id;type:uuid"`

	FollowUps []FollowUp `gorm:"foreignKey:ComplaintID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

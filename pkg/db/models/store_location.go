package models

import (
	"time"

	"github.com/google/uuid"
)

// StoreLocation is a retail site that receives transfers and records sales.
type StoreLocation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null"`
	Location  string    `gorm:"column:location;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

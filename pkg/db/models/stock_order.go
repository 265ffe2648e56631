package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casedesk/casedesk-backend/pkg/enums"
)

// StockOrder is a store's request for product from the warehouse network.
type StockOrder struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID              `gorm:"column:store_id;type:uuid;not null;index"`
	ProductName string                 `gorm:"column:product_name;type:text;not null"`
	Quantity    int                    `gorm:"column:quantity;not null"`
	Status      enums.StockOrderStatus `gorm:"column:status;type:text;not null"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/casedesk/casedesk-backend/pkg/enums"
)

// InventoryItem is a stock row held by a warehouse or a store. One row per
// (holder, product) pair; quantity never drops below zero.
type InventoryItem struct {
	ID          uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HolderType  enums.StockHolderType `gorm:"column:holder_type;type:text;not null;uniqueIndex:idx_inventory_holder_product"`
	HolderID    uuid.UUID             `gorm:"column:holder_id;type:uuid;not null;uniqueIndex:idx_inventory_holder_product"`
	ProductName string                `gorm:"column:product_name;type:text;not null;uniqueIndex:idx_inventory_holder_product"`
	Quantity    int                   `gorm:"column:quantity;not null;default:0"`
	UnitPrice   decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/pkg/db/models"
)

// Repository exposes persistence helpers for stock orders.
type Repository interface {
	Create(ctx context.Context, order *models.StockOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.StockOrder, error)
	Save(ctx context.Context, order *models.StockOrder) error
	List(ctx context.Context, storeID *uuid.UUID, offset, limit int) ([]models.StockOrder, error)
	Count(ctx context.Context, storeID *uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided handle.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.StockOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.StockOrder, error) {
	var order models.StockOrder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) Save(ctx context.Context, order *models.StockOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *repositoryImpl) List(ctx context.Context, storeID *uuid.UUID, offset, limit int) ([]models.StockOrder, error) {
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit)
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}

	var orders []models.StockOrder
	err := query.Find(&orders).Error
	return orders, err
}

func (r *repositoryImpl) Count(ctx context.Context, storeID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockOrder{})
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/pkg/db/models"
	"github.com/casedesk/casedesk-backend/pkg/enums"
)

// Repository exposes persistence helpers for sites and their stock.
type Repository interface {
	CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) error
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)
	FindWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	SaveWarehouse(ctx context.Context, warehouse *models.Warehouse) error
	DeleteWarehouse(ctx context.Context, id uuid.UUID) (int64, error)

	CreateStore(ctx context.Context, store *models.StoreLocation) error
	ListStores(ctx context.Context) ([]models.StoreLocation, error)
	FindStore(ctx context.Context, id uuid.UUID) (*models.StoreLocation, error)
	SaveStore(ctx context.Context, store *models.StoreLocation) error
	DeleteStore(ctx context.Context, id uuid.UUID) (int64, error)

	CreateItem(ctx context.Context, item *models.InventoryItem) error
	SaveItem(ctx context.Context, item *models.InventoryItem) error
	FindItem(ctx context.Context, holderType enums.StockHolderType, holderID uuid.UUID, product string) (*models.InventoryItem, error)
	ListItems(ctx context.Context, holderType enums.StockHolderType, holderID uuid.UUID) ([]models.InventoryItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) (int64, error)
	DecrementItem(ctx context.Context, id uuid.UUID, quantity int) (int64, error)
	IncrementOrCreate(ctx context.Context, holderType enums.StockHolderType, holderID uuid.UUID, product string, quantity int, item models.InventoryItem) error

	CreateSale(ctx context.Context, sale *models.Sale) error
	ListSales(ctx context.Context, storeID uuid.UUID) ([]models.Sale, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided handle.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) error {
	return r.db.WithContext(ctx).Create(warehouse).Error
}

func (r *repositoryImpl) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&warehouses).Error
	return warehouses, err
}

func (r *repositoryImpl) FindWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&warehouse).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *repositoryImpl) SaveWarehouse(ctx context.Context, warehouse *models.Warehouse) error {
	return r.db.WithContext(ctx).Save(warehouse).Error
}

func (r *repositoryImpl) DeleteWarehouse(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Warehouse{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CreateStore(ctx context.Context, store *models.StoreLocation) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *repositoryImpl) ListStores(ctx context.Context) ([]models.StoreLocation, error) {
	var stores []models.StoreLocation
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&stores).Error
	return stores, err
}

func (r *repositoryImpl) FindStore(ctx context.Context, id uuid.UUID) (*models.StoreLocation, error) {
	var store models.StoreLocation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repositoryImpl) SaveStore(ctx context.Context, store *models.StoreLocation) error {
	return r.db.WithContext(ctx).Save(store).Error
}

func (r *repositoryImpl) DeleteStore(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.StoreLocation{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) SaveItem(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repositoryImpl) FindItem(ctx context.Context, holderType enums.StockHolderType, holderID uuid.UUID, product string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("holder_type = ? AND holder_id = ? AND product_name = ?", holderType, holderID, product).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) ListItems(ctx context.Context, holderType enums.StockHolderType, holderID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("holder_type = ? AND holder_id = ?", holderType, holderID).
		Order("product_name ASC").
		Find(&items).Error
	return items, err
}

func (r *repositoryImpl) DeleteItem(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryItem{})
	return result.RowsAffected, result.Error
}

// DecrementItem subtracts quantity only when enough stock remains. A zero
// RowsAffected result means the guard failed and nothing changed.
func (r *repositoryImpl) DecrementItem(ctx context.Context, id uuid.UUID, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND quantity >= ?", id, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	return result.RowsAffected, result.Error
}

// IncrementOrCreate adds quantity to an existing (holder, product) row or
// inserts a new one seeded from item.
func (r *repositoryImpl) IncrementOrCreate(ctx context.Context, holderType enums.StockHolderType, holderID uuid.UUID, product string, quantity int, item models.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("holder_type = ? AND holder_id = ? AND product_name = ?", holderType, holderID, product).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	item.HolderType = holderType
	item.HolderID = holderID
	item.ProductName = product
	item.Quantity = quantity
	return r.db.WithContext(ctx).Create(&item).Error
}

func (r *repositoryImpl) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repositoryImpl) ListSales(ctx context.Context, storeID uuid.UUID) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC, id DESC").
		Find(&sales).Error
	return sales, err
}

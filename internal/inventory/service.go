package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/pkg/db"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	"github.com/casedesk/casedesk-backend/pkg/enums"
	pkgerrors "github.com/casedesk/casedesk-backend/pkg/errors"
	"github.com/casedesk/casedesk-backend/pkg/logger"
)

// CreateSiteRequest creates a warehouse or store location.
type CreateSiteRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Location string `json:"location" validate:"required,min=2,max=200"`
}

// AddInventoryRequest adds stock to a holder, creating the product row on
// first sight.
type AddInventoryRequest struct {
	HolderType  string          `json:"holderType" validate:"required,oneof=warehouse store"`
	HolderID    uuid.UUID       `json:"holderId" validate:"required"`
	ProductName string          `json:"productName" validate:"required,min=1,max=200"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// TransferRequest moves stock from a warehouse to a store.
type TransferRequest struct {
	WarehouseID uuid.UUID `json:"warehouseId" validate:"required"`
	StoreID     uuid.UUID `json:"storeId" validate:"required"`
	ProductName string    `json:"productName" validate:"required,min=1,max=200"`
	Quantity    int       `json:"quantity" validate:"required,gt=0"`
}

// SaleRequest records a point-of-sale transaction against store stock.
type SaleRequest struct {
	StoreID     uuid.UUID       `json:"storeId" validate:"required"`
	ProductName string          `json:"productName" validate:"required,min=1,max=200"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
	SalePrice   decimal.Decimal `json:"salePrice"`
}

// UpdateSiteRequest carries a partial site update.
type UpdateSiteRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Location *string `json:"location,omitempty" validate:"omitempty,min=2,max=200"`
}

// Service defines warehouse and store inventory operations.
type Service interface {
	CreateWarehouse(ctx context.Context, req CreateSiteRequest) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id uuid.UUID, req UpdateSiteRequest) (*models.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id uuid.UUID) error
	CreateStore(ctx context.Context, req CreateSiteRequest) (*models.StoreLocation, error)
	ListStores(ctx context.Context) ([]models.StoreLocation, error)
	UpdateStore(ctx context.Context, id uuid.UUID, req UpdateSiteRequest) (*models.StoreLocation, error)
	DeleteStore(ctx context.Context, id uuid.UUID) error

	AddInventory(ctx context.Context, req AddInventoryRequest) (*models.InventoryItem, error)
	ListInventory(ctx context.Context, holderType string, holderID uuid.UUID) ([]models.InventoryItem, error)
	DeleteInventory(ctx context.Context, itemID uuid.UUID) error

	TransferStock(ctx context.Context, req TransferRequest) error
	RecordSale(ctx context.Context, req SaleRequest) (*models.Sale, error)
	ListSales(ctx context.Context, storeID uuid.UUID) ([]models.Sale, error)
}

// ServiceParams packages the dependencies for the inventory service.
type ServiceParams struct {
	DB     *db.Client
	Logger *logger.Logger
}

type service struct {
	db   *db.Client
	logg *logger.Logger
}

// NewService wires inventory dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: params.DB, logg: params.Logger}, nil
}

func (s *service) CreateWarehouse(ctx context.Context, req CreateSiteRequest) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{
		Name:     strings.TrimSpace(req.Name),
		Location: strings.TrimSpace(req.Location),
	}
	if err := NewRepository(s.db.DB()).CreateWarehouse(ctx, warehouse); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create warehouse")
	}
	return warehouse, nil
}

func (s *service) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	warehouses, err := NewRepository(s.db.DB()).ListWarehouses(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list warehouses")
	}
	return warehouses, nil
}

func (s *service) UpdateWarehouse(ctx context.Context, id uuid.UUID, req UpdateSiteRequest) (*models.Warehouse, error) {
	repo := NewRepository(s.db.DB())
	warehouse, err := repo.FindWarehouse(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find warehouse")
	}
	if req.Name != nil {
		warehouse.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		warehouse.Location = strings.TrimSpace(*req.Location)
	}
	if err := repo.SaveWarehouse(ctx, warehouse); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update warehouse")
	}
	return warehouse, nil
}

func (s *service) DeleteWarehouse(ctx context.Context, id uuid.UUID) error {
	affected, err := NewRepository(s.db.DB()).DeleteWarehouse(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete warehouse")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
	}
	return nil
}

func (s *service) CreateStore(ctx context.Context, req CreateSiteRequest) (*models.StoreLocation, error) {
	store := &models.StoreLocation{
		Name:     strings.TrimSpace(req.Name),
		Location: strings.TrimSpace(req.Location),
	}
	if err := NewRepository(s.db.DB()).CreateStore(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
	}
	return store, nil
}

func (s *service) ListStores(ctx context.Context) ([]models.StoreLocation, error) {
	stores, err := NewRepository(s.db.DB()).ListStores(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}
	return stores, nil
}

func (s *service) UpdateStore(ctx context.Context, id uuid.UUID, req UpdateSiteRequest) (*models.StoreLocation, error) {
	repo := NewRepository(s.db.DB())
	store, err := repo.FindStore(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find store")
	}
	if req.Name != nil {
		store.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		store.Location = strings.TrimSpace(*req.Location)
	}
	if err := repo.SaveStore(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store")
	}
	return store, nil
}

func (s *service) DeleteStore(ctx context.Context, id uuid.UUID) error {
	affected, err := NewRepository(s.db.DB()).DeleteStore(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete store")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return nil
}

func (s *service) AddInventory(ctx context.Context, req AddInventoryRequest) (*models.InventoryItem, error) {
	holderType, err := enums.ParseStockHolderType(req.HolderType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid holder type")
	}
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product := strings.TrimSpace(req.ProductName)
	if product == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}

	if err := s.requireHolder(ctx, holderType, req.HolderID); err != nil {
		return nil, err
	}

	var item *models.InventoryItem
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		seed := models.InventoryItem{UnitPrice: req.UnitPrice}
		if err := repo.IncrementOrCreate(ctx, holderType, req.HolderID, product, req.Quantity, seed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add inventory")
		}
		found, err := repo.FindItem(ctx, holderType, req.HolderID, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload inventory row")
		}
		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) ListInventory(ctx context.Context, holderType string, holderID uuid.UUID) ([]models.InventoryItem, error) {
	parsed, err := enums.ParseStockHolderType(holderType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid holder type")
	}
	if err := s.requireHolder(ctx, parsed, holderID); err != nil {
		return nil, err
	}
	items, err := NewRepository(s.db.DB()).ListItems(ctx, parsed, holderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory")
	}
	return items, nil
}

func (s *service) DeleteInventory(ctx context.Context, itemID uuid.UUID) error {
	if itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	affected, err := NewRepository(s.db.DB()).DeleteItem(ctx, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete inventory")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return nil
}

// TransferStock moves product from a warehouse to a store inside one
// transaction. The guarded decrement guarantees the warehouse never goes
// negative; on insufficient stock nothing moves.
func (s *service) TransferStock(ctx context.Context, req TransferRequest) error {
	if req.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product := strings.TrimSpace(req.ProductName)
	if product == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}

	if err := s.requireHolder(ctx, enums.StockHolderWarehouse, req.WarehouseID); err != nil {
		return err
	}
	if err := s.requireHolder(ctx, enums.StockHolderStore, req.StoreID); err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		source, err := repo.FindItem(ctx, enums.StockHolderWarehouse, req.WarehouseID, product)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not stocked at warehouse")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find warehouse stock")
		}

		affected, err := repo.DecrementItem(ctx, source.ID, req.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement warehouse stock")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient warehouse stock").
				WithDetails(map[string]any{
					"available": source.Quantity,
					"requested": req.Quantity,
				})
		}

		seed := models.InventoryItem{UnitPrice: source.UnitPrice}
		if err := repo.IncrementOrCreate(ctx, enums.StockHolderStore, req.StoreID, product, req.Quantity, seed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment store stock")
		}
		return nil
	})
}

// RecordSale decrements store stock and writes the sale row atomically.
func (s *service) RecordSale(ctx context.Context, req SaleRequest) (*models.Sale, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product := strings.TrimSpace(req.ProductName)
	if product == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}

	if err := s.requireHolder(ctx, enums.StockHolderStore, req.StoreID); err != nil {
		return nil, err
	}

	sale := &models.Sale{
		StoreID:     req.StoreID,
		ProductName: product,
		Quantity:    req.Quantity,
		SalePrice:   req.SalePrice,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		item, err := repo.FindItem(ctx, enums.StockHolderStore, req.StoreID, product)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not stocked at store")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find store stock")
		}

		affected, err := repo.DecrementItem(ctx, item.ID, req.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement store stock")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient store stock").
				WithDetails(map[string]any{
					"available": item.Quantity,
					"requested": req.Quantity,
				})
		}

		if err := repo.CreateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record sale")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *service) ListSales(ctx context.Context, storeID uuid.UUID) ([]models.Sale, error) {
	if err := s.requireHolder(ctx, enums.StockHolderStore, storeID); err != nil {
		return nil, err
	}
	sales, err := NewRepository(s.db.DB()).ListSales(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}
	return sales, nil
}

func (s *service) requireHolder(ctx context.Context, holderType enums.StockHolderType, holderID uuid.UUID) error {
	if holderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "holder id required")
	}

	repo := NewRepository(s.db.DB())
	var err error
	switch holderType {
	case enums.StockHolderWarehouse:
		_, err = repo.FindWarehouse(ctx, holderID)
	case enums.StockHolderStore:
		_, err = repo.FindStore(ctx, holderID)
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid holder type")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, string(holderType)+" not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find holder")
	}
	return nil
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casedesk/casedesk-backend/internal/inventory"
	"github.com/casedesk/casedesk-backend/pkg/db"
	"github.com/casedesk/casedesk-backend/pkg/db/models"
	"github.com/casedesk/casedesk-backend/pkg/enums"
	pkgerrors "github.com/casedesk/casedesk-backend/pkg/errors"
	"github.com/casedesk/casedesk-backend/pkg/logger"
	"github.com/casedesk/casedesk-backend/pkg/pagination"
)

// RequestOrderRequest opens a replenishment order for a store.
type RequestOrderRequest struct {
	StoreID     uuid.UUID `json:"storeId" validate:"required"`
	ProductName string    `json:"productName" validate:"required,min=1,max=200"`
	Quantity    int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateStatusRequest moves an order through its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListResult wraps an order page and its pagination metadata.
type ListResult struct {
	Orders     []models.StockOrder `json:"orders"`
	Pagination pagination.Meta     `json:"pagination"`
}

// Service defines the stock order operations.
type Service interface {
	Request(ctx context.Context, req RequestOrderRequest) (*models.StockOrder, error)
	Approve(ctx context.Context, orderID uuid.UUID) (*models.StockOrder, error)
	Receive(ctx context.Context, orderID uuid.UUID) (*models.StockOrder, error)
	Reject(ctx context.Context, orderID uuid.UUID) (*models.StockOrder, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*models.StockOrder, error)
	List(ctx context.Context, storeID *uuid.UUID, params pagination.Params) (*ListResult, error)
}

// ServiceParams packages the dependencies for the orders service.
type ServiceParams struct {
	DB     *db.Client
	Logger *logger.Logger
}

type service struct {
	db   *db.Client
	logg *logger.Logger
}

// NewService wires order dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: params.DB, logg: params.Logger}, nil
}

func (s *service) Request(ctx context.Context, req RequestOrderRequest) (*models.StockOrder, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product := strings.TrimSpace(req.ProductName)
	if product == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}

	if _, err := inventory.NewRepository(s.db.DB()).FindStore(ctx, req.StoreID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find store")
	}

	order := &models.StockOrder{
		StoreID:     req.StoreID,
		ProductName: product,
		Quantity:    req.Quantity,
		Status:      enums.StockOrderStatusRequested,
	}
	if err := NewRepository(s.db.DB()).Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	return order, nil
}

func (s *service) Approve(ctx context.Context, orderID uuid.UUID) (*models.StockOrder, error) {
	return s.transition(ctx, orderID, enums.StockOrderStatusApproved)
}

// Receive closes out an approved order and lands the quantity on the store's
// stock row in the same transaction.
func (s *service) Receive(ctx context.Context, orderID uuid.UUID) (*models.StockOrder, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransition(enums.StockOrderStatusReceived) {
		return nil, transitionConflict(order.Status, enums.StockOrderStatusReceived)
	}
	order.Status = enums.StockOrderStatusReceived

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		seed := models.InventoryItem{}
		if err := inventory.NewRepository(tx).IncrementOrCreate(
			ctx, enums.StockHolderStore, order.StoreID, order.ProductName, order.Quantity, seed,
		); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment store stock")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Reject(ctx context.Context, orderID uuid.UUID) (*models.StockOrder, error) {
	return s.transition(ctx, orderID, enums.StockOrderStatusRejected)
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*models.StockOrder, error) {
	next, err := enums.ParseStockOrderStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	if next == enums.StockOrderStatusReceived {
		return s.Receive(ctx, orderID)
	}
	return s.transition(ctx, orderID, next)
}

func (s *service) List(ctx context.Context, storeID *uuid.UUID, params pagination.Params) (*ListResult, error) {
	norm := pagination.Normalize(params)
	repo := NewRepository(s.db.DB())

	total, err := repo.Count(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	rows, err := repo.List(ctx, storeID, norm.Offset(), norm.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	return &ListResult{
		Orders:     rows,
		Pagination: pagination.NewMeta(norm, total),
	}, nil
}

func (s *service) transition(ctx context.Context, orderID uuid.UUID, next enums.StockOrderStatus) (*models.StockOrder, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransition(next) {
		return nil, transitionConflict(order.Status, next)
	}
	order.Status = next

	if err := NewRepository(s.db.DB()).Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	return order, nil
}

func (s *service) find(ctx context.Context, orderID uuid.UUID) (*models.StockOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := NewRepository(s.db.DB()).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}
	return order, nil
}

func transitionConflict(from, to enums.StockOrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot move order from %s to %s", from, to)).
		WithDetails(map[string]any{"from": from.String(), "to": to.String()})
}

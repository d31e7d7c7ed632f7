package repository

import (
	"context"

	"github.com/mobilia/erp-api/internal/models"

	"gorm.io/gorm"
)

// SalesOrderRepository defines the interface for sales order data access
type SalesOrderRepository interface {
	Create(ctx context.Context, order *models.SalesOrder) error
	Update(ctx context.Context, order *models.SalesOrder) error
	FindByID(ctx context.Context, id uint) (*models.SalesOrder, error)
	FindByIDWithItems(ctx context.Context, id uint) (*models.SalesOrder, error)
}

type salesOrderRepository struct {
	db *gorm.DB
}

// NewSalesOrderRepository creates a new sales order repository
func NewSalesOrderRepository(db *gorm.DB) SalesOrderRepository {
	return &salesOrderRepository{db: db}
}

func (r *salesOrderRepository) Create(ctx context.Context, order *models.SalesOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *salesOrderRepository) Update(ctx context.Context, order *models.SalesOrder) error {
	return r.db.WithContext(ctx).Omit("Items", "Party").Save(order).Error
}

func (r *salesOrderRepository) FindByID(ctx context.Context, id uint) (*models.SalesOrder, error) {
	var order models.SalesOrder
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *salesOrderRepository) FindByIDWithItems(ctx context.Context, id uint) (*models.SalesOrder, error) {
	var order models.SalesOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// PurchaseRepository defines the interface for purchase data access
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	Update(ctx context.Context, purchase *models.Purchase) error
	FindByID(ctx context.Context, id uint) (*models.Purchase, error)
	FindByIDWithItems(ctx context.Context, id uint) (*models.Purchase, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepository) Update(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Omit("Items", "Party").Save(purchase).Error
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).First(&purchase, id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindByIDWithItems(ctx context.Context, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).Preload("Items").First(&purchase, id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/mobilia/erp-api/internal/models"

	"gorm.io/gorm"
)

// StockRepository defines the interface for stock level and movement data access
type StockRepository interface {
	// FindLevelForUpdate loads a product's stock level under a row lock,
	// creating a zero-quantity row if none exists yet.
	FindLevelForUpdate(ctx context.Context, productID uint) (*models.StockLevel, error)
	FindLevel(ctx context.Context, productID uint) (*models.StockLevel, error)
	UpdateLevel(ctx context.Context, level *models.StockLevel) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	FindMovementsByReference(ctx context.Context, referenceKind string, referenceID uint) ([]models.StockMovement, error)
	ListLevels(ctx context.Context, query *ListQuery) ([]models.StockLevel, int64, error)
}

type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) FindLevelForUpdate(ctx context.Context, productID uint) (*models.StockLevel, error) {
	var level models.StockLevel
	err := forUpdate(r.db.WithContext(ctx)).
		Where("product_id = ?", productID).
		First(&level).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		level = models.StockLevel{ProductID: productID, Quantity: 0}
		if err := r.db.WithContext(ctx).Create(&level).Error; err != nil {
			return nil, err
		}
		return &level, nil
	}
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *stockRepository) FindLevel(ctx context.Context, productID uint) (*models.StockLevel, error) {
	var level models.StockLevel
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *stockRepository) UpdateLevel(ctx context.Context, level *models.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

func (r *stockRepository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *stockRepository) FindMovementsByReference(ctx context.Context, referenceKind string, referenceID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("reference_kind = ? AND reference_id = ?", referenceKind, referenceID).
		Order("id ASC").
		Find(&movements).Error
	return movements, err
}

func (r *stockRepository) ListLevels(ctx context.Context, query *ListQuery) ([]models.StockLevel, int64, error) {
	var levels []models.StockLevel
	var total int64

	q := r.db.WithContext(ctx).Model(&models.StockLevel{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Product").
		Order("product_id ASC").
		Limit(query.Limit()).
		Offset(query.Offset()).
		Find(&levels).Error
	return levels, total, err
}

package repository

import (
	"context"

	"github.com/mobilia/erp-api/internal/models"

	"gorm.io/gorm"
)

// ReturnRepository defines the interface for return order data access
type ReturnRepository interface {
	Create(ctx context.Context, ret *models.ReturnOrder) error
	Update(ctx context.Context, ret *models.ReturnOrder) error
	FindByID(ctx context.Context, id uint) (*models.ReturnOrder, error)
	// FindByIDWithLines loads the return together with its lines, which
	// approval needs to validate quantities and move stock.
	FindByIDWithLines(ctx context.Context, id uint) (*models.ReturnOrder, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.ReturnOrder, error)
	// SumApprovedQuantity totals the quantity of a product already returned
	// in approved returns against the same source document, excluding the
	// return being approved.
	SumApprovedQuantity(ctx context.Context, referenceKind string, referenceID uint, productID uint, excludeReturnID uint) (int, error)
	List(ctx context.Context, query *ListQuery) ([]models.ReturnOrder, int64, error)
}

type returnRepository struct {
	db *gorm.DB
}

// NewReturnRepository creates a new return order repository
func NewReturnRepository(db *gorm.DB) ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) Create(ctx context.Context, ret *models.ReturnOrder) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *returnRepository) Update(ctx context.Context, ret *models.ReturnOrder) error {
	return r.db.WithContext(ctx).Omit("Lines", "Party").Save(ret).Error
}

func (r *returnRepository) FindByID(ctx context.Context, id uint) (*models.ReturnOrder, error) {
	var ret models.ReturnOrder
	err := r.db.WithContext(ctx).First(&ret, id).Error
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *returnRepository) FindByIDWithLines(ctx context.Context, id uint) (*models.ReturnOrder, error) {
	var ret models.ReturnOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		First(&ret, id).Error
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *returnRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.ReturnOrder, error) {
	var ret models.ReturnOrder
	err := forUpdate(r.db.WithContext(ctx)).First(&ret, id).Error
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *returnRepository) SumApprovedQuantity(ctx context.Context, referenceKind string, referenceID uint, productID uint, excludeReturnID uint) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.ReturnLine{}).
		Joins("JOIN return_orders ON return_orders.id = return_lines.return_order_id").
		Where("return_orders.reference_kind = ?", referenceKind).
		Where("return_orders.reference_id = ?", referenceID).
		Where("return_orders.status = ?", models.ReturnStatusApproved).
		Where("return_orders.id <> ?", excludeReturnID).
		Where("return_lines.product_id = ?", productID).
		Select("COALESCE(SUM(return_lines.quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *returnRepository) List(ctx context.Context, query *ListQuery) ([]models.ReturnOrder, int64, error) {
	var returns []models.ReturnOrder
	var total int64

	q := r.db.WithContext(ctx).Model(&models.ReturnOrder{})
	if kind, ok := query.Filters["kind"]; ok && kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if status, ok := query.Filters["status"]; ok && status != "" {
		q = q.Where("status = ?", status)
	}
	if partyID, ok := query.Filters["party_id"]; ok && partyID != "" {
		q = q.Where("party_id = ?", partyID)
	}
	if query.Search != "" {
		q = q.Where("return_no LIKE ?", "%"+query.Search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Party").
		Order("created_at DESC, id DESC").
		Limit(query.Limit()).
		Offset(query.Offset()).
		Find(&returns).Error
	return returns, total, err
}

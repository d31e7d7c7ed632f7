package repository

import (
	"context"

	"github.com/mobilia/erp-api/internal/models"

	"gorm.io/gorm"
)

// VoucherRepository defines the interface for receipt/payment data access
type VoucherRepository interface {
	Create(ctx context.Context, voucher *models.Voucher) error
	Update(ctx context.Context, voucher *models.Voucher) error
	FindByID(ctx context.Context, id uint) (*models.Voucher, error)
	// FindByIDWithAllocations loads the voucher aggregate: the document
	// plus all of its allocations.
	FindByIDWithAllocations(ctx context.Context, id uint) (*models.Voucher, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Voucher, error)
	List(ctx context.Context, query *ListQuery) ([]models.Voucher, int64, error)

	CreateAllocation(ctx context.Context, allocation *models.Allocation) error
	DeleteAllocation(ctx context.Context, id uint) error
	FindAllocation(ctx context.Context, id uint) (*models.Allocation, error)
	// FindActiveAllocationsByInvoice returns allocations against an invoice
	// whose parent voucher is posted. Draft allocations are provisional and
	// cancelled ones are reversed; neither counts toward paid_total.
	FindActiveAllocationsByInvoice(ctx context.Context, invoiceID uint) ([]models.Allocation, error)
}

type voucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository creates a new voucher repository
func NewVoucherRepository(db *gorm.DB) VoucherRepository {
	return &voucherRepository{db: db}
}

func (r *voucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *voucherRepository) Update(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).Omit("Allocations", "Party").Save(voucher).Error
}

func (r *voucherRepository) FindByID(ctx context.Context, id uint) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.db.WithContext(ctx).Preload("Party").First(&voucher, id).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) FindByIDWithAllocations(ctx context.Context, id uint) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.db.WithContext(ctx).
		Preload("Party").
		Preload("Allocations").
		Preload("Allocations.Invoice").
		First(&voucher, id).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Voucher, error) {
	var voucher models.Voucher
	err := forUpdate(r.db.WithContext(ctx)).First(&voucher, id).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) List(ctx context.Context, query *ListQuery) ([]models.Voucher, int64, error) {
	var vouchers []models.Voucher
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Voucher{})
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
		q = q.Where("document_no LIKE ?", "%"+query.Search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Party").
		Order("voucher_date DESC, id DESC").
		Limit(query.Limit()).
		Offset(query.Offset()).
		Find(&vouchers).Error
	return vouchers, total, err
}

func (r *voucherRepository) CreateAllocation(ctx context.Context, allocation *models.Allocation) error {
	return r.db.WithContext(ctx).Create(allocation).Error
}

func (r *voucherRepository) DeleteAllocation(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Allocation{}, id).Error
}

func (r *voucherRepository) FindAllocation(ctx context.Context, id uint) (*models.Allocation, error) {
	var allocation models.Allocation
	err := r.db.WithContext(ctx).Preload("Voucher").First(&allocation, id).Error
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *voucherRepository) FindActiveAllocationsByInvoice(ctx context.Context, invoiceID uint) ([]models.Allocation, error) {
	var allocations []models.Allocation
	err := r.db.WithContext(ctx).
		Joins("JOIN vouchers ON vouchers.id = allocations.voucher_id").
		Where("allocations.invoice_id = ?", invoiceID).
		Where("vouchers.status = ?", models.VoucherStatusPosted).
		Find(&allocations).Error
	return allocations, err
}

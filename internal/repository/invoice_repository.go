package repository

import (
	"context"

	"github.com/mobilia/erp-api/internal/models"

	"gorm.io/gorm"
)

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	Update(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, id uint) (*models.Invoice, error)
	// FindByIDForUpdate loads an invoice under a row lock so its
	// open_amount can be read and rewritten without lost updates.
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Invoice, error)
	// FindByIDWithAllocations loads the invoice together with its
	// allocations and their parent vouchers, so balance checks run on a
	// consistent in-memory aggregate.
	FindByIDWithAllocations(ctx context.Context, id uint) (*models.Invoice, error)
	// FindOpenByParty returns issued/partially paid invoices with a
	// positive open amount, oldest obligation first (null due dates last).
	FindOpenByParty(ctx context.Context, partyID uint, kind string) ([]models.Invoice, error)
	FindOutstanding(ctx context.Context, kind string) ([]models.Invoice, error)
	FindByParty(ctx context.Context, partyID uint) ([]models.Invoice, error)
	List(ctx context.Context, query *ListQuery) ([]models.Invoice, int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).Preload("Party").First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := forUpdate(r.db.WithContext(ctx)).First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithAllocations(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Allocations").
		Preload("Allocations.Voucher").
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindOpenByParty(ctx context.Context, partyID uint, kind string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where("party_id = ? AND kind = ?", partyID, kind).
		Where("status IN ?", []string{models.InvoiceStatusIssued, models.InvoiceStatusPartiallyPaid}).
		Where("open_amount > 0").
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC, invoice_date ASC, id ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) FindOutstanding(ctx context.Context, kind string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Party").
		Where("kind = ?", kind).
		Where("status IN ?", []string{models.InvoiceStatusIssued, models.InvoiceStatusPartiallyPaid}).
		Where("open_amount > 0").
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC, invoice_date ASC, id ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) FindByParty(ctx context.Context, partyID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Order("invoice_date ASC, id ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) List(ctx context.Context, query *ListQuery) ([]models.Invoice, int64, error) {
	var invoices []models.Invoice
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Invoice{})
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
		q = q.Where("invoice_no LIKE ?", "%"+query.Search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Party").
		Order("invoice_date DESC, id DESC").
		Limit(query.Limit()).
		Offset(query.Offset()).
		Find(&invoices).Error
	return invoices, total, err
}

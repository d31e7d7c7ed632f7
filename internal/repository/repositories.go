package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repositories holds all repository instances
type Repositories struct {
	Party        PartyRepository
	Invoice      InvoiceRepository
	Voucher      VoucherRepository
	SalesOrder   SalesOrderRepository
	Purchase     PurchaseRepository
	Return       ReturnRepository
	Installation InstallationRepository
	Stock        StockRepository
	Audit        AuditRepository
	Sequence     SequenceRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Party:        NewPartyRepository(db),
		Invoice:      NewInvoiceRepository(db),
		Voucher:      NewVoucherRepository(db),
		SalesOrder:   NewSalesOrderRepository(db),
		Purchase:     NewPurchaseRepository(db),
		Return:       NewReturnRepository(db),
		Installation: NewInstallationRepository(db),
		Stock:        NewStockRepository(db),
		Audit:        NewAuditRepository(db),
		Sequence:     NewSequenceRepository(db),
	}
}

// WithTx rebinds every repository to the given transaction handle so a
// service can run a whole operation atomically.
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return NewRepositories(tx)
}

// forUpdate adds a row-level lock to the query on databases that support it.
// SQLite (used in tests) has no FOR UPDATE; its writer lock serializes
// transactions anyway.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// ListQuery carries pagination, search and filter parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// Offset returns the row offset for the current page
func (q *ListQuery) Offset() int {
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * q.Limit()
}

// Limit returns the page size, bounded to something sane
func (q *ListQuery) Limit() int {
	if q.PerPage < 1 {
		return 20
	}
	if q.PerPage > 100 {
		return 100
	}
	return q.PerPage
}

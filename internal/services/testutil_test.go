package services

import (
	"context"
	"testing"
	"time"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires services against an in-memory SQLite database. A nil worker
// makes audit writes synchronous so tests can assert on them right away.
type testEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
	svcs  *Services
}

var testActor = Actor{ID: 1, IP: "127.0.0.1", UserAgent: "test"}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// SQLite allows one writer; a single connection keeps every query on it.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Party{},
		&models.Product{},
		&models.Invoice{},
		&models.Voucher{},
		&models.Allocation{},
		&models.SalesOrder{},
		&models.OrderItem{},
		&models.Purchase{},
		&models.PurchaseItem{},
		&models.ReturnOrder{},
		&models.ReturnLine{},
		&models.StockLevel{},
		&models.StockMovement{},
		&models.InstallationOrder{},
		&models.InstallationPhoto{},
		&models.AuditLog{},
		&models.DocumentSequence{},
	))

	repos := repository.NewRepositories(db)
	return &testEnv{
		db:    db,
		repos: repos,
		svcs:  NewServices(db, repos, nil, nil),
	}
}

func (e *testEnv) createParty(t *testing.T, partyType, name string) *models.Party {
	t.Helper()
	party := &models.Party{PartyType: partyType, Name: name}
	require.NoError(t, e.db.Create(party).Error)
	return party
}

func (e *testEnv) createCustomer(t *testing.T) *models.Party {
	return e.createParty(t, models.PartyTypeCustomer, "Test Customer")
}

func (e *testEnv) createSupplier(t *testing.T) *models.Party {
	return e.createParty(t, models.PartyTypeSupplier, "Test Supplier")
}

// createIssuedInvoice creates and issues an invoice through the service so
// numbering and balances behave like production.
func (e *testEnv) createIssuedInvoice(t *testing.T, partyID uint, kind string, amount int64, dueDate *time.Time) *models.Invoice {
	t.Helper()
	ctx := context.Background()

	invoice, err := e.svcs.Invoice.Create(ctx, CreateInvoiceInput{
		PartyID:     partyID,
		Kind:        kind,
		InvoiceDate: time.Now(),
		DueDate:     dueDate,
		Subtotal:    decimal.NewFromInt(amount),
	}, testActor)
	require.NoError(t, err)

	invoice, err = e.svcs.Invoice.Issue(ctx, invoice.ID, testActor)
	require.NoError(t, err)
	return invoice
}

func (e *testEnv) createDraftVoucher(t *testing.T, partyID uint, kind string, amount int64) *models.Voucher {
	t.Helper()
	voucher, err := e.svcs.Voucher.Create(context.Background(), CreateVoucherInput{
		PartyID:     partyID,
		Kind:        kind,
		VoucherDate: time.Now(),
		TotalAmount: decimal.NewFromInt(amount),
		Method:      models.MethodTransfer,
	}, testActor)
	require.NoError(t, err)
	return voucher
}

func (e *testEnv) createProduct(t *testing.T, sku string) *models.Product {
	t.Helper()
	product := &models.Product{SKU: sku, Name: "Product " + sku, ListPrice: decimal.NewFromInt(100)}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func (e *testEnv) setStock(t *testing.T, productID uint, quantity int) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.StockLevel{ProductID: productID, Quantity: quantity}).Error)
}

func (e *testEnv) stockQuantity(t *testing.T, productID uint) int {
	t.Helper()
	var level models.StockLevel
	require.NoError(t, e.db.Where("product_id = ?", productID).First(&level).Error)
	return level.Quantity
}

func (e *testEnv) reloadInvoice(t *testing.T, id uint) *models.Invoice {
	t.Helper()
	var invoice models.Invoice
	require.NoError(t, e.db.First(&invoice, id).Error)
	return &invoice
}

func (e *testEnv) reloadParty(t *testing.T, id uint) *models.Party {
	t.Helper()
	var party models.Party
	require.NoError(t, e.db.First(&party, id).Error)
	return &party
}

func (e *testEnv) auditCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.AuditLog{}).Count(&count).Error)
	return count
}

func assertDecimal(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, actual.Equal(decimal.NewFromInt(expected)), "expected %d, got %s", expected, actual.String())
}

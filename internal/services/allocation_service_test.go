package services

import (
	"context"
	"testing"
	"time"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateRejectsPartyMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customerA := env.createParty(t, models.PartyTypeCustomer, "Customer A")
	customerB := env.createParty(t, models.PartyTypeCustomer, "Customer B")
	invoice := env.createIssuedInvoice(t, customerA.ID, models.InvoiceKindReceivable, 1000, nil)
	voucher := env.createDraftVoucher(t, customerB.ID, models.VoucherKindReceipt, 1000)

	_, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(500), testActor)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestAllocateRejectsKindMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A payable invoice on a customer party cannot be built through the
	// service, so seed the row directly to isolate the kind check.
	customer := env.createCustomer(t)
	invoice := &models.Invoice{
		PartyID:     customer.ID,
		Kind:        models.InvoiceKindPayable,
		InvoiceNo:   "BIL-X-0001",
		InvoiceDate: time.Now(),
		Status:      models.InvoiceStatusIssued,
	}
	invoice.SetAmounts(decimal.NewFromInt(1000), decimal.Zero, decimal.Zero)
	require.NoError(t, env.db.Create(invoice).Error)

	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 1000)

	_, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(500), testActor)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestAllocateRejectsNonOpenInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 1000)

	// Still a draft, not yet issued.
	draft, err := env.svcs.Invoice.Create(ctx, CreateInvoiceInput{
		PartyID:     customer.ID,
		Kind:        models.InvoiceKindReceivable,
		InvoiceDate: time.Now(),
		Subtotal:    decimal.NewFromInt(1000),
	}, testActor)
	require.NoError(t, err)

	_, err = env.svcs.Allocation.Allocate(ctx, voucher.ID, draft.ID, decimal.NewFromInt(500), testActor)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestAllocateRejectsExceedingOpenAmount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 1000, nil)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 5000)

	_, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(1500), testActor)
	assert.ErrorIs(t, err, ErrAllocation)

	// The voucher's own earlier draft allocation counts against the invoice.
	_, err = env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(800), testActor)
	require.NoError(t, err)
	_, err = env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(300), testActor)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestAllocateRejectsExceedingVoucherTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	first := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 1000, nil)
	second := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 1000, nil)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 1200)

	_, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, first.ID, decimal.NewFromInt(1000), testActor)
	require.NoError(t, err)
	_, err = env.svcs.Allocation.Allocate(ctx, voucher.ID, second.ID, decimal.NewFromInt(300), testActor)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestAllocationsImmutableAfterPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 1000, nil)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 1000)

	allocation, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(1000), testActor)
	require.NoError(t, err)
	_, err = env.svcs.Voucher.Post(ctx, voucher.ID, testActor)
	require.NoError(t, err)

	_, err = env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(1), testActor)
	assert.ErrorIs(t, err, ErrInvalidState)

	err = env.svcs.Allocation.Remove(ctx, allocation.ID, testActor)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRemoveAllocation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 1000, nil)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 1000)

	allocation, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(1000), testActor)
	require.NoError(t, err)

	require.NoError(t, env.svcs.Allocation.Remove(ctx, allocation.ID, testActor))

	loaded, err := env.svcs.Voucher.FindByID(ctx, voucher.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Allocations)
}

func TestAutoAllocateOldestDueFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	early := time.Now().AddDate(0, 0, -30)
	late := time.Now().AddDate(0, 0, -10)

	older := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 10000, &early)
	newer := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 8000, &late)
	undated := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 2000, nil)

	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 15000)

	created, err := env.svcs.Allocation.AutoAllocate(ctx, voucher.ID, testActor)
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, older.ID, created[0].InvoiceID)
	assertDecimal(t, 10000, created[0].AllocatedAmount)
	assert.Equal(t, newer.ID, created[1].InvoiceID)
	assertDecimal(t, 5000, created[1].AllocatedAmount)

	// Invoices without a due date come last; the money ran out before it.
	for _, a := range created {
		assert.NotEqual(t, undated.ID, a.InvoiceID)
	}
}

func TestAutoAllocateSkipsAlreadyCoveredInvoices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	due := time.Now().AddDate(0, 0, -5)
	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 1000, &due)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 2000)

	_, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(1000), testActor)
	require.NoError(t, err)

	// The invoice is fully covered by this voucher's own draft allocation,
	// so nothing is left to spread.
	created, err := env.svcs.Allocation.AutoAllocate(ctx, voucher.ID, testActor)
	require.NoError(t, err)
	assert.Empty(t, created)
}

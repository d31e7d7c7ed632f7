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

func TestCreateInvoiceComputesTotals(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t)

	invoice, err := env.svcs.Invoice.Create(context.Background(), CreateInvoiceInput{
		PartyID:     customer.ID,
		Kind:        models.InvoiceKindReceivable,
		InvoiceDate: time.Now(),
		Subtotal:    decimal.NewFromInt(1000),
		Discount:    decimal.NewFromInt(100),
		Tax:         decimal.NewFromInt(150),
	}, testActor)
	require.NoError(t, err)

	assert.Equal(t, models.InvoiceStatusDraft, invoice.Status)
	assertDecimal(t, 1050, invoice.GrandTotal)
	assertDecimal(t, 1050, invoice.OpenAmount)
	assertDecimal(t, 0, invoice.PaidTotal)
	assert.Equal(t, "USD", invoice.Currency)
}

func TestCreateInvoiceValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.createCustomer(t)
	supplier := env.createSupplier(t)

	cases := []struct {
		name  string
		input CreateInvoiceInput
	}{
		{"unknown kind", CreateInvoiceInput{
			PartyID: customer.ID, Kind: "credit_note", InvoiceDate: time.Now(),
			Subtotal: decimal.NewFromInt(100),
		}},
		{"negative subtotal", CreateInvoiceInput{
			PartyID: customer.ID, Kind: models.InvoiceKindReceivable, InvoiceDate: time.Now(),
			Subtotal: decimal.NewFromInt(-100),
		}},
		{"discount exceeds subtotal", CreateInvoiceInput{
			PartyID: customer.ID, Kind: models.InvoiceKindReceivable, InvoiceDate: time.Now(),
			Subtotal: decimal.NewFromInt(100), Discount: decimal.NewFromInt(200),
		}},
		{"receivable on supplier", CreateInvoiceInput{
			PartyID: supplier.ID, Kind: models.InvoiceKindReceivable, InvoiceDate: time.Now(),
			Subtotal: decimal.NewFromInt(100),
		}},
		{"payable on customer", CreateInvoiceInput{
			PartyID: customer.ID, Kind: models.InvoiceKindPayable, InvoiceDate: time.Now(),
			Subtotal: decimal.NewFromInt(100),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svcs.Invoice.Create(ctx, tc.input, testActor)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestInvoiceNumberingPerKindAndDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.createCustomer(t)
	supplier := env.createSupplier(t)
	now := time.Now()

	first, err := env.svcs.Invoice.Create(ctx, CreateInvoiceInput{
		PartyID: customer.ID, Kind: models.InvoiceKindReceivable,
		InvoiceDate: now, Subtotal: decimal.NewFromInt(100),
	}, testActor)
	require.NoError(t, err)
	second, err := env.svcs.Invoice.Create(ctx, CreateInvoiceInput{
		PartyID: customer.ID, Kind: models.InvoiceKindReceivable,
		InvoiceDate: now, Subtotal: decimal.NewFromInt(100),
	}, testActor)
	require.NoError(t, err)
	bill, err := env.svcs.Invoice.Create(ctx, CreateInvoiceInput{
		PartyID: supplier.ID, Kind: models.InvoiceKindPayable,
		InvoiceDate: now, Subtotal: decimal.NewFromInt(100),
	}, testActor)
	require.NoError(t, err)

	day := models.SequenceDay(now)
	assert.Equal(t, "INV-"+day+"-0001", first.InvoiceNo)
	assert.Equal(t, "INV-"+day+"-0002", second.InvoiceNo)
	// Bills run on their own counter.
	assert.Equal(t, "BIL-"+day+"-0001", bill.InvoiceNo)
}

func TestIssueInvoiceRaisesOutstandingBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.createCustomer(t)

	invoice, err := env.svcs.Invoice.Create(ctx, CreateInvoiceInput{
		PartyID: customer.ID, Kind: models.InvoiceKindReceivable,
		InvoiceDate: time.Now(), Subtotal: decimal.NewFromInt(2500),
	}, testActor)
	require.NoError(t, err)

	// Drafts do not count toward the balance.
	assertDecimal(t, 0, env.reloadParty(t, customer.ID).OutstandingBalance)

	issued, err := env.svcs.Invoice.Issue(ctx, invoice.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusIssued, issued.Status)
	assert.NotNil(t, issued.IssuedAt)

	assertDecimal(t, 2500, env.reloadParty(t, customer.ID).OutstandingBalance)

	// Issuing twice is an invalid transition.
	_, err = env.svcs.Invoice.Issue(ctx, invoice.ID, testActor)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestIssueRequiresPositiveTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.createCustomer(t)

	invoice, err := env.svcs.Invoice.Create(ctx, CreateInvoiceInput{
		PartyID: customer.ID, Kind: models.InvoiceKindReceivable,
		InvoiceDate: time.Now(), Subtotal: decimal.Zero,
	}, testActor)
	require.NoError(t, err)

	_, err = env.svcs.Invoice.Issue(ctx, invoice.ID, testActor)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelIssuedInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.createCustomer(t)

	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 2000, nil)

	cancelled, err := env.svcs.Invoice.Cancel(ctx, invoice.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusCancelled, cancelled.Status)
	assertDecimal(t, 0, cancelled.OpenAmount)
	assert.NotNil(t, cancelled.CancelledAt)

	assertDecimal(t, 0, env.reloadParty(t, customer.ID).OutstandingBalance)
}

func TestCancelRejectedWhenMoneyApplied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.createCustomer(t)

	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 2000, nil)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 500)

	_, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(500), testActor)
	require.NoError(t, err)
	_, err = env.svcs.Voucher.Post(ctx, voucher.ID, testActor)
	require.NoError(t, err)

	_, err = env.svcs.Invoice.Cancel(ctx, invoice.ID, testActor)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateInvoiceDraftOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.createCustomer(t)

	invoice, err := env.svcs.Invoice.Create(ctx, CreateInvoiceInput{
		PartyID: customer.ID, Kind: models.InvoiceKindReceivable,
		InvoiceDate: time.Now(), Subtotal: decimal.NewFromInt(1000),
	}, testActor)
	require.NoError(t, err)

	newSubtotal := decimal.NewFromInt(1500)
	updated, err := env.svcs.Invoice.Update(ctx, invoice.ID, UpdateInvoiceInput{Subtotal: &newSubtotal}, testActor)
	require.NoError(t, err)
	assertDecimal(t, 1500, updated.GrandTotal)
	assertDecimal(t, 1500, updated.OpenAmount)

	_, err = env.svcs.Invoice.Issue(ctx, invoice.ID, testActor)
	require.NoError(t, err)

	_, err = env.svcs.Invoice.Update(ctx, invoice.ID, UpdateInvoiceInput{Subtotal: &newSubtotal}, testActor)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecalculateBalanceIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.createCustomer(t)

	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 4000, nil)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 1000)
	_, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(1000), testActor)
	require.NoError(t, err)
	_, err = env.svcs.Voucher.Post(ctx, voucher.ID, testActor)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		party, err := env.svcs.Party.RecalculateBalance(ctx, customer.ID)
		require.NoError(t, err)
		assertDecimal(t, 3000, party.OutstandingBalance)
	}

	inv := env.reloadInvoice(t, invoice.ID)
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, inv.Status)
	assertDecimal(t, 1000, inv.PaidTotal)
}

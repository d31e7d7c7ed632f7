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

func TestVoucherPostSettlesInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 10000, nil)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 6000)

	_, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(6000), testActor)
	require.NoError(t, err)

	// Draft allocations reserve nothing.
	inv := env.reloadInvoice(t, invoice.ID)
	assertDecimal(t, 0, inv.PaidTotal)
	assertDecimal(t, 10000, inv.OpenAmount)
	assert.Equal(t, models.InvoiceStatusIssued, inv.Status)

	posted, err := env.svcs.Voucher.Post(ctx, voucher.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, models.VoucherStatusPosted, posted.Status)
	assert.NotNil(t, posted.PostedAt)

	inv = env.reloadInvoice(t, invoice.ID)
	assertDecimal(t, 6000, inv.PaidTotal)
	assertDecimal(t, 4000, inv.OpenAmount)
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, inv.Status)

	party := env.reloadParty(t, customer.ID)
	assertDecimal(t, 4000, party.OutstandingBalance)
}

func TestVoucherCancelReversesSettlement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 10000, nil)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 6000)

	_, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(6000), testActor)
	require.NoError(t, err)
	_, err = env.svcs.Voucher.Post(ctx, voucher.ID, testActor)
	require.NoError(t, err)

	cancelled, err := env.svcs.Voucher.Cancel(ctx, voucher.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, models.VoucherStatusCancelled, cancelled.Status)

	inv := env.reloadInvoice(t, invoice.ID)
	assertDecimal(t, 0, inv.PaidTotal)
	assertDecimal(t, 10000, inv.OpenAmount)
	assert.Equal(t, models.InvoiceStatusIssued, inv.Status)

	party := env.reloadParty(t, customer.ID)
	assertDecimal(t, 10000, party.OutstandingBalance)
}

func TestVoucherFullPaymentMarksInvoicePaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 5000, nil)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 5000)

	_, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(5000), testActor)
	require.NoError(t, err)
	_, err = env.svcs.Voucher.Post(ctx, voucher.ID, testActor)
	require.NoError(t, err)

	inv := env.reloadInvoice(t, invoice.ID)
	assert.Equal(t, models.InvoiceStatusPaid, inv.Status)
	assertDecimal(t, 0, inv.OpenAmount)

	party := env.reloadParty(t, customer.ID)
	assertDecimal(t, 0, party.OutstandingBalance)

	// A paid invoice cannot be cancelled.
	_, err = env.svcs.Invoice.Cancel(ctx, invoice.ID, testActor)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestVoucherPostRequiresAllocations(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 1000)

	// Draft with at least one allocation is the post precondition; a bare
	// draft is in no state to post.
	_, err := env.svcs.Voucher.Post(context.Background(), voucher.ID, testActor)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestVoucherPostRevalidatesOpenAmount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Two draft vouchers each fully allocate the same invoice. Drafts reserve
	// nothing, so both allocations are accepted. Only the first can post.
	customer := env.createCustomer(t)
	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 3000, nil)
	first := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 3000)
	second := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 3000)

	_, err := env.svcs.Allocation.Allocate(ctx, first.ID, invoice.ID, decimal.NewFromInt(3000), testActor)
	require.NoError(t, err)
	_, err = env.svcs.Allocation.Allocate(ctx, second.ID, invoice.ID, decimal.NewFromInt(3000), testActor)
	require.NoError(t, err)

	_, err = env.svcs.Voucher.Post(ctx, first.ID, testActor)
	require.NoError(t, err)

	_, err = env.svcs.Voucher.Post(ctx, second.ID, testActor)
	assert.ErrorIs(t, err, ErrAllocation)

	// The failed post must not have touched the ledger.
	inv := env.reloadInvoice(t, invoice.ID)
	assert.Equal(t, models.InvoiceStatusPaid, inv.Status)
	assertDecimal(t, 3000, inv.PaidTotal)
}

func TestVoucherPostIsNotRepeatable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	customer := env.createCustomer(t)
	invoice := env.createIssuedInvoice(t, customer.ID, models.InvoiceKindReceivable, 1000, nil)
	voucher := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 1000)

	_, err := env.svcs.Allocation.Allocate(ctx, voucher.ID, invoice.ID, decimal.NewFromInt(1000), testActor)
	require.NoError(t, err)
	_, err = env.svcs.Voucher.Post(ctx, voucher.ID, testActor)
	require.NoError(t, err)

	_, err = env.svcs.Voucher.Post(ctx, voucher.ID, testActor)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestVoucherCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.createCustomer(t)
	supplier := env.createSupplier(t)

	cases := []struct {
		name  string
		input CreateVoucherInput
	}{
		{"unknown kind", CreateVoucherInput{
			PartyID: customer.ID, Kind: "refund", VoucherDate: time.Now(),
			TotalAmount: decimal.NewFromInt(100), Method: models.MethodCash,
		}},
		{"zero amount", CreateVoucherInput{
			PartyID: customer.ID, Kind: models.VoucherKindReceipt, VoucherDate: time.Now(),
			TotalAmount: decimal.Zero, Method: models.MethodCash,
		}},
		{"unknown method", CreateVoucherInput{
			PartyID: customer.ID, Kind: models.VoucherKindReceipt, VoucherDate: time.Now(),
			TotalAmount: decimal.NewFromInt(100), Method: "barter",
		}},
		{"receipt from supplier", CreateVoucherInput{
			PartyID: supplier.ID, Kind: models.VoucherKindReceipt, VoucherDate: time.Now(),
			TotalAmount: decimal.NewFromInt(100), Method: models.MethodCash,
		}},
		{"payment to customer", CreateVoucherInput{
			PartyID: customer.ID, Kind: models.VoucherKindPayment, VoucherDate: time.Now(),
			TotalAmount: decimal.NewFromInt(100), Method: models.MethodCash,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svcs.Voucher.Create(ctx, tc.input, testActor)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestVoucherNumberingPerKind(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer(t)
	supplier := env.createSupplier(t)

	receipt := env.createDraftVoucher(t, customer.ID, models.VoucherKindReceipt, 100)
	payment := env.createDraftVoucher(t, supplier.ID, models.VoucherKindPayment, 100)

	day := models.SequenceDay(time.Now())
	assert.Equal(t, "RCP-"+day+"-0001", receipt.DocumentNo)
	assert.Equal(t, "PAY-"+day+"-0001", payment.DocumentNo)
}

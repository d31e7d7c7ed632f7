package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceRecalculateDerivesStatus(t *testing.T) {
	inv := &Invoice{Status: InvoiceStatusIssued}
	inv.SetAmounts(decimal.NewFromInt(1000), decimal.Zero, decimal.Zero)

	inv.Recalculate(decimal.Zero)
	assert.Equal(t, InvoiceStatusIssued, inv.Status)
	assert.True(t, inv.OpenAmount.Equal(decimal.NewFromInt(1000)))

	inv.Recalculate(decimal.NewFromInt(400))
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	assert.True(t, inv.OpenAmount.Equal(decimal.NewFromInt(600)))

	inv.Recalculate(decimal.NewFromInt(1000))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.OpenAmount.IsZero())

	// Dropping back below the total reopens the invoice.
	inv.Recalculate(decimal.NewFromInt(400))
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	inv.Recalculate(decimal.Zero)
	assert.Equal(t, InvoiceStatusIssued, inv.Status)
}

func TestInvoiceRecalculateLeavesTerminalStatesAlone(t *testing.T) {
	draft := &Invoice{Status: InvoiceStatusDraft}
	draft.SetAmounts(decimal.NewFromInt(500), decimal.Zero, decimal.Zero)
	draft.Recalculate(decimal.Zero)
	assert.Equal(t, InvoiceStatusDraft, draft.Status)

	cancelled := &Invoice{Status: InvoiceStatusCancelled}
	cancelled.SetAmounts(decimal.NewFromInt(500), decimal.Zero, decimal.Zero)
	cancelled.Recalculate(decimal.Zero)
	assert.Equal(t, InvoiceStatusCancelled, cancelled.Status)
}

func TestInvoiceRecalculateClampsOverpayment(t *testing.T) {
	inv := &Invoice{Status: InvoiceStatusIssued}
	inv.SetAmounts(decimal.NewFromInt(100), decimal.Zero, decimal.Zero)

	inv.Recalculate(decimal.NewFromInt(150))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.OpenAmount.IsZero())
}

func TestInvoiceOverdueDays(t *testing.T) {
	now := time.Now()
	due := now.AddDate(0, 0, -10)

	inv := &Invoice{Status: InvoiceStatusIssued, DueDate: &due}
	inv.SetAmounts(decimal.NewFromInt(100), decimal.Zero, decimal.Zero)
	assert.True(t, inv.IsOverdue(now))
	assert.Equal(t, 10, inv.OverdueDays(now))

	// Paid invoices are never overdue.
	inv.Recalculate(decimal.NewFromInt(100))
	assert.False(t, inv.IsOverdue(now))
	assert.Equal(t, 0, inv.OverdueDays(now))

	undated := &Invoice{Status: InvoiceStatusIssued}
	undated.SetAmounts(decimal.NewFromInt(100), decimal.Zero, decimal.Zero)
	assert.False(t, undated.IsOverdue(now))
}

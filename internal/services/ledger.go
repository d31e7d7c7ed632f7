package services

import (
	"context"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/shopspring/decimal"
)

// Ledger recalculation helpers. Both run inside the caller's transaction
// (the repositories must be tx-bound) and are idempotent: they derive state
// from the allocation rows, never adjust it incrementally.

// recalculateInvoice recomputes an invoice's paid_total, open_amount and
// status from the allocations whose parent voucher is posted
func recalculateInvoice(ctx context.Context, r *repository.Repositories, invoiceID uint) (*models.Invoice, error) {
	invoice, err := r.Invoice.FindByIDForUpdate(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	allocations, err := r.Voucher.FindActiveAllocationsByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	paid := decimal.Zero
	for _, a := range allocations {
		paid = paid.Add(a.AllocatedAmount)
	}

	invoice.Recalculate(paid)
	if err := r.Invoice.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// recalculatePartyBalance recomputes a party's outstanding balance as the
// sum of open amounts across its issued and partially paid invoices
func recalculatePartyBalance(ctx context.Context, r *repository.Repositories, partyID uint) (*models.Party, error) {
	party, err := r.Party.FindByIDForUpdate(ctx, partyID)
	if err != nil {
		return nil, err
	}

	invoices, err := r.Invoice.FindByParty(ctx, partyID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status == models.InvoiceStatusIssued || inv.Status == models.InvoiceStatusPartiallyPaid {
			total = total.Add(inv.OpenAmount)
		}
	}

	party.OutstandingBalance = total
	if err := r.Party.Update(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

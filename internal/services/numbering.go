package services

import (
	"context"
	"time"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
)

// Document numbers are issued inside the transaction that creates the
// document, against a locked per-prefix per-day counter row. These helpers
// pick the prefix for each document family.

func nextInvoiceNo(ctx context.Context, seq repository.SequenceRepository, kind string, t time.Time) (string, error) {
	prefix := models.PrefixInvoice
	if kind == models.InvoiceKindPayable {
		prefix = models.PrefixBill
	}
	return seq.Next(ctx, prefix, t)
}

func nextVoucherNo(ctx context.Context, seq repository.SequenceRepository, kind string, t time.Time) (string, error) {
	prefix := models.PrefixReceipt
	if kind == models.VoucherKindPayment {
		prefix = models.PrefixPayment
	}
	return seq.Next(ctx, prefix, t)
}

func nextReturnNo(ctx context.Context, seq repository.SequenceRepository, kind string, t time.Time) (string, error) {
	prefix := models.PrefixSalesReturn
	if kind == models.ReturnKindPurchase {
		prefix = models.PrefixPurchReturn
	}
	return seq.Next(ctx, prefix, t)
}

func nextInstallationNo(ctx context.Context, seq repository.SequenceRepository, t time.Time) (string, error) {
	return seq.Next(ctx, models.PrefixInstallation, t)
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationService manages the allocations of draft vouchers. Allocations
// are provisional until the voucher posts; they reserve nothing on the
// invoice and never touch balances.
type AllocationService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	auditSvc *AuditService
}

func NewAllocationService(db *gorm.DB, repos *repository.Repositories, auditSvc *AuditService) *AllocationService {
	return &AllocationService{db: db, repos: repos, auditSvc: auditSvc}
}

// Allocate assigns part of a draft voucher's amount to one open invoice
func (s *AllocationService) Allocate(ctx context.Context, voucherID, invoiceID uint, amount decimal.Decimal, actor Actor) (*models.Allocation, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("allocation amount must be positive: %w", ErrValidation)
	}

	rec := s.auditSvc.Begin(actor)
	var allocation *models.Allocation

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		voucher, err := r.Voucher.FindByIDForUpdate(ctx, voucherID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !voucher.MayEditAllocations() {
			return fmt.Errorf("voucher %s is %s: %w", voucher.DocumentNo, voucher.Status, ErrInvalidState)
		}

		loaded, err := r.Voucher.FindByIDWithAllocations(ctx, voucherID)
		if err != nil {
			return err
		}
		voucher.Allocations = loaded.Allocations

		invoice, err := r.Invoice.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if invoice.PartyID != voucher.PartyID {
			return fmt.Errorf("invoice %s belongs to a different party: %w", invoice.InvoiceNo, ErrAllocation)
		}
		if invoice.Kind != voucher.InvoiceKind() {
			return fmt.Errorf("%s voucher cannot settle %s invoice %s: %w",
				voucher.Kind, invoice.Kind, invoice.InvoiceNo, ErrAllocation)
		}
		if invoice.Status != models.InvoiceStatusIssued && invoice.Status != models.InvoiceStatusPartiallyPaid {
			return fmt.Errorf("invoice %s is %s: %w", invoice.InvoiceNo, invoice.Status, ErrAllocation)
		}

		// This voucher's own draft allocations against the same invoice
		// count against its open amount, even though other drafts do not.
		sameInvoice := decimal.Zero
		for _, a := range voucher.Allocations {
			if a.InvoiceID == invoiceID {
				sameInvoice = sameInvoice.Add(a.AllocatedAmount)
			}
		}
		if sameInvoice.Add(amount).GreaterThan(invoice.OpenAmount) {
			return fmt.Errorf("allocation %s exceeds open amount %s of invoice %s: %w",
				amount.String(), invoice.OpenAmount.String(), invoice.InvoiceNo, ErrAllocation)
		}
		if voucher.AllocatedTotal().Add(amount).GreaterThan(voucher.TotalAmount) {
			return fmt.Errorf("allocation %s exceeds unallocated amount %s of voucher %s: %w",
				amount.String(), voucher.UnallocatedAmount().String(), voucher.DocumentNo, ErrAllocation)
		}

		allocation = &models.Allocation{
			VoucherID:       voucherID,
			InvoiceID:       invoiceID,
			AllocatedAmount: amount,
		}
		if err := r.Voucher.CreateAllocation(ctx, allocation); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefVoucher, ID: voucherID},
			models.AuditActionUpdated,
			nil,
			map[string]interface{}{
				"allocation_id": allocation.ID,
				"invoice_id":    invoiceID,
				"amount":        amount.String(),
			})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return allocation, nil
}

// Remove deletes an allocation from a draft voucher
func (s *AllocationService) Remove(ctx context.Context, allocationID uint, actor Actor) error {
	rec := s.auditSvc.Begin(actor)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		allocation, err := r.Voucher.FindAllocation(ctx, allocationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if allocation.Voucher == nil || !allocation.Voucher.MayEditAllocations() {
			return fmt.Errorf("allocations of a non-draft voucher are immutable: %w", ErrInvalidState)
		}

		if err := r.Voucher.DeleteAllocation(ctx, allocationID); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefVoucher, ID: allocation.VoucherID},
			models.AuditActionUpdated,
			map[string]interface{}{
				"allocation_id": allocation.ID,
				"invoice_id":    allocation.InvoiceID,
				"amount":        allocation.AllocatedAmount.String(),
			},
			nil)
		return nil
	})
	if err != nil {
		return err
	}

	s.auditSvc.Commit(ctx, rec)
	return nil
}

// AutoAllocate spreads a draft voucher's unallocated amount across the
// party's open invoices, oldest due date first (undated invoices last).
// Partial settlement of the last reached invoice is fine.
func (s *AllocationService) AutoAllocate(ctx context.Context, voucherID uint, actor Actor) ([]models.Allocation, error) {
	rec := s.auditSvc.Begin(actor)
	var created []models.Allocation

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		voucher, err := r.Voucher.FindByIDForUpdate(ctx, voucherID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !voucher.MayEditAllocations() {
			return fmt.Errorf("voucher %s is %s: %w", voucher.DocumentNo, voucher.Status, ErrInvalidState)
		}

		loaded, err := r.Voucher.FindByIDWithAllocations(ctx, voucherID)
		if err != nil {
			return err
		}
		voucher.Allocations = loaded.Allocations

		remaining := voucher.UnallocatedAmount()
		if !remaining.IsPositive() {
			return nil
		}

		// Existing draft allocations of this voucher reduce what each
		// invoice can still absorb.
		alreadyAllocated := make(map[uint]decimal.Decimal)
		for _, a := range voucher.Allocations {
			alreadyAllocated[a.InvoiceID] = alreadyAllocated[a.InvoiceID].Add(a.AllocatedAmount)
		}

		invoices, err := r.Invoice.FindOpenByParty(ctx, voucher.PartyID, voucher.InvoiceKind())
		if err != nil {
			return err
		}

		for i := range invoices {
			if !remaining.IsPositive() {
				break
			}
			inv := &invoices[i]

			room := inv.OpenAmount.Sub(alreadyAllocated[inv.ID])
			if !room.IsPositive() {
				continue
			}
			amount := decimal.Min(remaining, room)

			allocation := models.Allocation{
				VoucherID:       voucherID,
				InvoiceID:       inv.ID,
				AllocatedAmount: amount,
			}
			if err := r.Voucher.CreateAllocation(ctx, &allocation); err != nil {
				return err
			}
			created = append(created, allocation)
			remaining = remaining.Sub(amount)

			rec.Record(models.Reference{Kind: models.RefVoucher, ID: voucherID},
				models.AuditActionUpdated,
				nil,
				map[string]interface{}{
					"allocation_id": allocation.ID,
					"invoice_id":    inv.ID,
					"amount":        amount.String(),
				})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return created, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateVoucherInput carries the fields for a new receipt or payment voucher
type CreateVoucherInput struct {
	PartyID     uint            `json:"party_id"`
	Kind        string          `json:"kind"`
	VoucherDate time.Time       `json:"voucher_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Method      string          `json:"method"`
	ReferenceNo *string         `json:"reference_no"`
}

type VoucherService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	auditSvc *AuditService
}

func NewVoucherService(db *gorm.DB, repos *repository.Repositories, auditSvc *AuditService) *VoucherService {
	return &VoucherService{db: db, repos: repos, auditSvc: auditSvc}
}

func validMethod(method string) bool {
	switch method {
	case models.MethodCash, models.MethodTransfer, models.MethodCard, models.MethodCheque:
		return true
	}
	return false
}

// Create records a new draft voucher. Receipts come from customers,
// payments go to suppliers.
func (s *VoucherService) Create(ctx context.Context, input CreateVoucherInput, actor Actor) (*models.Voucher, error) {
	if input.Kind != models.VoucherKindReceipt && input.Kind != models.VoucherKindPayment {
		return nil, fmt.Errorf("unknown voucher kind %q: %w", input.Kind, ErrValidation)
	}
	if !input.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("voucher amount must be positive: %w", ErrValidation)
	}
	if !validMethod(input.Method) {
		return nil, fmt.Errorf("unknown payment method %q: %w", input.Method, ErrValidation)
	}

	rec := s.auditSvc.Begin(actor)
	var voucher *models.Voucher

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		party, err := r.Party.FindByID(ctx, input.PartyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if input.Kind == models.VoucherKindReceipt && party.PartyType != models.PartyTypeCustomer {
			return fmt.Errorf("receipt requires a customer party: %w", ErrValidation)
		}
		if input.Kind == models.VoucherKindPayment && party.PartyType != models.PartyTypeSupplier {
			return fmt.Errorf("payment requires a supplier party: %w", ErrValidation)
		}

		documentNo, err := nextVoucherNo(ctx, r.Sequence, input.Kind, input.VoucherDate)
		if err != nil {
			return err
		}

		voucher = &models.Voucher{
			PartyID:     input.PartyID,
			Kind:        input.Kind,
			DocumentNo:  documentNo,
			VoucherDate: input.VoucherDate,
			TotalAmount: input.TotalAmount,
			Method:      input.Method,
			ReferenceNo: input.ReferenceNo,
			Status:      models.VoucherStatusDraft,
			CreatedBy:   actor.ID,
		}
		if err := r.Voucher.Create(ctx, voucher); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefVoucher, ID: voucher.ID},
			models.AuditActionCreated,
			nil,
			map[string]interface{}{
				"document_no":  voucher.DocumentNo,
				"kind":         voucher.Kind,
				"party_id":     voucher.PartyID,
				"total_amount": voucher.TotalAmount.String(),
				"status":       voucher.Status,
			})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return voucher, nil
}

// Post makes a draft voucher effective. Its allocations start counting
// toward the paid totals of the invoices they settle, and the party's
// outstanding balance drops accordingly. Allocations are re-validated
// against the invoices' current open amounts because drafts reserve
// nothing.
func (s *VoucherService) Post(ctx context.Context, id uint, actor Actor) (*models.Voucher, error) {
	rec := s.auditSvc.Begin(actor)
	var voucher *models.Voucher

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		v, err := r.Voucher.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !v.MayPost() {
			return fmt.Errorf("voucher %s is %s: %w", v.DocumentNo, v.Status, ErrInvalidState)
		}

		loaded, err := r.Voucher.FindByIDWithAllocations(ctx, id)
		if err != nil {
			return err
		}
		v.Allocations = loaded.Allocations
		if len(v.Allocations) == 0 {
			return fmt.Errorf("voucher %s has no allocations: %w", v.DocumentNo, ErrInvalidState)
		}
		if v.AllocatedTotal().GreaterThan(v.TotalAmount) {
			return fmt.Errorf("allocated %s exceeds voucher total %s: %w",
				v.AllocatedTotal().String(), v.TotalAmount.String(), ErrAllocation)
		}

		// Group this voucher's allocations per invoice and check each sum
		// against the invoice's open amount as of now.
		perInvoice := make(map[uint]decimal.Decimal)
		for _, a := range v.Allocations {
			perInvoice[a.InvoiceID] = perInvoice[a.InvoiceID].Add(a.AllocatedAmount)
		}
		for invoiceID, amount := range perInvoice {
			inv, err := r.Invoice.FindByIDForUpdate(ctx, invoiceID)
			if err != nil {
				return err
			}
			if inv.Status != models.InvoiceStatusIssued && inv.Status != models.InvoiceStatusPartiallyPaid {
				return fmt.Errorf("invoice %s is %s: %w", inv.InvoiceNo, inv.Status, ErrAllocation)
			}
			if amount.GreaterThan(inv.OpenAmount) {
				return fmt.Errorf("allocation %s exceeds open amount %s of invoice %s: %w",
					amount.String(), inv.OpenAmount.String(), inv.InvoiceNo, ErrAllocation)
			}
		}

		now := time.Now()
		v.Status = models.VoucherStatusPosted
		v.PostedAt = &now
		if err := r.Voucher.Update(ctx, v); err != nil {
			return err
		}

		for invoiceID := range perInvoice {
			if _, err := recalculateInvoice(ctx, r, invoiceID); err != nil {
				return err
			}
		}
		if _, err := recalculatePartyBalance(ctx, r, v.PartyID); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefVoucher, ID: v.ID},
			models.AuditActionPosted,
			map[string]interface{}{"status": models.VoucherStatusDraft},
			map[string]interface{}{"status": v.Status, "allocated": v.AllocatedTotal().String()})

		voucher = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return voucher, nil
}

// Cancel reverses a posted voucher. Its allocations stop counting and every
// affected invoice is recalculated, which can move a paid invoice back to
// issued or partially_paid.
func (s *VoucherService) Cancel(ctx context.Context, id uint, actor Actor) (*models.Voucher, error) {
	rec := s.auditSvc.Begin(actor)
	var voucher *models.Voucher

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		v, err := r.Voucher.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !v.MayCancel() {
			return fmt.Errorf("voucher %s is %s: %w", v.DocumentNo, v.Status, ErrInvalidState)
		}

		loaded, err := r.Voucher.FindByIDWithAllocations(ctx, id)
		if err != nil {
			return err
		}
		v.Allocations = loaded.Allocations

		now := time.Now()
		v.Status = models.VoucherStatusCancelled
		v.CancelledAt = &now
		if err := r.Voucher.Update(ctx, v); err != nil {
			return err
		}

		seen := make(map[uint]bool)
		for _, a := range v.Allocations {
			if seen[a.InvoiceID] {
				continue
			}
			seen[a.InvoiceID] = true
			if _, err := recalculateInvoice(ctx, r, a.InvoiceID); err != nil {
				return err
			}
		}
		if _, err := recalculatePartyBalance(ctx, r, v.PartyID); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefVoucher, ID: v.ID},
			models.AuditActionCancelled,
			map[string]interface{}{"status": models.VoucherStatusPosted},
			map[string]interface{}{"status": v.Status})

		voucher = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return voucher, nil
}

func (s *VoucherService) FindByID(ctx context.Context, id uint) (*models.Voucher, error) {
	voucher, err := s.repos.Voucher.FindByIDWithAllocations(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return voucher, nil
}

func (s *VoucherService) List(ctx context.Context, query *repository.ListQuery) ([]models.Voucher, int64, error) {
	return s.repos.Voucher.List(ctx, query)
}

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

// CreateInvoiceInput carries the fields for a new invoice or bill
type CreateInvoiceInput struct {
	PartyID       uint            `json:"party_id"`
	Kind          string          `json:"kind"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       *time.Time      `json:"due_date"`
	Subtotal      decimal.Decimal `json:"subtotal_amount"`
	Discount      decimal.Decimal `json:"discount_amount"`
	Tax           decimal.Decimal `json:"tax_amount"`
	Currency      string          `json:"currency"`
	ReferenceKind *string         `json:"reference_kind"`
	ReferenceID   *uint           `json:"reference_id"`
}

// UpdateInvoiceInput carries the editable fields of a draft invoice
type UpdateInvoiceInput struct {
	DueDate  *time.Time       `json:"due_date"`
	Subtotal *decimal.Decimal `json:"subtotal_amount"`
	Discount *decimal.Decimal `json:"discount_amount"`
	Tax      *decimal.Decimal `json:"tax_amount"`
}

type InvoiceService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	auditSvc *AuditService
}

func NewInvoiceService(db *gorm.DB, repos *repository.Repositories, auditSvc *AuditService) *InvoiceService {
	return &InvoiceService{db: db, repos: repos, auditSvc: auditSvc}
}

// Create records a new draft invoice. Receivables belong to customers,
// payables to suppliers; the document number is issued inside the same
// transaction.
func (s *InvoiceService) Create(ctx context.Context, input CreateInvoiceInput, actor Actor) (*models.Invoice, error) {
	if input.Kind != models.InvoiceKindReceivable && input.Kind != models.InvoiceKindPayable {
		return nil, fmt.Errorf("unknown invoice kind %q: %w", input.Kind, ErrValidation)
	}
	if input.Subtotal.IsNegative() || input.Discount.IsNegative() || input.Tax.IsNegative() {
		return nil, fmt.Errorf("amounts must not be negative: %w", ErrValidation)
	}
	grand := input.Subtotal.Sub(input.Discount).Add(input.Tax)
	if grand.IsNegative() {
		return nil, fmt.Errorf("discount exceeds subtotal plus tax: %w", ErrValidation)
	}

	rec := s.auditSvc.Begin(actor)
	var invoice *models.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		party, err := r.Party.FindByID(ctx, input.PartyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if input.Kind == models.InvoiceKindReceivable && party.PartyType != models.PartyTypeCustomer {
			return fmt.Errorf("receivable requires a customer party: %w", ErrValidation)
		}
		if input.Kind == models.InvoiceKindPayable && party.PartyType != models.PartyTypeSupplier {
			return fmt.Errorf("payable requires a supplier party: %w", ErrValidation)
		}

		invoiceNo, err := nextInvoiceNo(ctx, r.Sequence, input.Kind, input.InvoiceDate)
		if err != nil {
			return err
		}

		currency := input.Currency
		if currency == "" {
			currency = "USD"
		}

		invoice = &models.Invoice{
			PartyID:       input.PartyID,
			Kind:          input.Kind,
			InvoiceNo:     invoiceNo,
			InvoiceDate:   input.InvoiceDate,
			DueDate:       input.DueDate,
			Currency:      currency,
			Status:        models.InvoiceStatusDraft,
			ReferenceKind: input.ReferenceKind,
			ReferenceID:   input.ReferenceID,
		}
		invoice.SetAmounts(input.Subtotal, input.Discount, input.Tax)

		if err := r.Invoice.Create(ctx, invoice); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefInvoice, ID: invoice.ID},
			models.AuditActionCreated,
			nil,
			map[string]interface{}{
				"invoice_no":  invoice.InvoiceNo,
				"kind":        invoice.Kind,
				"party_id":    invoice.PartyID,
				"grand_total": invoice.GrandTotal.String(),
				"status":      invoice.Status,
			})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return invoice, nil
}

// Update edits the monetary fields of a draft invoice
func (s *InvoiceService) Update(ctx context.Context, id uint, input UpdateInvoiceInput, actor Actor) (*models.Invoice, error) {
	rec := s.auditSvc.Begin(actor)
	var invoice *models.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		inv, err := r.Invoice.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !inv.CanBeUpdated() {
			return fmt.Errorf("invoice %s is %s: %w", inv.InvoiceNo, inv.Status, ErrInvalidState)
		}

		before := map[string]interface{}{
			"subtotal_amount": inv.SubtotalAmount.String(),
			"discount_amount": inv.DiscountAmount.String(),
			"tax_amount":      inv.TaxAmount.String(),
			"grand_total":     inv.GrandTotal.String(),
		}

		subtotal := inv.SubtotalAmount
		discount := inv.DiscountAmount
		tax := inv.TaxAmount
		if input.Subtotal != nil {
			subtotal = *input.Subtotal
		}
		if input.Discount != nil {
			discount = *input.Discount
		}
		if input.Tax != nil {
			tax = *input.Tax
		}
		if subtotal.IsNegative() || discount.IsNegative() || tax.IsNegative() {
			return fmt.Errorf("amounts must not be negative: %w", ErrValidation)
		}
		if subtotal.Sub(discount).Add(tax).IsNegative() {
			return fmt.Errorf("discount exceeds subtotal plus tax: %w", ErrValidation)
		}

		inv.SetAmounts(subtotal, discount, tax)
		if input.DueDate != nil {
			inv.DueDate = input.DueDate
		}

		if err := r.Invoice.Update(ctx, inv); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefInvoice, ID: inv.ID},
			models.AuditActionUpdated,
			before,
			map[string]interface{}{
				"subtotal_amount": inv.SubtotalAmount.String(),
				"discount_amount": inv.DiscountAmount.String(),
				"tax_amount":      inv.TaxAmount.String(),
				"grand_total":     inv.GrandTotal.String(),
			})

		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return invoice, nil
}

// Issue moves a draft invoice into the ledger. From here on it counts
// toward the party's outstanding balance.
func (s *InvoiceService) Issue(ctx context.Context, id uint, actor Actor) (*models.Invoice, error) {
	rec := s.auditSvc.Begin(actor)
	var invoice *models.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		inv, err := r.Invoice.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !inv.CanBeIssued() {
			return fmt.Errorf("invoice %s cannot be issued from %s: %w", inv.InvoiceNo, inv.Status, ErrInvalidState)
		}

		now := time.Now()
		inv.Status = models.InvoiceStatusIssued
		inv.IssuedAt = &now
		if err := r.Invoice.Update(ctx, inv); err != nil {
			return err
		}

		if _, err := recalculatePartyBalance(ctx, r, inv.PartyID); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefInvoice, ID: inv.ID},
			models.AuditActionIssued,
			map[string]interface{}{"status": models.InvoiceStatusDraft},
			map[string]interface{}{"status": inv.Status})

		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return invoice, nil
}

// Cancel voids an invoice that has no money applied to it
func (s *InvoiceService) Cancel(ctx context.Context, id uint, actor Actor) (*models.Invoice, error) {
	rec := s.auditSvc.Begin(actor)
	var invoice *models.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos.WithTx(tx)

		inv, err := r.Invoice.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !inv.CanBeCancelled() {
			return fmt.Errorf("invoice %s with paid total %s cannot be cancelled: %w",
				inv.InvoiceNo, inv.PaidTotal.String(), ErrInvalidState)
		}

		before := inv.Status
		now := time.Now()
		inv.Status = models.InvoiceStatusCancelled
		inv.CancelledAt = &now
		inv.OpenAmount = decimal.Zero
		if err := r.Invoice.Update(ctx, inv); err != nil {
			return err
		}

		if _, err := recalculatePartyBalance(ctx, r, inv.PartyID); err != nil {
			return err
		}

		rec.Record(models.Reference{Kind: models.RefInvoice, ID: inv.ID},
			models.AuditActionCancelled,
			map[string]interface{}{"status": before},
			map[string]interface{}{"status": inv.Status})

		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Commit(ctx, rec)
	return invoice, nil
}

func (s *InvoiceService) FindByID(ctx context.Context, id uint) (*models.Invoice, error) {
	invoice, err := s.repos.Invoice.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) FindOpenByParty(ctx context.Context, partyID uint, kind string) ([]models.Invoice, error) {
	return s.repos.Invoice.FindOpenByParty(ctx, partyID, kind)
}

func (s *InvoiceService) List(ctx context.Context, query *repository.ListQuery) ([]models.Invoice, int64, error) {
	return s.repos.Invoice.List(ctx, query)
}

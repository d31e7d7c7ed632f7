package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice represents an AR invoice (kind=receivable, owed by a customer) or
// an AP bill (kind=payable, owed to a supplier)
type Invoice struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	PartyID        uint            `gorm:"not null;index" json:"party_id"`
	Kind           string          `gorm:"size:20;not null;index" json:"kind"`
	InvoiceNo      string          `gorm:"size:40;not null;uniqueIndex" json:"invoice_no"`
	InvoiceDate    time.Time       `gorm:"type:date;not null;index" json:"invoice_date"`
	DueDate        *time.Time      `gorm:"type:date;index" json:"due_date"`
	SubtotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"subtotal_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax_amount"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"grand_total"`
	PaidTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"paid_total"`
	OpenAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"open_amount"`
	Currency       string          `gorm:"size:3;default:USD;not null" json:"currency"`
	Status         string          `gorm:"size:20;default:draft;not null;index" json:"status"`
	ReferenceKind  *string         `gorm:"size:40" json:"reference_kind"`
	ReferenceID    *uint           `json:"reference_id"`
	IssuedAt       *time.Time      `json:"issued_at"`
	CancelledAt    *time.Time      `json:"cancelled_at"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Associations
	Party       Party        `gorm:"foreignKey:PartyID" json:"party,omitempty"`
	Allocations []Allocation `gorm:"foreignKey:InvoiceID" json:"allocations,omitempty"`
}

// TableName specifies the table name for Invoice
func (Invoice) TableName() string {
	return "invoices"
}

// Invoice kind constants
const (
	InvoiceKindReceivable = "receivable"
	InvoiceKindPayable    = "payable"
)

// Invoice status constants
const (
	InvoiceStatusDraft         = "draft"
	InvoiceStatusIssued        = "issued"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusCancelled     = "cancelled"
)

// CanBeIssued returns true if the invoice can transition to issued
func (i *Invoice) CanBeIssued() bool {
	return i.Status == InvoiceStatusDraft && i.GrandTotal.IsPositive()
}

// CanBeCancelled returns true if the invoice can be cancelled.
// Only unpaid drafts and issued invoices may be cancelled.
func (i *Invoice) CanBeCancelled() bool {
	if !i.PaidTotal.IsZero() {
		return false
	}
	return i.Status == InvoiceStatusDraft || i.Status == InvoiceStatusIssued
}

// CanBeUpdated returns true if monetary fields may still be edited
func (i *Invoice) CanBeUpdated() bool {
	return i.Status == InvoiceStatusDraft
}

// SetAmounts recomputes grand_total and open_amount from the component
// amounts. Valid only while the invoice is a draft, where paid_total is
// necessarily zero.
func (i *Invoice) SetAmounts(subtotal, discount, tax decimal.Decimal) {
	i.SubtotalAmount = subtotal
	i.DiscountAmount = discount
	i.TaxAmount = tax
	i.GrandTotal = subtotal.Sub(discount).Add(tax)
	i.OpenAmount = i.GrandTotal
}

// Recalculate derives paid_total, open_amount and status from the given paid
// total. This is the single chokepoint that writes a non-terminal status:
// paid_total=0 -> issued, 0<paid<grand -> partially_paid, paid>=grand -> paid.
// Draft and cancelled invoices are left untouched.
func (i *Invoice) Recalculate(paidTotal decimal.Decimal) {
	i.PaidTotal = paidTotal
	open := i.GrandTotal.Sub(paidTotal)
	if open.IsNegative() {
		open = decimal.Zero
	}
	i.OpenAmount = open

	if i.Status == InvoiceStatusDraft || i.Status == InvoiceStatusCancelled {
		return
	}
	switch {
	case paidTotal.IsZero():
		i.Status = InvoiceStatusIssued
	case paidTotal.LessThan(i.GrandTotal):
		i.Status = InvoiceStatusPartiallyPaid
	default:
		i.Status = InvoiceStatusPaid
	}
}

// IsOverdue returns true if the invoice is open and past its due date
func (i *Invoice) IsOverdue(asOf time.Time) bool {
	if i.DueDate == nil || !i.OpenAmount.IsPositive() {
		return false
	}
	if i.Status != InvoiceStatusIssued && i.Status != InvoiceStatusPartiallyPaid {
		return false
	}
	return asOf.After(*i.DueDate)
}

// OverdueDays returns the number of whole days past due
func (i *Invoice) OverdueDays(asOf time.Time) int {
	if !i.IsOverdue(asOf) {
		return 0
	}
	return int(asOf.Sub(*i.DueDate).Hours() / 24)
}

// InvoiceResponse is the JSON response format for invoices
type InvoiceResponse struct {
	ID             uint            `json:"id"`
	PartyID        uint            `json:"party_id"`
	PartyName      string          `json:"party_name,omitempty"`
	Kind           string          `json:"kind"`
	InvoiceNo      string          `json:"invoice_no"`
	InvoiceDate    time.Time       `json:"invoice_date"`
	DueDate        *time.Time      `json:"due_date"`
	SubtotalAmount decimal.Decimal `json:"subtotal_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	PaidTotal      decimal.Decimal `json:"paid_total"`
	OpenAmount     decimal.Decimal `json:"open_amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	ReferenceKind  *string         `json:"reference_kind,omitempty"`
	ReferenceID    *uint           `json:"reference_id,omitempty"`
	OverdueDays    int             `json:"overdue_days"`
	IssuedAt       *time.Time      `json:"issued_at"`
	CancelledAt    *time.Time      `json:"cancelled_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToResponse converts Invoice to InvoiceResponse
func (i *Invoice) ToResponse() InvoiceResponse {
	resp := InvoiceResponse{
		ID:             i.ID,
		PartyID:        i.PartyID,
		Kind:           i.Kind,
		InvoiceNo:      i.InvoiceNo,
		InvoiceDate:    i.InvoiceDate,
		DueDate:        i.DueDate,
		SubtotalAmount: i.SubtotalAmount,
		DiscountAmount: i.DiscountAmount,
		TaxAmount:      i.TaxAmount,
		GrandTotal:     i.GrandTotal,
		PaidTotal:      i.PaidTotal,
		OpenAmount:     i.OpenAmount,
		Currency:       i.Currency,
		Status:         i.Status,
		ReferenceKind:  i.ReferenceKind,
		ReferenceID:    i.ReferenceID,
		OverdueDays:    i.OverdueDays(time.Now()),
		IssuedAt:       i.IssuedAt,
		CancelledAt:    i.CancelledAt,
		CreatedAt:      i.CreatedAt,
	}
	if i.Party.ID != 0 {
		resp.PartyName = i.Party.Name
	}
	return resp
}

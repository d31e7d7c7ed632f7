package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Voucher represents a cash event against one party: an AR receipt
// (kind=receipt, cash in from a customer) or an AP payment (kind=payment,
// cash out to a supplier). It owns the allocations that settle invoices.
type Voucher struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	PartyID     uint            `gorm:"not null;index" json:"party_id"`
	Kind        string          `gorm:"size:20;not null;index" json:"kind"`
	DocumentNo  string          `gorm:"size:40;not null;uniqueIndex" json:"document_no"`
	VoucherDate time.Time       `gorm:"type:date;not null;index" json:"voucher_date"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	Method      string          `gorm:"size:20;not null" json:"method"`
	ReferenceNo *string         `gorm:"size:60" json:"reference_no"`
	Status      string          `gorm:"size:20;default:draft;not null;index" json:"status"`
	PostedAt    *time.Time      `json:"posted_at"`
	CancelledAt *time.Time      `json:"cancelled_at"`
	CreatedBy   uint            `gorm:"index" json:"created_by"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Associations
	Party       Party        `gorm:"foreignKey:PartyID" json:"party,omitempty"`
	Allocations []Allocation `gorm:"foreignKey:VoucherID" json:"allocations,omitempty"`
}

// TableName specifies the table name for Voucher
func (Voucher) TableName() string {
	return "vouchers"
}

// Voucher kind constants
const (
	VoucherKindReceipt = "receipt"
	VoucherKindPayment = "payment"
)

// Voucher status constants
const (
	VoucherStatusDraft     = "draft"
	VoucherStatusPosted    = "posted"
	VoucherStatusCancelled = "cancelled"
)

// Payment method constants
const (
	MethodCash     = "cash"
	MethodTransfer = "transfer"
	MethodCard     = "card"
	MethodCheque   = "cheque"
)

// MayPost returns true if the voucher can be posted. The "has at least one
// allocation" precondition is checked by the service against loaded
// allocations, not here.
func (v *Voucher) MayPost() bool {
	return v.Status == VoucherStatusDraft
}

// MayCancel returns true if the voucher can be cancelled
func (v *Voucher) MayCancel() bool {
	return v.Status == VoucherStatusPosted
}

// MayEditAllocations returns true while allocations are still provisional
func (v *Voucher) MayEditAllocations() bool {
	return v.Status == VoucherStatusDraft
}

// AllocatedTotal sums the loaded allocations
func (v *Voucher) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range v.Allocations {
		total = total.Add(a.AllocatedAmount)
	}
	return total
}

// UnallocatedAmount is the part of the voucher total not yet assigned to an
// invoice
func (v *Voucher) UnallocatedAmount() decimal.Decimal {
	return v.TotalAmount.Sub(v.AllocatedTotal())
}

// InvoiceKind returns the invoice kind this voucher settles: receipts settle
// receivables, payments settle payables.
func (v *Voucher) InvoiceKind() string {
	if v.Kind == VoucherKindPayment {
		return InvoiceKindPayable
	}
	return InvoiceKindReceivable
}

// VoucherResponse is the JSON response format for vouchers
type VoucherResponse struct {
	ID          uint                 `json:"id"`
	PartyID     uint                 `json:"party_id"`
	PartyName   string               `json:"party_name,omitempty"`
	Kind        string               `json:"kind"`
	DocumentNo  string               `json:"document_no"`
	VoucherDate time.Time            `json:"voucher_date"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	Allocated   decimal.Decimal      `json:"allocated_amount"`
	Unallocated decimal.Decimal      `json:"unallocated_amount"`
	Method      string               `json:"method"`
	ReferenceNo *string              `json:"reference_no,omitempty"`
	Status      string               `json:"status"`
	PostedAt    *time.Time           `json:"posted_at"`
	CancelledAt *time.Time           `json:"cancelled_at"`
	Allocations []AllocationResponse `json:"allocations,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ToResponse converts Voucher to VoucherResponse
func (v *Voucher) ToResponse() VoucherResponse {
	resp := VoucherResponse{
		ID:          v.ID,
		PartyID:     v.PartyID,
		Kind:        v.Kind,
		DocumentNo:  v.DocumentNo,
		VoucherDate: v.VoucherDate,
		TotalAmount: v.TotalAmount,
		Allocated:   v.AllocatedTotal(),
		Unallocated: v.UnallocatedAmount(),
		Method:      v.Method,
		ReferenceNo: v.ReferenceNo,
		Status:      v.Status,
		PostedAt:    v.PostedAt,
		CancelledAt: v.CancelledAt,
		CreatedAt:   v.CreatedAt,
	}
	if v.Party.ID != 0 {
		resp.PartyName = v.Party.Name
	}
	for _, a := range v.Allocations {
		resp.Allocations = append(resp.Allocations, a.ToResponse())
	}
	return resp
}

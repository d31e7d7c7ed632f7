package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allocation links a voucher to one invoice it partially or fully settles.
// Allocations are owned by the voucher: cancelling the voucher logically
// reverses them, deleting a draft voucher removes them.
type Allocation struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	VoucherID       uint            `gorm:"not null;index" json:"voucher_id"`
	InvoiceID       uint            `gorm:"not null;index" json:"invoice_id"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"allocated_amount"`
	CreatedAt       time.Time       `json:"created_at"`

	// Associations
	Voucher *Voucher `gorm:"foreignKey:VoucherID" json:"voucher,omitempty"`
	Invoice *Invoice `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}

// TableName specifies the table name for Allocation
func (Allocation) TableName() string {
	return "allocations"
}

// AllocationResponse is the JSON response format for allocations
type AllocationResponse struct {
	ID              uint            `json:"id"`
	VoucherID       uint            `json:"voucher_id"`
	InvoiceID       uint            `json:"invoice_id"`
	InvoiceNo       string          `json:"invoice_no,omitempty"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToResponse converts Allocation to AllocationResponse
func (a *Allocation) ToResponse() AllocationResponse {
	resp := AllocationResponse{
		ID:              a.ID,
		VoucherID:       a.VoucherID,
		InvoiceID:       a.InvoiceID,
		AllocatedAmount: a.AllocatedAmount,
		CreatedAt:       a.CreatedAt,
	}
	if a.Invoice != nil {
		resp.InvoiceNo = a.Invoice.InvoiceNo
	}
	return resp
}

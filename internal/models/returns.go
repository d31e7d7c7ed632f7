package models

import (
	"time"
)

// ReturnOrder is a sales or purchase return. Sales returns bring goods back
// into stock on approval; purchase returns send goods back to the supplier
// and take them out of stock.
type ReturnOrder struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ReturnNo      string     `gorm:"size:40;not null;uniqueIndex" json:"return_no"`
	Kind          string     `gorm:"size:20;not null;index" json:"kind"`
	PartyID       uint       `gorm:"not null;index" json:"party_id"`
	ReferenceKind string     `gorm:"size:40;not null" json:"reference_kind"`
	ReferenceID   uint       `gorm:"not null;index" json:"reference_id"`
	Status        string     `gorm:"size:20;default:draft;not null;index" json:"status"`
	Reason        *string    `gorm:"type:text" json:"reason"`
	ApprovedAt    *time.Time `json:"approved_at"`
	ApprovedBy    *uint      `gorm:"index" json:"approved_by"`
	RejectedAt    *time.Time `json:"rejected_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Party Party        `gorm:"foreignKey:PartyID" json:"party,omitempty"`
	Lines []ReturnLine `gorm:"foreignKey:ReturnOrderID" json:"lines,omitempty"`
}

// TableName specifies the table name for ReturnOrder
func (ReturnOrder) TableName() string {
	return "return_orders"
}

// Return kind constants
const (
	ReturnKindSales    = "sales"
	ReturnKindPurchase = "purchase"
)

// Return status constants
const (
	ReturnStatusDraft    = "draft"
	ReturnStatusApproved = "approved"
	ReturnStatusRejected = "rejected"
)

// MayApprove returns true if the return can be approved
func (r *ReturnOrder) MayApprove() bool {
	return r.Status == ReturnStatusDraft
}

// MayReject returns true if the return can be rejected
func (r *ReturnOrder) MayReject() bool {
	return r.Status == ReturnStatusDraft
}

// Reference returns the parent document reference of this return
func (r *ReturnOrder) Reference() Reference {
	return Reference{Kind: r.ReferenceKind, ID: r.ReferenceID}
}

// StockDirection returns which way approving this return moves stock:
// sales returns bring goods in, purchase returns send goods out.
func (r *ReturnOrder) StockDirection() string {
	if r.Kind == ReturnKindPurchase {
		return StockDirectionOut
	}
	return StockDirectionIn
}

// ReturnLine is one product line on a return
type ReturnLine struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	ReturnOrderID uint    `gorm:"not null;index" json:"return_order_id"`
	ProductID     uint    `gorm:"not null;index" json:"product_id"`
	Quantity      int     `gorm:"not null" json:"quantity"`
	Note          *string `json:"note"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for ReturnLine
func (ReturnLine) TableName() string {
	return "return_lines"
}

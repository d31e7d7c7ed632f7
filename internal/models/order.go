package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder is the customer-facing order a sales return references
type SalesOrder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderNo   string    `gorm:"size:40;not null;uniqueIndex" json:"order_no"`
	PartyID   uint      `gorm:"not null;index" json:"party_id"`
	Status    string    `gorm:"size:20;default:pending;not null;index" json:"status"`
	OrderDate time.Time `gorm:"type:date;not null" json:"order_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Party Party       `gorm:"foreignKey:PartyID" json:"party,omitempty"`
	Items []OrderItem `gorm:"foreignKey:SalesOrderID" json:"items,omitempty"`
}

// TableName specifies the table name for SalesOrder
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// Sales order status constants
const (
	SalesOrderStatusPending   = "pending"
	SalesOrderStatusConfirmed = "confirmed"
	SalesOrderStatusDelivered = "delivered"
	SalesOrderStatusPaid      = "paid"
	SalesOrderStatusCancelled = "cancelled"
)

// AllowsReturns returns true if goods have reached the customer, which is
// the precondition for accepting a sales return
func (o *SalesOrder) AllowsReturns() bool {
	return o.Status == SalesOrderStatusDelivered || o.Status == SalesOrderStatusPaid
}

// OrderItem is a line on a sales order
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	SalesOrderID uint            `gorm:"not null;index" json:"sales_order_id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// Purchase is the supplier-facing order a purchase return references
type Purchase struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PurchaseNo   string    `gorm:"size:40;not null;uniqueIndex" json:"purchase_no"`
	PartyID      uint      `gorm:"not null;index" json:"party_id"`
	Status       string    `gorm:"size:20;default:ordered;not null;index" json:"status"`
	PurchaseDate time.Time `gorm:"type:date;not null" json:"purchase_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Associations
	Party Party          `gorm:"foreignKey:PartyID" json:"party,omitempty"`
	Items []PurchaseItem `gorm:"foreignKey:PurchaseID" json:"items,omitempty"`
}

// TableName specifies the table name for Purchase
func (Purchase) TableName() string {
	return "purchases"
}

// Purchase status constants
const (
	PurchaseStatusOrdered       = "ordered"
	PurchaseStatusGoodsReceived = "goods_received"
	PurchaseStatusBilled        = "billed"
	PurchaseStatusCancelled     = "cancelled"
)

// AllowsReturns returns true once goods have been received (GRN confirmed),
// which is the precondition for returning them to the supplier
func (p *Purchase) AllowsReturns() bool {
	return p.Status == PurchaseStatusGoodsReceived || p.Status == PurchaseStatusBilled
}

// PurchaseItem is a line on a purchase
type PurchaseItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PurchaseID uint            `gorm:"not null;index" json:"purchase_id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_cost"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for PurchaseItem
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

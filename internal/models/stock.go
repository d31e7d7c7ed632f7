package models

import (
	"time"
)

// StockLevel holds the current on-hand quantity for one product
type StockLevel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex" json:"product_id"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for StockLevel
func (StockLevel) TableName() string {
	return "stock_levels"
}

// Stock movement direction constants
const (
	StockDirectionIn  = "in"
	StockDirectionOut = "out"
)

// StockMovement is an append-only record of one stock change, always tied to
// the document that caused it
type StockMovement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProductID     uint      `gorm:"not null;index" json:"product_id"`
	Direction     string    `gorm:"size:3;not null" json:"direction"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	ReferenceKind string    `gorm:"size:40;not null;index" json:"reference_kind"`
	ReferenceID   uint      `gorm:"not null;index" json:"reference_id"`
	Note          *string   `json:"note"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for StockMovement
func (StockMovement) TableName() string {
	return "stock_movements"
}

// Reference returns the document reference this movement belongs to
func (m *StockMovement) Reference() Reference {
	return Reference{Kind: m.ReferenceKind, ID: m.ReferenceID}
}

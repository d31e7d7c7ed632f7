package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable furniture item
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SKU       string          `gorm:"size:40;not null;uniqueIndex" json:"sku"`
	Name      string          `gorm:"not null" json:"name"`
	Unit      string          `gorm:"size:20;default:pc" json:"unit"`
	ListPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"list_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party represents a customer or supplier the ledger tracks balances for
type Party struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	PartyType          string          `gorm:"size:20;not null;index" json:"party_type"`
	Name               string          `gorm:"not null" json:"name"`
	Phone              *string         `json:"phone"`
	Email              *string         `json:"email"`
	TaxID              *string         `gorm:"column:tax_id" json:"tax_id"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"outstanding_balance"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Party
func (Party) TableName() string {
	return "parties"
}

// Party type constants
const (
	PartyTypeCustomer = "customer"
	PartyTypeSupplier = "supplier"
)

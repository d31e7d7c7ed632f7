package models

import (
	"fmt"
	"time"
)

// DocumentSequence backs the per-prefix per-day numbering of human-readable
// document numbers (INV-20260827-0001). The row is locked FOR UPDATE while
// being incremented.
type DocumentSequence struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Prefix     string    `gorm:"size:10;not null;uniqueIndex:idx_seq_prefix_day" json:"prefix"`
	Day        string    `gorm:"size:8;not null;uniqueIndex:idx_seq_prefix_day" json:"day"`
	LastNumber int       `gorm:"not null;default:0" json:"last_number"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for DocumentSequence
func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// Document number prefixes
const (
	PrefixInvoice      = "INV"
	PrefixBill         = "BIL"
	PrefixReceipt      = "RCP"
	PrefixPayment      = "PAY"
	PrefixSalesReturn  = "RET"
	PrefixPurchReturn  = "PRT"
	PrefixInstallation = "INS"
)

// SequenceDay formats a date the way sequence rows key it
func SequenceDay(t time.Time) string {
	return t.Format("20060102")
}

// FormatDocumentNo renders a document number as PREFIX-YYYYMMDD-NNNN
func FormatDocumentNo(prefix string, day time.Time, n int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, SequenceDay(day), n)
}

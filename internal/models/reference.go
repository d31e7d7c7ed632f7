package models

import (
	"context"
	"fmt"
)

// Reference is a typed link to another document (the source an invoice was
// billed from, the document a stock movement belongs to, the subject of an
// audit entry). Kind is one of the Ref* constants below.
type Reference struct {
	Kind string `gorm:"size:40" json:"kind"`
	ID   uint   `json:"id"`
}

// Reference kind constants
const (
	RefSalesOrder        = "sales_order"
	RefPurchase          = "purchase"
	RefInvoice           = "invoice"
	RefVoucher           = "voucher"
	RefSalesReturn       = "sales_return"
	RefPurchaseReturn    = "purchase_return"
	RefInstallationOrder = "installation_order"
)

// IsZero reports whether the reference is unset
func (r Reference) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}

func (r Reference) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}

// ReferenceLoader resolves a reference id to its entity
type ReferenceLoader func(ctx context.Context, id uint) (interface{}, error)

// ReferenceRegistry maps reference kinds to loaders so callers can resolve
// a Reference without switching on kind strings themselves
type ReferenceRegistry struct {
	loaders map[string]ReferenceLoader
}

// NewReferenceRegistry creates an empty registry
func NewReferenceRegistry() *ReferenceRegistry {
	return &ReferenceRegistry{loaders: make(map[string]ReferenceLoader)}
}

// Register adds a loader for a kind, replacing any existing one
func (rr *ReferenceRegistry) Register(kind string, loader ReferenceLoader) {
	rr.loaders[kind] = loader
}

// Resolve loads the entity a reference points at
func (rr *ReferenceRegistry) Resolve(ctx context.Context, ref Reference) (interface{}, error) {
	loader, ok := rr.loaders[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("no loader registered for reference kind %q", ref.Kind)
	}
	return loader(ctx, ref.ID)
}

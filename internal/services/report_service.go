package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/shopspring/decimal"
)

// Aging bucket labels, youngest to oldest
var agingBucketLabels = []string{"current", "1-30", "31-60", "61-90", "90+"}

// AgingRow is one party's outstanding amounts split by how overdue they are
type AgingRow struct {
	PartyID   uint              `json:"party_id"`
	PartyName string            `json:"party_name"`
	Buckets   []decimal.Decimal `json:"buckets"`
	Total     decimal.Decimal   `json:"total"`
}

// AgingReport is the AR or AP aging as of one date
type AgingReport struct {
	Kind   string            `json:"kind"`
	AsOf   time.Time         `json:"as_of"`
	Labels []string          `json:"labels"`
	Rows   []AgingRow        `json:"rows"`
	Totals []decimal.Decimal `json:"totals"`
	Grand  decimal.Decimal   `json:"grand_total"`
}

type ReportService struct {
	repos *repository.Repositories
}

func NewReportService(repos *repository.Repositories) *ReportService {
	return &ReportService{repos: repos}
}

// bucketIndex places an invoice by days overdue. Invoices not yet due (or
// without a due date) fall in "current".
func bucketIndex(inv *models.Invoice, asOf time.Time) int {
	days := inv.OverdueDays(asOf)
	switch {
	case days <= 0:
		return 0
	case days <= 30:
		return 1
	case days <= 60:
		return 2
	case days <= 90:
		return 3
	default:
		return 4
	}
}

// Aging builds the AR (kind=receivable) or AP (kind=payable) aging report
// over all issued and partially paid invoices
func (s *ReportService) Aging(ctx context.Context, kind string, asOf time.Time) (*AgingReport, error) {
	if kind != models.InvoiceKindReceivable && kind != models.InvoiceKindPayable {
		return nil, fmt.Errorf("unknown invoice kind %q: %w", kind, ErrValidation)
	}

	invoices, err := s.repos.Invoice.FindOutstanding(ctx, kind)
	if err != nil {
		return nil, err
	}

	report := &AgingReport{
		Kind:   kind,
		AsOf:   asOf,
		Labels: agingBucketLabels,
		Totals: zeroBuckets(),
		Grand:  decimal.Zero,
	}

	byParty := make(map[uint]*AgingRow)
	var order []uint
	for i := range invoices {
		inv := &invoices[i]
		row, ok := byParty[inv.PartyID]
		if !ok {
			row = &AgingRow{
				PartyID:   inv.PartyID,
				PartyName: inv.Party.Name,
				Buckets:   zeroBuckets(),
				Total:     decimal.Zero,
			}
			byParty[inv.PartyID] = row
			order = append(order, inv.PartyID)
		}

		idx := bucketIndex(inv, asOf)
		row.Buckets[idx] = row.Buckets[idx].Add(inv.OpenAmount)
		row.Total = row.Total.Add(inv.OpenAmount)
		report.Totals[idx] = report.Totals[idx].Add(inv.OpenAmount)
		report.Grand = report.Grand.Add(inv.OpenAmount)
	}

	for _, partyID := range order {
		report.Rows = append(report.Rows, *byParty[partyID])
	}
	return report, nil
}

func zeroBuckets() []decimal.Decimal {
	buckets := make([]decimal.Decimal, len(agingBucketLabels))
	for i := range buckets {
		buckets[i] = decimal.Zero
	}
	return buckets
}

package handlers

import (
	"github.com/mobilia/erp-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Party        *PartyHandler
	Invoice      *InvoiceHandler
	Voucher      *VoucherHandler
	Return       *ReturnHandler
	Installation *InstallationHandler
	Report       *ReportHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Party:        NewPartyHandler(svcs.Party),
		Invoice:      NewInvoiceHandler(svcs.Invoice),
		Voucher:      NewVoucherHandler(svcs.Voucher, svcs.Allocation, svcs.Export),
		Return:       NewReturnHandler(svcs.Return),
		Installation: NewInstallationHandler(svcs.Installation),
		Report:       NewReportHandler(svcs.Report, svcs.Export),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
	}
}

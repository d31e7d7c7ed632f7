package services

import (
	"context"

	"github.com/mobilia/erp-api/internal/jobs"
	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/mobilia/erp-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Party        *PartyService
	Invoice      *InvoiceService
	Voucher      *VoucherService
	Allocation   *AllocationService
	Return       *ReturnService
	Installation *InstallationService
	Report       *ReportService
	Export       *ExportService
	Audit        *AuditService
	Job          *JobService
}

// newReferenceRegistry binds every document kind to its repository lookup so
// a Reference resolves without switching on kind strings at the call site
func newReferenceRegistry(repos *repository.Repositories) *models.ReferenceRegistry {
	reg := models.NewReferenceRegistry()
	reg.Register(models.RefInvoice, func(ctx context.Context, id uint) (interface{}, error) {
		return repos.Invoice.FindByID(ctx, id)
	})
	reg.Register(models.RefVoucher, func(ctx context.Context, id uint) (interface{}, error) {
		return repos.Voucher.FindByID(ctx, id)
	})
	reg.Register(models.RefSalesOrder, func(ctx context.Context, id uint) (interface{}, error) {
		return repos.SalesOrder.FindByID(ctx, id)
	})
	reg.Register(models.RefPurchase, func(ctx context.Context, id uint) (interface{}, error) {
		return repos.Purchase.FindByID(ctx, id)
	})
	reg.Register(models.RefSalesReturn, func(ctx context.Context, id uint) (interface{}, error) {
		return repos.Return.FindByID(ctx, id)
	})
	reg.Register(models.RefPurchaseReturn, func(ctx context.Context, id uint) (interface{}, error) {
		return repos.Return.FindByID(ctx, id)
	})
	reg.Register(models.RefInstallationOrder, func(ctx context.Context, id uint) (interface{}, error) {
		return repos.Installation.FindByID(ctx, id)
	})
	return reg
}

// NewServices creates all service instances
func NewServices(db *gorm.DB, repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage) *Services {
	auditSvc := NewAuditService(repos.Audit, newReferenceRegistry(repos), worker)
	reportSvc := NewReportService(repos)
	voucherSvc := NewVoucherService(db, repos, auditSvc)

	return &Services{
		Party:        NewPartyService(db, repos),
		Invoice:      NewInvoiceService(db, repos, auditSvc),
		Voucher:      voucherSvc,
		Allocation:   NewAllocationService(db, repos, auditSvc),
		Return:       NewReturnService(db, repos, auditSvc),
		Installation: NewInstallationService(db, repos, auditSvc, storage),
		Report:       reportSvc,
		Export:       NewExportService(reportSvc, voucherSvc),
		Audit:        auditSvc,
		Job:          NewJobService(worker),
	}
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/mobilia/erp-api/internal/models"
	"github.com/xuri/excelize/v2"
)

type ExportService struct {
	reportSvc  *ReportService
	voucherSvc *VoucherService
}

func NewExportService(reportSvc *ReportService, voucherSvc *VoucherService) *ExportService {
	return &ExportService{reportSvc: reportSvc, voucherSvc: voucherSvc}
}

// ExportAgingXLSX renders the AR/AP aging report as a spreadsheet
func (s *ExportService) ExportAgingXLSX(ctx context.Context, kind string, asOf time.Time) ([]byte, string, error) {
	report, err := s.reportSvc.Aging(ctx, kind, asOf)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Aging"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	title := "Accounts Receivable Aging"
	if kind == models.InvoiceKindPayable {
		title = "Accounts Payable Aging"
	}
	_ = f.SetCellValue(sheet, "A1", title)
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	_ = f.SetCellValue(sheet, "A2", fmt.Sprintf("As of %s", asOf.Format("2006-01-02")))

	// Column header row
	_ = f.SetCellValue(sheet, "A4", "Party")
	for i, label := range report.Labels {
		cell, _ := excelize.CoordinatesToCellName(2+i, 4)
		_ = f.SetCellValue(sheet, cell, label)
	}
	totalCol := 2 + len(report.Labels)
	cell, _ := excelize.CoordinatesToCellName(totalCol, 4)
	_ = f.SetCellValue(sheet, cell, "Total")

	row := 5
	for _, r := range report.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheet, cell, r.PartyName)
		for i, amount := range r.Buckets {
			cell, _ := excelize.CoordinatesToCellName(2+i, row)
			_ = f.SetCellValue(sheet, cell, amount.InexactFloat64())
		}
		cell, _ = excelize.CoordinatesToCellName(totalCol, row)
		_ = f.SetCellValue(sheet, cell, r.Total.InexactFloat64())
		row++
	}

	cell, _ = excelize.CoordinatesToCellName(1, row)
	_ = f.SetCellValue(sheet, cell, "Total")
	for i, amount := range report.Totals {
		cell, _ := excelize.CoordinatesToCellName(2+i, row)
		_ = f.SetCellValue(sheet, cell, amount.InexactFloat64())
	}
	cell, _ = excelize.CoordinatesToCellName(totalCol, row)
	_ = f.SetCellValue(sheet, cell, report.Grand.InexactFloat64())

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("aging_%s_%s.xlsx", kind, asOf.Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportVoucherPDF renders one voucher with its allocations as a printable
// document
func (s *ExportService) ExportVoucherPDF(ctx context.Context, id uint) ([]byte, string, error) {
	voucher, err := s.voucherSvc.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	title := "Receipt Voucher"
	if voucher.Kind == models.VoucherKindPayment {
		title = "Payment Voucher"
	}
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(50, 8, "Document No:")
	pdf.Cell(60, 8, voucher.DocumentNo)
	pdf.Ln(7)
	pdf.Cell(50, 8, "Date:")
	pdf.Cell(60, 8, voucher.VoucherDate.Format("2006-01-02"))
	pdf.Ln(7)
	pdf.Cell(50, 8, "Party:")
	pdf.Cell(60, 8, voucher.Party.Name)
	pdf.Ln(7)
	pdf.Cell(50, 8, "Method:")
	pdf.Cell(60, 8, voucher.Method)
	pdf.Ln(7)
	pdf.Cell(50, 8, "Status:")
	pdf.Cell(60, 8, voucher.Status)
	pdf.Ln(7)
	pdf.Cell(50, 8, "Total:")
	pdf.Cell(60, 8, voucher.TotalAmount.StringFixed(2))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Allocations")
	pdf.Ln(9)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(60, 7, "Invoice")
	pdf.Cell(40, 7, "Amount")
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 10)
	for _, a := range voucher.Allocations {
		invoiceNo := fmt.Sprintf("#%d", a.InvoiceID)
		if a.Invoice != nil {
			invoiceNo = a.Invoice.InvoiceNo
		}
		pdf.Cell(60, 7, invoiceNo)
		pdf.Cell(40, 7, a.AllocatedAmount.StringFixed(2))
		pdf.Ln(7)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(60, 7, "Allocated")
	pdf.Cell(40, 7, voucher.AllocatedTotal().StringFixed(2))
	pdf.Ln(7)
	pdf.Cell(60, 7, "Unallocated")
	pdf.Cell(40, 7, voucher.UnallocatedAmount().StringFixed(2))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("voucher_%s.pdf", voucher.DocumentNo)
	return buf.Bytes(), filename, nil
}

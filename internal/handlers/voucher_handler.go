package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/mobilia/erp-api/internal/services"
	"github.com/shopspring/decimal"
)

type VoucherHandler struct {
	voucherService    *services.VoucherService
	allocationService *services.AllocationService
	exportService     *services.ExportService
}

func NewVoucherHandler(voucherService *services.VoucherService, allocationService *services.AllocationService, exportService *services.ExportService) *VoucherHandler {
	return &VoucherHandler{
		voucherService:    voucherService,
		allocationService: allocationService,
		exportService:     exportService,
	}
}

func (h *VoucherHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["kind"] = c.Query("kind")
	query.Filters["status"] = c.Query("status")
	query.Filters["party_id"] = c.Query("party_id")

	vouchers, total, err := h.voucherService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for i := range vouchers {
		responses = append(responses, vouchers[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"vouchers": responses,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

func (h *VoucherHandler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	voucher, err := h.voucherService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, voucher.ToResponse())
}

func (h *VoucherHandler) Create(c *gin.Context) {
	var input services.CreateVoucherInput
	if err := BindNestedOrFlat(c, "voucher", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	voucher, err := h.voucherService.Create(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, voucher.ToResponse())
}

func (h *VoucherHandler) Post(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	voucher, err := h.voucherService.Post(c.Request.Context(), uint(id), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, voucher.ToResponse())
}

func (h *VoucherHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	voucher, err := h.voucherService.Cancel(c.Request.Context(), uint(id), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, voucher.ToResponse())
}

// AllocationInput is the request body for adding one allocation
type AllocationInput struct {
	InvoiceID uint            `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (h *VoucherHandler) Allocate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var input AllocationInput
	if err := BindNestedOrFlat(c, "allocation", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allocation, err := h.allocationService.Allocate(c.Request.Context(), uint(id), input.InvoiceID, input.Amount, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, allocation.ToResponse())
}

func (h *VoucherHandler) AutoAllocate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	allocations, err := h.allocationService.AutoAllocate(c.Request.Context(), uint(id), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for i := range allocations {
		responses = append(responses, allocations[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"allocations": responses})
}

func (h *VoucherHandler) RemoveAllocation(c *gin.Context) {
	allocationID, err := strconv.ParseUint(c.Param("allocation_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid allocation id"})
		return
	}

	if err := h.allocationService.Remove(c.Request.Context(), uint(allocationID), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadPDF renders the voucher as a printable PDF
func (h *VoucherHandler) DownloadPDF(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	data, filename, err := h.exportService.ExportVoucherPDF(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/mobilia/erp-api/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Filters["subject_kind"] = c.Query("subject_kind")
	query.Filters["subject_id"] = c.Query("subject_id")
	query.Filters["action"] = c.Query("action")
	query.Filters["actor_id"] = c.Query("actor_id")
	query.Filters["batch_id"] = c.Query("batch_id")

	entries, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audit_logs": entries,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// Trail returns one document together with its history, oldest entry first
func (h *AuditHandler) Trail(c *gin.Context) {
	subjectKind := c.Param("subject_kind")
	subjectID, err := strconv.ParseUint(c.Param("subject_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subject id"})
		return
	}

	subject, entries, err := h.auditService.Trail(c.Request.Context(),
		models.Reference{Kind: subjectKind, ID: uint(subjectID)})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": subject, "audit_logs": entries})
}

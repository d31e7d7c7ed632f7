package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mobilia/erp-api/internal/models"
	"github.com/mobilia/erp-api/internal/repository"
	"github.com/mobilia/erp-api/internal/services"
	"github.com/mobilia/erp-api/internal/storage"
)

type InstallationHandler struct {
	installationService *services.InstallationService
}

func NewInstallationHandler(installationService *services.InstallationService) *InstallationHandler {
	return &InstallationHandler{installationService: installationService}
}

func (h *InstallationHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["status"] = c.Query("status")
	query.Filters["party_id"] = c.Query("party_id")

	orders, total, err := h.installationService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"installations": orders,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

func (h *InstallationHandler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	order, err := h.installationService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *InstallationHandler) Create(c *gin.Context) {
	var input services.CreateInstallationInput
	if err := BindNestedOrFlat(c, "installation", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.installationService.Create(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ScheduleInput is the request body for scheduling a visit
type ScheduleInput struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (h *InstallationHandler) Schedule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var input ScheduleInput
	if err := BindNestedOrFlat(c, "schedule", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.ScheduledAt.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_at is required"})
		return
	}

	order, err := h.installationService.Schedule(c.Request.Context(), uint(id), input.ScheduledAt, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *InstallationHandler) Start(c *gin.Context) {
	h.simpleTransition(c, h.installationService.Start)
}

func (h *InstallationHandler) MarkNoShow(c *gin.Context) {
	h.simpleTransition(c, h.installationService.MarkNoShow)
}

func (h *InstallationHandler) HoldForParts(c *gin.Context) {
	h.simpleTransition(c, h.installationService.HoldForParts)
}

func (h *InstallationHandler) Complete(c *gin.Context) {
	h.simpleTransition(c, h.installationService.Complete)
}

func (h *InstallationHandler) simpleTransition(c *gin.Context, fn func(context.Context, uint, services.Actor) (*models.InstallationOrder, error)) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	order, err := fn(c.Request.Context(), uint(id), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UploadPhoto attaches a before/after photo to the order
func (h *InstallationHandler) UploadPhoto(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer file.Close()

	if header.Size > storage.MaxFileSize() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}
	if !storage.IsValidContentType(header.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
		return
	}

	tag := c.PostForm("tag")
	photo, err := h.installationService.AddPhoto(c.Request.Context(), uint(id), file, header, tag, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

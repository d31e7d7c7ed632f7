package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mobilia/erp-api/internal/middleware"
	"github.com/mobilia/erp-api/internal/services"
)

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, services.ErrAllocation),
		errors.Is(err, services.ErrQuantityExceeded),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrPrecondition):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// actorFrom builds the audit actor for the current request
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		ID:        middleware.GetUserID(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

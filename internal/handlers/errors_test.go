package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mobilia/erp-api/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"validation", services.ErrValidation, http.StatusBadRequest},
		{"invalid state", services.ErrInvalidState, http.StatusConflict},
		{"allocation", services.ErrAllocation, http.StatusUnprocessableEntity},
		{"quantity exceeded", services.ErrQuantityExceeded, http.StatusUnprocessableEntity},
		{"insufficient stock", services.ErrInsufficientStock, http.StatusUnprocessableEntity},
		{"precondition", services.ErrPrecondition, http.StatusUnprocessableEntity},
		{"unknown", fmt.Errorf("database exploded"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("invoice INV-1: %w", services.ErrInvalidState), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

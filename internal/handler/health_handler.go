package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-service/internal/dto"
	"github.com/noah-isme/student-service/pkg/response"
)

type healthService interface {
	Basic() dto.HealthStatus
	Detailed(ctx context.Context) dto.DetailedHealth
}

// HealthHandler exposes liveness endpoints.
type HealthHandler struct {
	health healthService
}

// NewHealthHandler constructs HealthHandler.
func NewHealthHandler(health healthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// Health godoc
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response.OK(c, h.health.Basic())
}

// Detailed godoc
// @Summary Dependency health
// @Description Always answers 200; failing dependencies are reported as DOWN in the payload.
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health/detailed [get]
func (h *HealthHandler) Detailed(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.health.Detailed(c.Request.Context()), nil)
}

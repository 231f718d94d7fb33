package handler

import (
	"net/http"

	"gamarriando/contracts-service/internal/app/contracts/service"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/logger"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthSvc service.HealthServiceInterface
}

func NewHealthHandler(healthSvc service.HealthServiceInterface) *HealthHandler {
	return &HealthHandler{healthSvc: healthSvc}
}

// Health обрабатывает GET /health. Unhealthy отдается с 503.
func (h *HealthHandler) Health(c *gin.Context) {
	check, err := h.healthSvc.Snapshot()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build health check")
		c.JSON(http.StatusInternalServerError, contracts.NewAPIError("internal_error", "Failed to build health check", nil))
		return
	}

	status := http.StatusOK
	if check.Status == contracts.HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, check)
}

// Liveness обрабатывает GET /health/liveness
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Info обрабатывает GET /info
func (h *HealthHandler) Info(c *gin.Context) {
	info, err := h.healthSvc.Info()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build service info")
		c.JSON(http.StatusInternalServerError, contracts.NewAPIError("internal_error", "Failed to build service info", nil))
		return
	}
	c.JSON(http.StatusOK, info)
}

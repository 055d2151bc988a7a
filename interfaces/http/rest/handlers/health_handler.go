package handlers

import (
	"net/http"

	"crud-microservices/application/services"
	"crud-microservices/pkg/common"
)

// HealthHandler reports dependency health.
type HealthHandler struct {
	health *services.HealthService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(health *services.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// Check handles GET /health. An unhealthy report is served with 503.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) error {
	report := h.health.Check(r.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	common.RespondJSON(w, status, common.APIResponse{Success: report.Healthy(), Data: report})
	return nil
}

package handlers

import (
	"net/http"

	"crud-microservices/application/services"
	"crud-microservices/pkg/common"

	"go.uber.org/zap"
)

// AdminHandler serves operator endpoints.
type AdminHandler struct {
	admin  *services.AdminService
	logger *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *services.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// Stats handles GET /admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.admin.Stats(r.Context(), caller(r))
	if err != nil {
		return err
	}
	common.RespondSuccess(w, stats)
	return nil
}

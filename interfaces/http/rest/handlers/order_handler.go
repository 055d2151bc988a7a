package handlers

import (
	"net/http"

	"crud-microservices/application/services"
	"crud-microservices/pkg/common"
	"crud-microservices/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orders *services.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) error {
	var req services.OrderInput
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		return err
	}
	order, err := h.orders.Create(r.Context(), caller(r), req)
	if err != nil {
		return err
	}
	common.RespondCreated(w, order)
	return nil
}

// GetOrder handles GET /orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) error {
	order, err := h.orders.Get(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	common.RespondSuccess(w, order)
	return nil
}

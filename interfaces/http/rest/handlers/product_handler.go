package handlers

import (
	"net/http"

	"crud-microservices/application/services"
	"crud-microservices/pkg/common"
	"crud-microservices/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	products *services.ProductService
	logger   *zap.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	var req services.ProductInput
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		return err
	}
	product, err := h.products.Create(r.Context(), caller(r), req)
	if err != nil {
		return err
	}
	common.RespondCreated(w, product)
	return nil
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	product, err := h.products.Get(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	common.RespondSuccess(w, product)
	return nil
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.products.List(r.Context(), caller(r))
	if err != nil {
		return err
	}
	common.RespondSuccess(w, products)
	return nil
}

// UpdateProduct handles PUT /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	var req services.ProductInput
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		return err
	}
	product, err := h.products.Update(r.Context(), caller(r), chi.URLParam(r, "id"), req)
	if err != nil {
		return err
	}
	common.RespondSuccess(w, product)
	return nil
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	if err := h.products.Delete(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		return err
	}
	common.RespondSuccess(w, map[string]string{"message": "Product deleted successfully"})
	return nil
}

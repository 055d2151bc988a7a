package handlers

import (
	"net/http"

	"crud-microservices/application/services"
	"crud-microservices/pkg/common"
	"crud-microservices/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users  *services.UserService
	logger *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) error {
	var req services.UserInput
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		return err
	}
	user, err := h.users.Create(r.Context(), caller(r), req)
	if err != nil {
		return err
	}
	common.RespondCreated(w, user)
	return nil
}

// GetUser handles GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) error {
	user, err := h.users.Get(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	common.RespondSuccess(w, user)
	return nil
}

// UpdateUser handles PUT /users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) error {
	var req services.UserInput
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		return err
	}
	user, err := h.users.Update(r.Context(), caller(r), chi.URLParam(r, "id"), req)
	if err != nil {
		return err
	}
	common.RespondSuccess(w, user)
	return nil
}

// DeleteUser handles DELETE /users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	if err := h.users.Delete(r.Context(), caller(r), chi.URLParam(r, "id")); err != nil {
		return err
	}
	common.RespondSuccess(w, map[string]string{"message": "User deleted successfully"})
	return nil
}

package handlers

import (
	"net/http"

	"crud-microservices/application/services"
	"crud-microservices/pkg/common"
	"crud-microservices/pkg/utils"

	"go.uber.org/zap"
)

// AuthHandler serves sign-up, sign-in, confirmation and the caller's profile.
type AuthHandler struct {
	auth   *services.AuthService
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// SignUp handles POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) error {
	var req services.SignUpInput
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		return err
	}
	result, err := h.auth.SignUp(r.Context(), req)
	if err != nil {
		return err
	}
	common.RespondCreated(w, result)
	return nil
}

// SignIn handles POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) error {
	var req services.SignInInput
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		return err
	}
	result, err := h.auth.SignIn(r.Context(), req)
	if err != nil {
		return err
	}
	common.RespondSuccess(w, result)
	return nil
}

// Confirm handles POST /auth/confirm
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) error {
	var req services.ConfirmInput
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		return err
	}
	result, err := h.auth.Confirm(r.Context(), req)
	if err != nil {
		return err
	}
	common.RespondSuccess(w, result)
	return nil
}

// Profile handles GET /auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) error {
	profile, err := h.auth.Profile(r.Context(), caller(r))
	if err != nil {
		return err
	}
	common.RespondSuccess(w, profile)
	return nil
}

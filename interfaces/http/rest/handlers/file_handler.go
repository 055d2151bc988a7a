package handlers

import (
	"net/http"

	"crud-microservices/application/services"
	"crud-microservices/pkg/common"
	"crud-microservices/pkg/utils"

	"go.uber.org/zap"
)

// FileHandler handles file-related HTTP requests
type FileHandler struct {
	files  *services.FileService
	logger *zap.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(files *services.FileService, logger *zap.Logger) *FileHandler {
	return &FileHandler{files: files, logger: logger}
}

// Upload handles POST /files
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) error {
	var req services.UploadInput
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		return err
	}
	result, err := h.files.Upload(r.Context(), caller(r), req)
	if err != nil {
		return err
	}
	common.RespondSuccess(w, result)
	return nil
}

// GetFile handles GET /files/*
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) error {
	file, err := h.files.Get(r.Context(), caller(r), objectKey(r))
	if err != nil {
		return err
	}
	common.RespondSuccess(w, file)
	return nil
}

// ListFiles handles GET /files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) error {
	listing, err := h.files.List(r.Context(), caller(r), common.ExtractListParams(r))
	if err != nil {
		return err
	}
	common.RespondSuccess(w, listing)
	return nil
}

// DeleteFile handles DELETE /files/*
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) error {
	result, err := h.files.Delete(r.Context(), caller(r), objectKey(r))
	if err != nil {
		return err
	}
	common.RespondSuccess(w, result)
	return nil
}

// UploadURL handles POST /files/upload-url
func (h *FileHandler) UploadURL(w http.ResponseWriter, r *http.Request) error {
	var req services.UploadURLInput
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		return err
	}
	result, err := h.files.UploadURL(r.Context(), caller(r), req)
	if err != nil {
		return err
	}
	common.RespondSuccess(w, result)
	return nil
}

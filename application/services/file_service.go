package services

import (
	"context"
	"encoding/base64"
	"time"

	"crud-microservices/application/ports"
	"crud-microservices/domain/entities"
	"crud-microservices/domain/events"
	"crud-microservices/pkg/auth"
	"crud-microservices/pkg/common"
	apperrors "crud-microservices/pkg/errors"
	"crud-microservices/pkg/utils"

	"go.uber.org/zap"
)

const (
	defaultContentType  = "application/octet-stream"
	defaultUploadURLTTL = 3600
)

// UploadInput is a base64 upload request.
type UploadInput struct {
	FileName    string            `json:"fileName" validate:"required"`
	FileContent string            `json:"fileContent" validate:"required"`
	ContentType string            `json:"contentType,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// UploadURLInput asks for a presigned PUT URL.
type UploadURLInput struct {
	FileName    string `json:"fileName" validate:"required"`
	ContentType string `json:"contentType,omitempty"`
	ExpiresIn   int    `json:"expiresIn,omitempty" validate:"omitempty,min=1,max=604800"`
}

// UploadedFile describes a stored upload.
type UploadedFile struct {
	Key          string `json:"key"`
	OriginalName string `json:"originalName"`
	Location     string `json:"location"`
	Bucket       string `json:"bucket"`
	ContentType  string `json:"contentType"`
	UploadedBy   string `json:"uploadedBy"`
	UploadedAt   string `json:"uploadedAt"`
}

// UploadResult is returned by Upload.
type UploadResult struct {
	Message string       `json:"message"`
	File    UploadedFile `json:"file"`
}

// FileContent is a downloaded file with its body base64 encoded.
type FileContent struct {
	Key          string            `json:"key"`
	Content      string            `json:"content"`
	ContentType  string            `json:"contentType"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"lastModified"`
}

// FileListing is one page of a listing.
type FileListing struct {
	Files       []entities.FileInfo `json:"files"`
	Count       int                 `json:"count"`
	IsTruncated bool                `json:"isTruncated"`
	Prefix      string              `json:"prefix"`
}

// DeletedFile acknowledges a delete.
type DeletedFile struct {
	Message string `json:"message"`
	Key     string `json:"key"`
}

// UploadURL is a presigned upload target.
type UploadURL struct {
	UploadURL   string `json:"uploadUrl"`
	Key         string `json:"key"`
	Bucket      string `json:"bucket"`
	ExpiresIn   int    `json:"expiresIn"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// FileService stores user uploads. Files live under uploads/{userId}/ and
// only that user may delete them; any authenticated caller may read.
type FileService struct {
	base
	objects ports.ObjectStore
}

// NewFileService creates a new file service
func NewFileService(objects ports.ObjectStore, publisher ports.EventPublisher, logger *zap.Logger) *FileService {
	return &FileService{
		base:    newBase(nil, publisher, logger),
		objects: objects,
	}
}

func contentTypeOrDefault(ct string) string {
	if ct == "" {
		return defaultContentType
	}
	return ct
}

// Upload decodes and stores a file in the caller's namespace.
func (s *FileService) Upload(ctx context.Context, caller *auth.CallerIdentity, in UploadInput) (*UploadResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, apperrors.NewValidationError("fileName and fileContent are required").WithCode(apperrors.CodeMissingFields)
	}

	body, err := base64.StdEncoding.DecodeString(in.FileContent)
	if err != nil {
		return nil, apperrors.NewValidationError("fileContent must be base64 encoded").WithCause(err)
	}

	now := s.now()
	uploadedAt := utils.ISOTimestamp(now)
	contentType := contentTypeOrDefault(in.ContentType)

	metadata := make(map[string]string, len(in.Metadata)+3)
	for k, v := range in.Metadata {
		metadata[k] = v
	}
	metadata["uploadedBy"] = caller.UserID
	metadata["uploadedAt"] = uploadedAt
	metadata["originalName"] = in.FileName

	key := entities.FileKey(caller.UserID, in.FileName, now)
	location, err := s.objects.Put(ctx, &entities.StoredFile{
		Key:         key,
		Body:        body,
		ContentType: contentType,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	file := UploadedFile{
		Key:          key,
		OriginalName: in.FileName,
		Location:     location,
		Bucket:       s.objects.Bucket(),
		ContentType:  contentType,
		UploadedBy:   caller.UserID,
		UploadedAt:   uploadedAt,
	}
	s.emit(ctx, events.FileUploaded, file)
	return &UploadResult{Message: "File uploaded successfully", File: file}, nil
}

// Get downloads any file.
func (s *FileService) Get(ctx context.Context, caller *auth.CallerIdentity, key string) (*FileContent, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, apperrors.NewValidationError("File key is required")
	}

	file, err := s.objects.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return &FileContent{
		Key:          key,
		Content:      base64.StdEncoding.EncodeToString(file.Body),
		ContentType:  file.ContentType,
		Metadata:     file.Metadata,
		LastModified: file.LastModified,
	}, nil
}

// List returns one page of files. UserOnly overrides Prefix with the
// caller's namespace.
func (s *FileService) List(ctx context.Context, caller *auth.CallerIdentity, params common.ListParams) (*FileListing, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	prefix := params.Prefix
	if params.UserOnly {
		prefix = entities.UserNamespace(caller.UserID)
	}
	maxKeys := params.MaxKeys
	if maxKeys <= 0 {
		maxKeys = common.DefaultMaxKeys
	}
	if maxKeys > common.MaxMaxKeys {
		maxKeys = common.MaxMaxKeys
	}

	files, truncated, err := s.objects.List(ctx, prefix, maxKeys)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []entities.FileInfo{}
	}
	return &FileListing{Files: files, Count: len(files), IsTruncated: truncated, Prefix: prefix}, nil
}

// Delete removes a file from the caller's namespace.
func (s *FileService) Delete(ctx context.Context, caller *auth.CallerIdentity, key string) (*DeletedFile, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, apperrors.NewValidationError("File key is required")
	}
	if !entities.KeyOwnedBy(key, caller.UserID) {
		return nil, apperrors.NewAuthorizationError("You can only delete your own files").WithCode(apperrors.CodeAccessDenied)
	}

	// Object store deletes are idempotent, so existence is checked first.
	if _, err := s.objects.Head(ctx, key); err != nil {
		return nil, err
	}
	if err := s.objects.Delete(ctx, key); err != nil {
		return nil, err
	}

	s.logger.Info("File deleted", zap.String("key", key), zap.String("by", caller.UserID))
	s.emit(ctx, events.FileDeleted, map[string]string{"key": key})
	return &DeletedFile{Message: "File deleted successfully", Key: key}, nil
}

// UploadURL presigns a PUT for a new key in the caller's namespace.
func (s *FileService) UploadURL(ctx context.Context, caller *auth.CallerIdentity, in UploadURLInput) (*UploadURL, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	expiresIn := in.ExpiresIn
	if expiresIn == 0 {
		expiresIn = defaultUploadURLTTL
	}
	contentType := contentTypeOrDefault(in.ContentType)
	key := entities.FileKey(caller.UserID, in.FileName, s.now())

	url, err := s.objects.PresignPut(ctx, key, contentType, time.Duration(expiresIn)*time.Second)
	if err != nil {
		return nil, err
	}
	return &UploadURL{
		UploadURL:   url,
		Key:         key,
		Bucket:      s.objects.Bucket(),
		ExpiresIn:   expiresIn,
		FileName:    in.FileName,
		ContentType: contentType,
	}, nil
}

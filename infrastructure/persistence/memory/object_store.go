package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"crud-microservices/application/ports"
	"crud-microservices/domain/entities"
	apperrors "crud-microservices/pkg/errors"
)

// ObjectStore is an in-process stand-in for S3 used in offline mode.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string]entities.StoredFile
	bucket  string
	baseURL string
	now     func() time.Time
}

var _ ports.ObjectStore = (*ObjectStore)(nil)

// NewObjectStore creates an empty store whose mock URLs start with baseURL.
func NewObjectStore(bucket, baseURL string) *ObjectStore {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return &ObjectStore{
		objects: make(map[string]entities.StoredFile),
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func fileNotFound() error {
	return apperrors.NewNotFoundError("File").WithCode(apperrors.CodeFileNotFound)
}

// Bucket returns the configured bucket name.
func (s *ObjectStore) Bucket() string { return s.bucket }

// Put stores a copy of file.
func (s *ObjectStore) Put(_ context.Context, file *entities.StoredFile) (string, error) {
	stored := *file
	stored.Body = append([]byte(nil), file.Body...)
	stored.Size = int64(len(stored.Body))
	stored.LastModified = s.now().UTC()
	if file.Metadata != nil {
		stored.Metadata = make(map[string]string, len(file.Metadata))
		for k, v := range file.Metadata {
			stored.Metadata[k] = v
		}
	}

	s.mu.Lock()
	s.objects[file.Key] = stored
	s.mu.Unlock()

	return fmt.Sprintf("%s/mock-s3/%s", s.baseURL, file.Key), nil
}

// Get returns a copy of the object.
func (s *ObjectStore) Get(_ context.Context, key string) (*entities.StoredFile, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fileNotFound()
	}
	obj.Body = append([]byte(nil), obj.Body...)
	return &obj, nil
}

// Head returns the object without its body.
func (s *ObjectStore) Head(ctx context.Context, key string) (*entities.StoredFile, error) {
	obj, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	obj.Body = nil
	return obj, nil
}

// Delete removes the object. Deleting a missing key is not an error, as with S3.
func (s *ObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// List returns up to maxKeys objects under prefix in key order.
func (s *ObjectStore) List(_ context.Context, prefix string, maxKeys int) ([]entities.FileInfo, bool, error) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	truncated := false
	if maxKeys > 0 && len(keys) > maxKeys {
		keys = keys[:maxKeys]
		truncated = true
	}

	files := make([]entities.FileInfo, 0, len(keys))
	for _, k := range keys {
		obj := s.objects[k]
		files = append(files, entities.FileInfo{
			Key:          k,
			LastModified: obj.LastModified,
			Size:         obj.Size,
			ETag:         fmt.Sprintf("%q", fmt.Sprint(obj.LastModified.UnixMilli())),
			StorageClass: "STANDARD",
		})
	}
	s.mu.RUnlock()

	return files, truncated, nil
}

// PresignGet returns a mock download URL.
func (s *ObjectStore) PresignGet(_ context.Context, key string, expires time.Duration) (string, error) {
	return fmt.Sprintf("%s/mock-s3/%s?expires=%d", s.baseURL, key, s.now().Add(expires).UnixMilli()), nil
}

// PresignPut returns a mock upload URL.
func (s *ObjectStore) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return fmt.Sprintf("%s/mock-s3/upload/%s", s.baseURL, key), nil
}

package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"crud-microservices/application/ports"
	"crud-microservices/domain/entities"
	apperrors "crud-microservices/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// API is the subset of the S3 client the object store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Presigner is the subset of s3.PresignClient the object store uses.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Config locates the bucket.
type Config struct {
	Bucket string
	Region string
	// Endpoint is set for LocalStack; it switches locations to path style.
	Endpoint string
}

// ObjectStore implements ports.ObjectStore on an S3 bucket.
type ObjectStore struct {
	client    API
	presigner Presigner
	cfg       Config
	logger    *zap.Logger
}

var _ ports.ObjectStore = (*ObjectStore)(nil)

// NewObjectStore creates a store. Use s3.NewPresignClient(client) for presigner.
func NewObjectStore(client API, presigner Presigner, cfg Config, logger *zap.Logger) *ObjectStore {
	return &ObjectStore{client: client, presigner: presigner, cfg: cfg, logger: logger}
}

// Bucket returns the configured bucket name.
func (s *ObjectStore) Bucket() string { return s.cfg.Bucket }

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func (s *ObjectStore) translate(err error) error {
	if isNotFound(err) {
		return apperrors.NewNotFoundError("File").WithCode(apperrors.CodeFileNotFound).WithCause(err)
	}
	return apperrors.NewUpstreamError("s3", err)
}

func (s *ObjectStore) location(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, escaped)
}

// Put uploads a file and returns its location.
func (s *ObjectStore) Put(ctx context.Context, file *entities.StoredFile) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(file.Key),
		Body:          bytes.NewReader(file.Body),
		ContentType:   aws.String(file.ContentType),
		ContentLength: aws.Int64(int64(len(file.Body))),
		Metadata:      file.Metadata,
	})
	if err != nil {
		return "", s.translate(err)
	}

	s.logger.Info("Object uploaded",
		zap.String("bucket", s.cfg.Bucket),
		zap.String("key", file.Key),
		zap.Int("size", len(file.Body)),
	)
	return s.location(file.Key), nil
}

// Get downloads an object.
func (s *ObjectStore) Get(ctx context.Context, key string) (*entities.StoredFile, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.translate(err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamError("s3", err)
	}

	return &entities.StoredFile{
		Key:          key,
		Body:         body,
		ContentType:  aws.ToString(out.ContentType),
		Metadata:     out.Metadata,
		LastModified: aws.ToTime(out.LastModified),
		Size:         int64(len(body)),
	}, nil
}

// Head returns object metadata.
func (s *ObjectStore) Head(ctx context.Context, key string) (*entities.StoredFile, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return &entities.StoredFile{
		Key:          key,
		ContentType:  aws.ToString(out.ContentType),
		Metadata:     out.Metadata,
		LastModified: aws.ToTime(out.LastModified),
		Size:         aws.ToInt64(out.ContentLength),
	}, nil
}

// Delete removes an object.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return s.translate(err)
	}
	s.logger.Info("Object deleted", zap.String("bucket", s.cfg.Bucket), zap.String("key", key))
	return nil
}

// List returns one page of up to maxKeys objects under prefix.
func (s *ObjectStore) List(ctx context.Context, prefix string, maxKeys int) ([]entities.FileInfo, bool, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if maxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(maxKeys))
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, false, apperrors.NewUpstreamError("s3", err)
	}

	files := make([]entities.FileInfo, 0, len(out.Contents))
	for _, obj := range out.Contents {
		files = append(files, entities.FileInfo{
			Key:          aws.ToString(obj.Key),
			LastModified: aws.ToTime(obj.LastModified),
			Size:         aws.ToInt64(obj.Size),
			ETag:         aws.ToString(obj.ETag),
			StorageClass: string(obj.StorageClass),
		})
	}
	return files, aws.ToBool(out.IsTruncated), nil
}

// PresignGet returns a time-limited download URL.
func (s *ObjectStore) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", apperrors.NewUpstreamError("s3", err)
	}
	return req.URL, nil
}

// PresignPut returns a time-limited upload URL bound to contentType.
func (s *ObjectStore) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", apperrors.NewUpstreamError("s3", err)
	}
	return req.URL, nil
}

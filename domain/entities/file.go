package entities

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// UploadPrefix namespaces every user upload.
const UploadPrefix = "uploads/"

const maxBaseNameLength = 50

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// StoredFile is an object in the object store. Its owner is encoded in Key.
type StoredFile struct {
	Key          string            `json:"key"`
	Body         []byte            `json:"-"`
	ContentType  string            `json:"contentType"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"lastModified"`
	Size         int64             `json:"size"`
}

// FileInfo is a listing entry.
type FileInfo struct {
	Key          string    `json:"key"`
	LastModified time.Time `json:"lastModified"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag,omitempty"`
	StorageClass string    `json:"storageClass,omitempty"`
}

// UserNamespace returns the key prefix owned by userID.
func UserNamespace(userID string) string {
	return UploadPrefix + userID + "/"
}

// FileKey builds uploads/{userID}/{unixMillis}-{sanitizedBase}{ext}.
func FileKey(userID, originalName string, at time.Time) string {
	ext := path.Ext(originalName)
	base := strings.TrimSuffix(path.Base(originalName), ext)
	base = unsafeKeyChars.ReplaceAllString(base, "-")
	if len(base) > maxBaseNameLength {
		base = base[:maxBaseNameLength]
	}
	return fmt.Sprintf("%s%d-%s%s", UserNamespace(userID), at.UnixMilli(), base, ext)
}

// KeyOwnedBy reports whether key lives in userID's namespace.
func KeyOwnedBy(key, userID string) bool {
	return userID != "" && strings.HasPrefix(key, UserNamespace(userID))
}

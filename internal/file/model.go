package file

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/nekogravitycat/car-rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "File not found")
	ErrThumbnailNotFound = apperror.New(http.StatusNotFound, "Thumbnail not available for this file")
	ErrFileTooLarge      = apperror.New(http.StatusBadRequest, "File is too large")
	ErrUnsupportedType   = apperror.New(http.StatusBadRequest, "File type is not allowed")
	ErrInvalidImage      = apperror.New(http.StatusBadRequest, "File is not a valid image")
)

// File represents an uploaded object and where it lives in storage.
type File struct {
	ID            string
	UserID        string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// UploadInput describes one upload and the rules it must satisfy.
type UploadInput struct {
	FileHeader   *multipart.FileHeader
	UserID       string
	MaxSizeBytes int64    // 0 = no limit
	AllowedTypes []string // sniffed MIME types; empty = allow all
	ResizeImage  bool     // re-encode as JPEG fitting ImageMaxSide
}

const (
	ImageMaxSide     = 1000
	ThumbnailMaxSide = 200
)

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/api/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/api/v1/files/" + id + "/thumbnail"
}

package assets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxSize is the largest accepted upload.
const MaxSize = 5 << 20 // 5 MB

var ErrInvalidAsset = errors.New("invalid asset")

// allowedContentTypes maps accepted image types to the stored extension.
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Asset is an uploaded binary held in memory.
type Asset struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Stored is the object store's answer to an upload: a servable URL and the
// opaque id used to delete the object later.
type Stored struct {
	URL string
	ID  string
}

// Store abstracts the binary object store. Delete must be idempotent:
// deleting an unknown id is not an error.
type Store interface {
	Upload(ctx context.Context, a Asset, folder string) (Stored, error)
	Delete(ctx context.Context, id string) error
}

// Validate checks size and type. Both the declared content type and the
// sniffed one must be an accepted image type.
func (a Asset) Validate() error {
	if len(a.Data) == 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidAsset)
	}
	if len(a.Data) > MaxSize {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidAsset, MaxSize)
	}
	declared := normalizeContentType(a.ContentType)
	if _, ok := allowedContentTypes[declared]; !ok {
		return fmt.Errorf("%w: only image files can be uploaded (jpeg, jpg, png, gif, webp)", ErrInvalidAsset)
	}
	if _, ok := allowedContentTypes[a.DetectedType()]; !ok {
		return fmt.Errorf("%w: file content is not an accepted image", ErrInvalidAsset)
	}
	return nil
}

// DetectedType sniffs the content type from the first bytes of Data.
func (a Asset) DetectedType() string {
	return normalizeContentType(http.DetectContentType(a.Data))
}

// Extension returns the file extension for the sniffed type, or "" when the
// type is not accepted.
func (a Asset) Extension() string {
	return allowedContentTypes[a.DetectedType()]
}

func normalizeContentType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func objectKey(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

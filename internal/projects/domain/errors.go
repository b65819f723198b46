package domain

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("project not found")
	ErrAssetUpload      = errors.New("asset upload failed")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrSlugConflict     = errors.New("slug conflict unresolvable")
)

// Error kinds reported to API clients.
const (
	KindValidationFailed         = "ValidationFailed"
	KindNotFound                 = "NotFound"
	KindAssetUploadFailed        = "AssetUploadFailed"
	KindStoreUnavailable         = "StoreUnavailable"
	KindDuplicateKey             = "DuplicateKey"
	KindSlugConflictUnresolvable = "SlugConflictUnresolvable"
	KindInternal                 = "Internal"
)

// Kind classifies err into one of the client-facing error kinds.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidationFailed
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAssetUpload):
		return KindAssetUploadFailed
	case errors.Is(err, ErrDuplicateKey):
		return KindDuplicateKey
	case errors.Is(err, ErrSlugConflict):
		return KindSlugConflictUnresolvable
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	default:
		return KindInternal
	}
}

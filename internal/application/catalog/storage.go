package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ObjectStorage stores product images in an S3-compatible bucket
type ObjectStorage interface {
	// GenerateUploadURL presigns a PUT for storageKey
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// PublicURL is the URL clients use to read the object
	PublicURL(storageKey string) string
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// allowedImageTypes maps accepted content types to file extensions
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageStorageKey builds products/<productId>/<uuid><ext> for an upload
func ImageStorageKey(productID uuid.UUID, filename, contentType string) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", shared.InvalidInput(fmt.Sprintf("Unsupported image content type: %s", contentType))
	}
	if fileExt := strings.ToLower(path.Ext(filename)); fileExt == ".jpeg" || fileExt == ext {
		ext = fileExt
	}
	return fmt.Sprintf("products/%s/%s%s", productID, uuid.New(), ext), nil
}

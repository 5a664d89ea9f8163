package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ObjectRepository defines the interface for receipt and logo storage
type ObjectRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// GenerateObjectPath creates a unique object path scoped to the owner.
// Layout: <userID>/<kind>/<entityID>/<uuid>_<variant><ext>
func GenerateObjectPath(userID uuid.UUID, kind string, entityID int32, variant, ext string) string {
	filename := fmt.Sprintf("%s_%s%s", uuid.New(), variant, ext)
	return path.Join(userID.String(), kind, fmt.Sprintf("%d", entityID), filename)
}

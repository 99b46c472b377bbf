package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
)

// ObjectStore defines the interface for receipt file storage operations
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	PresignedURL(ctx context.Context, objectPath string) (string, error)
}

// GenerateObjectPath creates a unique object path for a receipt variant:
// <clinic>/expenses/<expense>/<uuid>_<variant><ext>
func GenerateObjectPath(clinicID, expenseID int32, id uuid.UUID, variant, ext string) string {
	filename := fmt.Sprintf("%s_%s%s", id.String(), variant, ext)
	return path.Join(fmt.Sprintf("%d", clinicID), "expenses", fmt.Sprintf("%d", expenseID), filename)
}

package storage

import (
	"context"

	"campstay/models"
)

// StorageService keeps booking attachments outside the marketplace API.
type StorageService interface {
	UploadIdentityDocument(ctx context.Context, doc models.Document) (string, error)
	DeleteFile(ctx context.Context, publicID string) error
}

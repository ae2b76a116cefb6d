package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"campstay/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// maxDocumentSize bounds identity uploads at 10 MiB.
const maxDocumentSize = 10 << 20

var allowedDocumentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

var ErrUnsupportedDocument = errors.New("unsupported identity document")

// Uploader is the part of the Cloudinary upload API used here.
type Uploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStorage uploads identity documents to a Cloudinary folder.
type CloudinaryStorage struct {
	upload Uploader
	folder string
	logger *zap.Logger
}

// NewCloudinaryStorage builds a Cloudinary client from account credentials.
func NewCloudinaryStorage(cloudName, apiKey, apiSecret, folder string, logger *zap.Logger) (*CloudinaryStorage, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return NewStorageService(&cld.Upload, folder, logger), nil
}

// NewStorageService wraps an existing upload API.
func NewStorageService(up Uploader, folder string, logger *zap.Logger) *CloudinaryStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudinaryStorage{upload: up, folder: folder, logger: logger}
}

// UploadIdentityDocument stores doc and returns its HTTPS URL.
func (s *CloudinaryStorage) UploadIdentityDocument(ctx context.Context, doc models.Document) (string, error) {
	if err := checkDocument(doc); err != nil {
		return "", err
	}
	params := uploader.UploadParams{
		Folder:         s.folder,
		ResourceType:   "auto",
		UniqueFilename: api.Bool(true),
	}
	result, err := s.upload.Upload(ctx, bytes.NewReader(doc.Content), params)
	if err != nil {
		return "", fmt.Errorf("failed to upload identity document: %w", err)
	}
	if result == nil || result.SecureURL == "" {
		return "", fmt.Errorf("failed to upload identity document: no URL returned")
	}
	s.logger.Info("identity document uploaded",
		zap.String("publicId", result.PublicID),
		zap.Int("bytes", len(doc.Content)))
	return result.SecureURL, nil
}

// DeleteFile removes an uploaded file by public ID.
func (s *CloudinaryStorage) DeleteFile(ctx context.Context, publicID string) error {
	if _, err := s.upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func checkDocument(doc models.Document) error {
	switch {
	case len(doc.Content) == 0:
		return fmt.Errorf("%w: empty file", ErrUnsupportedDocument)
	case len(doc.Content) > maxDocumentSize:
		return fmt.Errorf("%w: file exceeds %d bytes", ErrUnsupportedDocument, maxDocumentSize)
	case doc.ContentType != "" && !allowedDocumentTypes[strings.ToLower(doc.ContentType)]:
		return fmt.Errorf("%w: content type %s", ErrUnsupportedDocument, doc.ContentType)
	}
	return nil
}

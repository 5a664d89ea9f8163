package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/trubalance/trubalance-backend/internal/repository/storage"
)

const (
	MaxReceiptSize  = 10 * 1024 * 1024 // 10MB
	MaxLogoSize     = 2 * 1024 * 1024  // 2MB
	MinImageWidth   = 50
	MinImageHeight  = 50
	ReceiptMaxWidth = 1600
	LogoMaxWidth    = 512
	JPEGQuality     = 85

	// Receipts are private records, so links are short-lived.
	PresignedURLExpiry = 15 * time.Minute
)

var (
	ErrReceiptTooLarge            = errors.New("file too large. Maximum size is 10MB")
	ErrLogoTooLarge               = errors.New("file too large. Maximum size is 2MB")
	ErrInvalidReceiptFormat       = errors.New("invalid format. Supported: JPEG, PNG, WebP, PDF")
	ErrInvalidLogoFormat          = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrImageTooSmall              = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidImageData           = errors.New("invalid image data")
	ErrObjectStorageNotConfigured = errors.New("object storage not configured")
)

// imageExtensions maps extensions to content types
var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ReceiptService processes and stores expense receipts and business
// profile logos.
type ReceiptService struct {
	storage storage.ObjectRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(storage storage.ObjectRepository) *ReceiptService {
	return &ReceiptService{storage: storage}
}

// IsEnabled indicates whether uploads are supported (storage configured)
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// UploadReceipt validates and stores a receipt for an expense. Images
// are recompressed and capped in width; PDFs are stored as-is. Returns
// the object path to record on the expense.
func (s *ReceiptService) UploadReceipt(ctx context.Context, userID uuid.UUID, expenseID int32, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrObjectStorageNotConfigured
	}
	if len(data) > MaxReceiptSize {
		return "", ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".pdf" {
		objectPath := storage.GenerateObjectPath(userID, "receipts", expenseID, "original", ".pdf")
		return s.storage.Upload(ctx, objectPath, bytes.NewReader(data), "application/pdf", int64(len(data)))
	}

	if _, ok := imageExtensions[ext]; !ok {
		return "", ErrInvalidReceiptFormat
	}
	encoded, err := reencodeImage(data, ReceiptMaxWidth)
	if err != nil {
		return "", err
	}

	objectPath := storage.GenerateObjectPath(userID, "receipts", expenseID, "full", ".jpg")
	return s.storage.Upload(ctx, objectPath, bytes.NewReader(encoded), "image/jpeg", int64(len(encoded)))
}

// UploadLogo validates and stores a business profile logo
func (s *ReceiptService) UploadLogo(ctx context.Context, userID uuid.UUID, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrObjectStorageNotConfigured
	}
	if len(data) > MaxLogoSize {
		return "", ErrLogoTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := imageExtensions[ext]; !ok {
		return "", ErrInvalidLogoFormat
	}
	encoded, err := reencodeImage(data, LogoMaxWidth)
	if err != nil {
		return "", err
	}

	objectPath := storage.GenerateObjectPath(userID, "logos", 0, "logo", ".jpg")
	return s.storage.Upload(ctx, objectPath, bytes.NewReader(encoded), "image/jpeg", int64(len(encoded)))
}

// PresignedURL returns a short-lived download URL for a stored object.
// The object path must belong to the requesting user.
func (s *ReceiptService) PresignedURL(ctx context.Context, userID uuid.UUID, objectPath string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrObjectStorageNotConfigured
	}
	if !strings.HasPrefix(objectPath, userID.String()+"/") {
		return "", ErrInvalidImageData
	}
	return s.storage.GeneratePresignedURL(ctx, objectPath, PresignedURLExpiry)
}

// Delete removes a stored object. Missing objects are not an error.
func (s *ReceiptService) Delete(ctx context.Context, objectPath string) error {
	if objectPath == "" {
		return nil
	}
	if !s.IsEnabled() {
		return ErrObjectStorageNotConfigured
	}
	return s.storage.Delete(ctx, objectPath)
}

// reencodeImage decodes, validates, optionally downscales and encodes
// the image as JPEG.
func reencodeImage(data []byte, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, ErrImageTooSmall
	}

	processed := img
	if bounds.Dx() > maxWidth {
		processed = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// ReceiptContentType returns the content type for a receipt filename
func ReceiptContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".pdf" {
		return "application/pdf"
	}
	if ct, ok := imageExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

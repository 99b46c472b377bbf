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

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxReceiptSize   = 5 * 1024 * 1024 // 5MB
	MinReceiptWidth  = 50
	MinReceiptHeight = 50
	ThumbnailWidth   = 200
	DisplayWidth     = 1200
	JPEGQuality      = 85
)

var (
	ErrReceiptTooLarge             = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidReceiptFormat        = errors.New("invalid format. Supported: JPEG, PNG")
	ErrReceiptTooSmall             = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidReceiptData          = errors.New("invalid image data")
	ErrReceiptStorageNotConfigured = errors.New("receipt storage not configured")
	ErrReceiptNotFound             = errors.New("expense has no receipt")
)

// AllowedReceiptExtensions maps extensions to content types.
// Decoders for both are registered by imaging.
var AllowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// receiptVariants are stored for every upload; original is kept at full size
var receiptVariants = []struct {
	name     string
	maxWidth int
}{
	{"thumb", ThumbnailWidth},
	{"display", DisplayWidth},
	{"original", 0},
}

// ReceiptURLs holds presigned URLs for each stored variant
type ReceiptURLs struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// ReceiptService stores expense receipt images
type ReceiptService struct {
	store       storage.ObjectStore
	expenseRepo domain.ExpenseRepository
}

// NewReceiptService creates a new ReceiptService. A nil store disables uploads.
func NewReceiptService(store storage.ObjectStore, expenseRepo domain.ExpenseRepository) *ReceiptService {
	return &ReceiptService{store: store, expenseRepo: expenseRepo}
}

// IsEnabled indicates whether uploads are supported (storage configured)
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.store != nil
}

// validateAndDecode checks size, extension and dimensions and returns the decoded image
func (s *ReceiptService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedReceiptExtensions[ext]; !ok {
		return nil, ErrInvalidReceiptFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrInvalidReceiptData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinReceiptWidth || bounds.Dy() < MinReceiptHeight {
		return nil, ErrReceiptTooSmall
	}
	return img, nil
}

// AttachReceipt resizes and uploads a receipt, replacing any previous one
func (s *ReceiptService) AttachReceipt(ctx context.Context, clinicID, expenseID int32, data []byte, filename string) (*ReceiptURLs, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}

	expense, err := s.expenseRepo.GetByID(clinicID, expenseID)
	if err != nil {
		return nil, err
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	uploaded := make([]string, 0, len(receiptVariants))

	for _, variant := range receiptVariants {
		processed := img
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			s.cleanup(ctx, uploaded)
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := storage.GenerateObjectPath(clinicID, expenseID, id, variant.name, ".jpg")
		if _, err := s.store.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
			s.cleanup(ctx, uploaded)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		uploaded = append(uploaded, objectPath)
	}

	previous := expense.ReceiptPath
	originalPath := uploaded[len(uploaded)-1]
	expense.ReceiptPath = &originalPath
	if _, err := s.expenseRepo.Update(expense); err != nil {
		s.cleanup(ctx, uploaded)
		return nil, err
	}

	if previous != nil {
		s.cleanup(ctx, variantPaths(*previous))
	}

	log.Info().Int32("clinic_id", clinicID).Int32("expense_id", expenseID).Msg("Receipt attached")
	return s.presign(ctx, id.String(), originalPath)
}

// GetReceiptURLs presigns the stored variants of an expense receipt
func (s *ReceiptService) GetReceiptURLs(ctx context.Context, clinicID, expenseID int32) (*ReceiptURLs, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}
	expense, err := s.expenseRepo.GetByID(clinicID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.ReceiptPath == nil {
		return nil, ErrReceiptNotFound
	}
	base := filepath.Base(*expense.ReceiptPath)
	id := strings.TrimSuffix(base, "_original.jpg")
	return s.presign(ctx, id, *expense.ReceiptPath)
}

// DeleteReceipt removes all variants and clears the expense reference
func (s *ReceiptService) DeleteReceipt(ctx context.Context, clinicID, expenseID int32) error {
	if !s.IsEnabled() {
		return ErrReceiptStorageNotConfigured
	}
	expense, err := s.expenseRepo.GetByID(clinicID, expenseID)
	if err != nil {
		return err
	}
	if expense.ReceiptPath == nil {
		return nil
	}
	paths := variantPaths(*expense.ReceiptPath)
	expense.ReceiptPath = nil
	if _, err := s.expenseRepo.Update(expense); err != nil {
		return err
	}
	s.cleanup(ctx, paths)
	return nil
}

func (s *ReceiptService) presign(ctx context.Context, id, originalPath string) (*ReceiptURLs, error) {
	urls := make(map[string]string, len(receiptVariants))
	for _, p := range variantPaths(originalPath) {
		url, err := s.store.PresignedURL(ctx, p)
		if err != nil {
			return nil, err
		}
		urls[variantOf(p)] = url
	}
	return &ReceiptURLs{
		ID:           id,
		ThumbnailURL: urls["thumb"],
		DisplayURL:   urls["display"],
		OriginalURL:  urls["original"],
	}, nil
}

// cleanup deletes objects best effort
func (s *ReceiptService) cleanup(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("Failed to delete receipt object")
		}
	}
}

// variantPaths derives every variant path from the original's path
func variantPaths(originalPath string) []string {
	base := strings.TrimSuffix(originalPath, "_original.jpg")
	paths := make([]string, len(receiptVariants))
	for i, v := range receiptVariants {
		paths[i] = base + "_" + v.name + ".jpg"
	}
	return paths
}

func variantOf(objectPath string) string {
	name := strings.TrimSuffix(filepath.Base(objectPath), ".jpg")
	if i := strings.LastIndex(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// ReceiptContentType returns the content type for a file extension
func ReceiptContentType(filename string) string {
	if ct, ok := AllowedReceiptExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImage creates a test image of the specified size and format
func createTestImage(width, height int, format string) ([]byte, string) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	var buf bytes.Buffer
	if format == "png" {
		png.Encode(&buf, img)
		return buf.Bytes(), "recibo.png"
	}
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	return buf.Bytes(), "recibo.jpg"
}

func newReceiptFixture() (*ReceiptService, *testutil.MockObjectStore, *testutil.MockExpenseRepository) {
	store := testutil.NewMockObjectStore()
	expenses := testutil.NewMockExpenseRepository()
	expenses.AddExpense(&domain.Expense{
		ID:          3,
		ClinicID:    1,
		Description: "Material",
		Amount:      decimal.NewFromInt(40),
		Category:    domain.ExpenseCategorySupplies,
		ExpenseDate: time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	return NewReceiptService(store, expenses), store, expenses
}

func TestReceiptService_Validation(t *testing.T) {
	svc, _, _ := newReceiptFixture()
	ctx := context.Background()

	small, smallName := createTestImage(20, 20, "png")
	valid, _ := createTestImage(100, 100, "jpeg")

	tests := []struct {
		name     string
		data     []byte
		filename string
		want     error
	}{
		{"too small", small, smallName, ErrReceiptTooSmall},
		{"bad extension", valid, "recibo.gif", ErrInvalidReceiptFormat},
		{"not an image", []byte("hello"), "recibo.jpg", ErrInvalidReceiptData},
		{"too large", make([]byte, MaxReceiptSize+1), "recibo.jpg", ErrReceiptTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AttachReceipt(ctx, 1, 3, tt.data, tt.filename)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReceiptService_AttachReceipt(t *testing.T) {
	svc, store, expenses := newReceiptFixture()
	data, filename := createTestImage(1600, 800, "png")

	urls, err := svc.AttachReceipt(context.Background(), 1, 3, data, filename)

	require.NoError(t, err)
	assert.Len(t, store.Objects, 3)
	assert.Contains(t, urls.ThumbnailURL, "_thumb.jpg")
	assert.Contains(t, urls.DisplayURL, "_display.jpg")
	assert.Contains(t, urls.OriginalURL, "_original.jpg")
	assert.True(t, strings.HasPrefix(urls.OriginalURL, "https://storage.test/1/expenses/3/"+urls.ID))

	expense, err := expenses.GetByID(1, 3)
	require.NoError(t, err)
	require.NotNil(t, expense.ReceiptPath)
	assert.True(t, strings.HasSuffix(*expense.ReceiptPath, "_original.jpg"))

	for path, body := range store.Objects {
		img, err := jpeg.Decode(bytes.NewReader(body))
		require.NoError(t, err, path)
		switch {
		case strings.HasSuffix(path, "_thumb.jpg"):
			assert.Equal(t, ThumbnailWidth, img.Bounds().Dx())
		case strings.HasSuffix(path, "_display.jpg"):
			assert.Equal(t, DisplayWidth, img.Bounds().Dx())
		default:
			assert.Equal(t, 1600, img.Bounds().Dx())
		}
	}
}

func TestReceiptService_ReplaceAndDelete(t *testing.T) {
	svc, store, expenses := newReceiptFixture()
	ctx := context.Background()
	data, filename := createTestImage(100, 100, "jpeg")

	first, err := svc.AttachReceipt(ctx, 1, 3, data, filename)
	require.NoError(t, err)
	second, err := svc.AttachReceipt(ctx, 1, 3, data, filename)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, store.Objects, 3)

	got, err := svc.GetReceiptURLs(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	require.NoError(t, svc.DeleteReceipt(ctx, 1, 3))
	assert.Empty(t, store.Objects)
	expense, _ := expenses.GetByID(1, 3)
	assert.Nil(t, expense.ReceiptPath)

	_, err = svc.GetReceiptURLs(ctx, 1, 3)
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestReceiptService_UploadFailureCleansUp(t *testing.T) {
	svc, store, expenses := newReceiptFixture()
	store.UploadErr = errors.New("bucket unavailable")
	data, filename := createTestImage(100, 100, "jpeg")

	_, err := svc.AttachReceipt(context.Background(), 1, 3, data, filename)

	assert.Error(t, err)
	assert.Empty(t, store.Objects)
	expense, _ := expenses.GetByID(1, 3)
	assert.Nil(t, expense.ReceiptPath)
}

func TestReceiptService_Disabled(t *testing.T) {
	svc := NewReceiptService(nil, testutil.NewMockExpenseRepository())

	assert.False(t, svc.IsEnabled())
	_, err := svc.AttachReceipt(context.Background(), 1, 3, nil, "x.jpg")
	assert.ErrorIs(t, err, ErrReceiptStorageNotConfigured)
	_, err = svc.GetReceiptURLs(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrReceiptStorageNotConfigured)
}

func TestReceiptService_UnknownExpense(t *testing.T) {
	svc, _, _ := newReceiptFixture()
	data, filename := createTestImage(100, 100, "jpeg")

	_, err := svc.AttachReceipt(context.Background(), 1, 42, data, filename)

	assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
}

func TestReceiptContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ReceiptContentType("a.JPG"))
	assert.Equal(t, "image/png", ReceiptContentType("a.png"))
	assert.Equal(t, "application/octet-stream", ReceiptContentType("a.pdf"))
}

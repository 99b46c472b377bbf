package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/dafibh/clinica/clinica-backend/internal/middleware"
	"github.com/dafibh/clinica/clinica-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReceiptHandler handles expense receipt uploads
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

func receiptValidationError(c echo.Context, err error) error {
	return NewValidationError(c, "Validation failed", []ValidationError{
		{Field: "file", Message: err.Error()},
	})
}

func (h *ReceiptHandler) handleError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, service.ErrReceiptTooLarge),
		errors.Is(err, service.ErrInvalidReceiptFormat),
		errors.Is(err, service.ErrReceiptTooSmall),
		errors.Is(err, service.ErrInvalidReceiptData):
		return receiptValidationError(c, err)
	case errors.Is(err, service.ErrReceiptStorageNotConfigured):
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	case errors.Is(err, service.ErrReceiptNotFound):
		return NewNotFoundError(c, "Expense has no receipt")
	}
	return handleServiceError(c, err, action)
}

// UploadReceipt godoc
// @Summary Attach a receipt image to an expense
// @Description Stores thumbnail, display and original JPEG variants and returns presigned URLs
// @Tags expenses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Param file formData file true "JPEG or PNG, up to 5MB"
// @Success 201 {object} service.ReceiptURLs
// @Failure 400 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/{id}/receipt [post]
func (h *ReceiptHandler) UploadReceipt(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	// Checked before reading the body so a missing bucket never buffers uploads
	if !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}
	if file.Size > service.MaxReceiptSize {
		return receiptValidationError(c, service.ErrReceiptTooLarge)
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxReceiptSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	urls, err := h.receiptService.AttachReceipt(c.Request().Context(), clinicID, id, data, file.Filename)
	if err != nil {
		return h.handleError(c, err, "upload receipt")
	}

	return c.JSON(http.StatusCreated, urls)
}

// GetReceipt godoc
// @Summary Presigned URLs for an expense receipt
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} service.ReceiptURLs
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id}/receipt [get]
func (h *ReceiptHandler) GetReceipt(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	urls, err := h.receiptService.GetReceiptURLs(c.Request().Context(), clinicID, id)
	if err != nil {
		return h.handleError(c, err, "get receipt")
	}
	return c.JSON(http.StatusOK, urls)
}

// DeleteReceipt godoc
// @Summary Remove an expense receipt
// @Tags expenses
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 204
// @Router /expenses/{id}/receipt [delete]
func (h *ReceiptHandler) DeleteReceipt(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.receiptService.DeleteReceipt(c.Request().Context(), clinicID, id); err != nil {
		return h.handleError(c, err, "delete receipt")
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/service"
	"github.com/dafibh/clinica/clinica-backend/internal/util"
	"github.com/labstack/echo/v4"
)

// PublicHandler serves the unauthenticated booking page
type PublicHandler struct {
	scheduling *service.PublicSchedulingService
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(scheduling *service.PublicSchedulingService) *PublicHandler {
	return &PublicHandler{scheduling: scheduling}
}

// BookingRequest represents a public booking body
type BookingRequest struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
	// One of the offered slots: RFC3339, epoch milliseconds or {"seconds": N}
	StartsAt util.FlexibleTime `json:"startsAt" swaggertype:"string"`
	Notes    *string           `json:"notes,omitempty"`
}

// SlotsResponse lists the free slots of a day
type SlotsResponse struct {
	Date  string         `json:"date"`
	Slots []service.Slot `json:"slots"`
}

// GetClinic godoc
// @Summary Public clinic profile
// @Tags public
// @Produce json
// @Param slug path string true "Clinic public slug"
// @Success 200 {object} service.PublicClinic
// @Failure 404 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /public/{slug} [get]
func (h *PublicHandler) GetClinic(c echo.Context) error {
	clinic, err := h.scheduling.GetClinic(c.Param("slug"))
	if err != nil {
		return handleServiceError(c, err, "get clinic")
	}
	return c.JSON(http.StatusOK, clinic)
}

// GetSlots godoc
// @Summary Free slots for a day
// @Tags public
// @Produce json
// @Param slug path string true "Clinic public slug"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} SlotsResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /public/{slug}/slots [get]
func (h *PublicHandler) GetSlots(c echo.Context) error {
	dateStr := c.QueryParam("date")
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "date", Message: "Use YYYY-MM-DD"}})
	}

	slots, err := h.scheduling.AvailableSlots(c.Param("slug"), date)
	if err != nil {
		return handleServiceError(c, err, "list slots")
	}
	if slots == nil {
		slots = []service.Slot{}
	}
	return c.JSON(http.StatusOK, SlotsResponse{Date: dateStr, Slots: slots})
}

// Book godoc
// @Summary Book an appointment
// @Description Matches the patient by phone or registers them, then books one of the offered slots
// @Tags public
// @Accept json
// @Produce json
// @Param slug path string true "Clinic public slug"
// @Param request body BookingRequest true "Booking"
// @Success 201 {object} service.BookingResult
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /public/{slug}/book [post]
func (h *PublicHandler) Book(c echo.Context) error {
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if !req.StartsAt.Valid {
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "startsAt", Message: "Unrecognized timestamp"}})
	}

	result, err := h.scheduling.Book(c.Param("slug"), service.BookingInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		StartsAt: req.StartsAt.Time,
		Notes:    req.Notes,
	})
	if err != nil {
		return handleServiceError(c, err, "book appointment")
	}
	return c.JSON(http.StatusCreated, result)
}

package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/middleware"
	"github.com/dafibh/clinica/clinica-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AgendaHandler handles appointment requests
type AgendaHandler struct {
	agendaService *service.AgendaService
}

// NewAgendaHandler creates a new AgendaHandler
func NewAgendaHandler(agendaService *service.AgendaService) *AgendaHandler {
	return &AgendaHandler{agendaService: agendaService}
}

// CreateAppointmentRequest represents the new appointment body
type CreateAppointmentRequest struct {
	PatientID int32   `json:"patientId"`
	StartsAt  string  `json:"startsAt"`         // RFC3339
	EndsAt    *string `json:"endsAt,omitempty"` // RFC3339, defaults to one slot
	Price     string  `json:"price"`
	Notes     *string `json:"notes,omitempty"`
}

// UpdateStatusRequest represents a status change
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// RescheduleRequest moves an appointment
type RescheduleRequest struct {
	StartsAt string  `json:"startsAt"`
	EndsAt   *string `json:"endsAt,omitempty"`
}

// AppointmentResponse represents an appointment in API responses
type AppointmentResponse struct {
	ID               int32     `json:"id"`
	PatientID        int32     `json:"patientId"`
	StartsAt         time.Time `json:"startsAt"`
	EndsAt           time.Time `json:"endsAt"`
	Status           string    `json:"status"`
	Source           string    `json:"source"`
	Price            string    `json:"price"`
	IsPaid           bool      `json:"isPaid"`
	PaymentReference *string   `json:"paymentReference,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
}

func toAppointmentResponse(a *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:               a.ID,
		PatientID:        a.PatientID,
		StartsAt:         a.StartsAt,
		EndsAt:           a.EndsAt,
		Status:           string(a.Status),
		Source:           string(a.Source),
		Price:            a.Price.StringFixed(2),
		IsPaid:           a.IsPaid,
		PaymentReference: a.PaymentReference,
		Notes:            a.Notes,
	}
}

func toAppointmentResponses(appts []*domain.Appointment) []AppointmentResponse {
	resp := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		resp = append(resp, toAppointmentResponse(a))
	}
	return resp
}

// parseInterval parses a required start and optional end in RFC3339
func parseInterval(startsAt string, endsAt *string) (time.Time, *time.Time, []ValidationError) {
	start, err := time.Parse(time.RFC3339, startsAt)
	if err != nil {
		return time.Time{}, nil, []ValidationError{{Field: "startsAt", Message: "Use RFC3339, e.g. 2026-01-15T09:00:00-03:00"}}
	}
	if endsAt == nil || *endsAt == "" {
		return start, nil, nil
	}
	end, err := time.Parse(time.RFC3339, *endsAt)
	if err != nil {
		return time.Time{}, nil, []ValidationError{{Field: "endsAt", Message: "Use RFC3339"}}
	}
	return start, &end, nil
}

// CreateAppointment godoc
// @Summary Create an appointment
// @Description Fails with 409 when the slot overlaps another appointment and 422 when the monthly limit is reached
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAppointmentRequest true "Appointment"
// @Success 201 {object} AppointmentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Router /appointments [post]
func (h *AgendaHandler) CreateAppointment(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}

	var req CreateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	start, end, verrs := parseInterval(req.StartsAt, req.EndsAt)
	if verrs != nil {
		return NewValidationError(c, "Validation failed", verrs)
	}

	price := decimal.Zero
	if req.Price != "" {
		p, err := decimal.NewFromString(req.Price)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: "price", Message: "Invalid decimal"}})
		}
		price = p
	}

	appt, err := h.agendaService.CreateAppointment(clinicID, service.CreateAppointmentInput{
		PatientID: req.PatientID,
		StartsAt:  start,
		EndsAt:    end,
		Price:     price,
		Notes:     req.Notes,
		Source:    domain.AppointmentSourceAgenda,
	})
	if err != nil {
		return handleServiceError(c, err, "create appointment")
	}
	return c.JSON(http.StatusCreated, toAppointmentResponse(appt))
}

// GetAppointment godoc
// @Summary Get an appointment
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} AppointmentResponse
// @Failure 404 {object} ProblemDetails
// @Router /appointments/{id} [get]
func (h *AgendaHandler) GetAppointment(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid appointment ID", nil)
	}

	appt, err := h.agendaService.GetAppointment(clinicID, id)
	if err != nil {
		return handleServiceError(c, err, "get appointment")
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

// GetDay godoc
// @Summary List a day's appointments
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {array} AppointmentResponse
// @Failure 400 {object} ProblemDetails
// @Router /appointments [get]
func (h *AgendaHandler) GetDay(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}

	date, err := time.Parse(dateLayout, c.QueryParam("date"))
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "date", Message: "Use YYYY-MM-DD"}})
	}

	appts, err := h.agendaService.GetDay(clinicID, date)
	if err != nil {
		return handleServiceError(c, err, "list appointments")
	}
	return c.JSON(http.StatusOK, toAppointmentResponses(appts))
}

// GetMonth godoc
// @Summary List a month's appointments
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {array} AppointmentResponse
// @Failure 400 {object} ProblemDetails
// @Router /appointments/month/{year}/{month} [get]
func (h *AgendaHandler) GetMonth(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	year, month, ok := parseYearMonthParams(c)
	if !ok {
		return NewValidationError(c, "Invalid year or month", nil)
	}

	appts, err := h.agendaService.GetMonth(clinicID, year, month)
	if err != nil {
		return handleServiceError(c, err, "list appointments")
	}
	return c.JSON(http.StatusOK, toAppointmentResponses(appts))
}

// UpdateStatus godoc
// @Summary Change an appointment's status
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} AppointmentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /appointments/{id}/status [patch]
func (h *AgendaHandler) UpdateStatus(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid appointment ID", nil)
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	appt, err := h.agendaService.UpdateStatus(clinicID, id, domain.AppointmentStatus(req.Status))
	if err != nil {
		return handleServiceError(c, err, "update appointment status")
	}

	log.Info().
		Int32("clinic_id", clinicID).
		Int32("appointment_id", id).
		Str("status", req.Status).
		Msg("Appointment status changed")

	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

// Reschedule godoc
// @Summary Move an appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param request body RescheduleRequest true "New interval"
// @Success 200 {object} AppointmentResponse
// @Failure 409 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Router /appointments/{id}/reschedule [patch]
func (h *AgendaHandler) Reschedule(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid appointment ID", nil)
	}

	var req RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	start, end, verrs := parseInterval(req.StartsAt, req.EndsAt)
	if verrs != nil {
		return NewValidationError(c, "Validation failed", verrs)
	}

	appt, err := h.agendaService.Reschedule(clinicID, id, start, end)
	if err != nil {
		return handleServiceError(c, err, "reschedule appointment")
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

// Cancel godoc
// @Summary Cancel an appointment
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} AppointmentResponse
// @Failure 409 {object} ProblemDetails
// @Router /appointments/{id}/cancel [post]
func (h *AgendaHandler) Cancel(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid appointment ID", nil)
	}

	appt, err := h.agendaService.Cancel(clinicID, id)
	if err != nil {
		return handleServiceError(c, err, "cancel appointment")
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

// GetLimitUsage godoc
// @Summary Monthly appointment quota usage
// @Description Defaults to the current month
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Success 200 {object} domain.LimitUsage
// @Failure 400 {object} ProblemDetails
// @Router /appointments/limit-usage [get]
func (h *AgendaHandler) GetLimitUsage(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}

	year, month, verrs := parseOptionalYearMonth(c)
	if verrs != nil {
		return NewValidationError(c, "Validation failed", verrs)
	}

	usage, err := h.agendaService.GetLimitUsage(clinicID, year, month)
	if err != nil {
		return handleServiceError(c, err, "get limit usage")
	}
	return c.JSON(http.StatusOK, usage)
}

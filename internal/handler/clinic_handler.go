package handler

import (
	"net/http"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/middleware"
	"github.com/dafibh/clinica/clinica-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ClinicHandler handles clinic settings requests
type ClinicHandler struct {
	clinicService *service.ClinicService
}

// NewClinicHandler creates a new ClinicHandler
func NewClinicHandler(clinicService *service.ClinicService) *ClinicHandler {
	return &ClinicHandler{clinicService: clinicService}
}

// ClinicResponse represents a clinic in API responses
type ClinicResponse struct {
	ID                      int32  `json:"id"`
	Name                    string `json:"name"`
	PublicSlug              string `json:"publicSlug"`
	SlotMinutes             int    `json:"slotMinutes"`
	OpensAt                 string `json:"opensAt"`
	ClosesAt                string `json:"closesAt"`
	Timezone                string `json:"timezone"`
	MonthlyAppointmentLimit int    `json:"monthlyAppointmentLimit"`
}

func toClinicResponse(c *domain.Clinic) ClinicResponse {
	if c == nil {
		return ClinicResponse{}
	}
	return ClinicResponse{
		ID:                      c.ID,
		Name:                    c.Name,
		PublicSlug:              c.PublicSlug,
		SlotMinutes:             c.SlotMinutes,
		OpensAt:                 c.OpensAt,
		ClosesAt:                c.ClosesAt,
		Timezone:                c.Timezone,
		MonthlyAppointmentLimit: c.MonthlyAppointmentLimit,
	}
}

// UpdateClinicRequest represents the clinic settings update body
type UpdateClinicRequest = service.UpdateClinicInput

// GetClinic godoc
// @Summary Get clinic settings
// @Tags clinic
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ClinicResponse
// @Failure 401 {object} ProblemDetails
// @Router /clinic [get]
func (h *ClinicHandler) GetClinic(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}

	clinic, err := h.clinicService.GetClinic(clinicID)
	if err != nil {
		return handleServiceError(c, err, "get clinic")
	}
	return c.JSON(http.StatusOK, toClinicResponse(clinic))
}

// UpdateClinic godoc
// @Summary Update clinic settings
// @Description Updates name, public slug, opening hours, slot size, timezone and plan limit
// @Tags clinic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateClinicRequest true "Clinic settings"
// @Success 200 {object} ClinicResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /clinic [put]
func (h *ClinicHandler) UpdateClinic(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}

	var req UpdateClinicRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	clinic, err := h.clinicService.UpdateSettings(clinicID, req)
	if err != nil {
		return handleServiceError(c, err, "update clinic")
	}

	log.Info().Int32("clinic_id", clinicID).Str("slug", clinic.PublicSlug).Msg("Clinic settings updated")
	return c.JSON(http.StatusOK, toClinicResponse(clinic))
}

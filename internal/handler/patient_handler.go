package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/middleware"
	"github.com/dafibh/clinica/clinica-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// PatientHandler handles patient-related HTTP requests
type PatientHandler struct {
	patientService *service.PatientService
}

// NewPatientHandler creates a new PatientHandler
func NewPatientHandler(patientService *service.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// PatientRequest represents the create/update patient body
type PatientRequest struct {
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"` // YYYY-MM-DD
	Notes     *string `json:"notes,omitempty"`
}

// PatientResponse represents a patient in API responses
type PatientResponse struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email,omitempty"`
	BirthDate *string   `json:"birthDate,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPatientResponse(p *domain.Patient) PatientResponse {
	resp := PatientResponse{
		ID:        p.ID,
		Name:      p.Name,
		Phone:     p.Phone,
		Email:     p.Email,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
	}
	if p.BirthDate != nil {
		s := p.BirthDate.Format(dateLayout)
		resp.BirthDate = &s
	}
	return resp
}

func (r PatientRequest) toInput() (service.PatientInput, []ValidationError) {
	input := service.PatientInput{
		Name:  r.Name,
		Phone: r.Phone,
		Email: r.Email,
		Notes: r.Notes,
	}
	if r.BirthDate != nil && *r.BirthDate != "" {
		d, err := time.Parse(dateLayout, *r.BirthDate)
		if err != nil {
			return input, []ValidationError{{Field: "birthDate", Message: "Use YYYY-MM-DD"}}
		}
		input.BirthDate = &d
	}
	return input, nil
}

// CreatePatient godoc
// @Summary Create a patient
// @Tags patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PatientRequest true "Patient"
// @Success 201 {object} PatientResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /patients [post]
func (h *PatientHandler) CreatePatient(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}

	var req PatientRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, verrs := req.toInput()
	if verrs != nil {
		return NewValidationError(c, "Validation failed", verrs)
	}

	patient, err := h.patientService.CreatePatient(clinicID, input)
	if err != nil {
		return handleServiceError(c, err, "create patient")
	}
	return c.JSON(http.StatusCreated, toPatientResponse(patient))
}

// GetPatients godoc
// @Summary List patients
// @Tags patients
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or phone fragment"
// @Success 200 {array} PatientResponse
// @Router /patients [get]
func (h *PatientHandler) GetPatients(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}

	patients, err := h.patientService.ListPatients(clinicID, c.QueryParam("search"))
	if err != nil {
		return handleServiceError(c, err, "list patients")
	}

	resp := make([]PatientResponse, 0, len(patients))
	for _, p := range patients {
		resp = append(resp, toPatientResponse(p))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPatient godoc
// @Summary Get a patient
// @Tags patients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patient ID"
// @Success 200 {object} PatientResponse
// @Failure 404 {object} ProblemDetails
// @Router /patients/{id} [get]
func (h *PatientHandler) GetPatient(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid patient ID", nil)
	}

	patient, err := h.patientService.GetPatient(clinicID, id)
	if err != nil {
		return handleServiceError(c, err, "get patient")
	}
	return c.JSON(http.StatusOK, toPatientResponse(patient))
}

// UpdatePatient godoc
// @Summary Update a patient
// @Tags patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patient ID"
// @Param request body PatientRequest true "Patient"
// @Success 200 {object} PatientResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /patients/{id} [put]
func (h *PatientHandler) UpdatePatient(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid patient ID", nil)
	}

	var req PatientRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, verrs := req.toInput()
	if verrs != nil {
		return NewValidationError(c, "Validation failed", verrs)
	}

	patient, err := h.patientService.UpdatePatient(clinicID, id, input)
	if err != nil {
		return handleServiceError(c, err, "update patient")
	}
	return c.JSON(http.StatusOK, toPatientResponse(patient))
}

// DeletePatient godoc
// @Summary Delete a patient
// @Tags patients
// @Security BearerAuth
// @Param id path int true "Patient ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /patients/{id} [delete]
func (h *PatientHandler) DeletePatient(c echo.Context) error {
	clinicID := middleware.GetClinicID(c)
	if err := requireClinic(c, clinicID); err != nil {
		return err
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid patient ID", nil)
	}

	if err := h.patientService.DeletePatient(clinicID, id); err != nil {
		return handleServiceError(c, err, "delete patient")
	}
	return c.NoContent(http.StatusNoContent)
}

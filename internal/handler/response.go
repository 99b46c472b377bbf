package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation         = "https://clinica.app/errors/validation"
	ErrorTypeNotFound           = "https://clinica.app/errors/not-found"
	ErrorTypeUnauthorized       = "https://clinica.app/errors/unauthorized"
	ErrorTypeForbidden          = "https://clinica.app/errors/forbidden"
	ErrorTypeConflict           = "https://clinica.app/errors/conflict"
	ErrorTypeLimitReached       = "https://clinica.app/errors/limit-reached"
	ErrorTypeServiceUnavailable = "https://clinica.app/errors/service-unavailable"
	ErrorTypeInternal           = "https://clinica.app/errors/internal"
)

func problem(c echo.Context, status int, typ, title, detail string) error {
	return c.JSON(status, ProblemDetails{
		Type:     typ,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail)
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail)
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return problem(c, http.StatusForbidden, ErrorTypeForbidden, "Forbidden", detail)
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return problem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", detail)
}

// NewLimitReachedError is returned when the clinic plan's monthly quota is used up
func NewLimitReachedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnprocessableEntity, ErrorTypeLimitReached, "Monthly Limit Reached", detail)
}

// NewServiceUnavailableError is returned when an optional backend is not configured
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return problem(c, http.StatusServiceUnavailable, ErrorTypeServiceUnavailable, "Service Unavailable", detail)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail)
}

// handleServiceError maps domain errors to problem responses
func handleServiceError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "name", Message: "Name is required"}})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "name", Message: "Name is too long"}})
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrClinicNotFound):
		return NewNotFoundError(c, "Clinic not found")
	case errors.Is(err, domain.ErrPatientNotFound):
		return NewNotFoundError(c, "Patient not found")
	case errors.Is(err, domain.ErrAppointmentNotFound):
		return NewNotFoundError(c, "Appointment not found")
	case errors.Is(err, domain.ErrExpenseNotFound):
		return NewNotFoundError(c, "Expense not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return NewNotFoundError(c, "User not found")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Resource not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		return NewConflictError(c, err.Error())
	case errors.Is(err, domain.ErrSlotUnavailable):
		return NewConflictError(c, "Time slot is not available")
	case errors.Is(err, domain.ErrInvalidTransition):
		return NewConflictError(c, "Status change not allowed")
	case errors.Is(err, domain.ErrMonthlyLimitReached):
		return NewLimitReachedError(c, "Monthly appointment limit reached for this month")
	case errors.Is(err, domain.ErrInvalidSignature), errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorizedError(c, "Invalid signature")
	case errors.Is(err, domain.ErrForbidden):
		return NewForbiddenError(c, "Access denied")
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}

// requireClinic returns the clinic injected by the auth middleware or writes a 401
func requireClinic(c echo.Context, clinicID int32) error {
	if clinicID == 0 {
		return NewUnauthorizedError(c, "Clinic required")
	}
	return nil
}

// parseIDParam parses a positive int32 path parameter
func parseIDParam(c echo.Context, name string) (int32, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || v <= 0 {
		return 0, false
	}
	return int32(v), true
}

// parseYearMonthParams parses :year and :month path parameters; range checks live in the services
func parseYearMonthParams(c echo.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return 0, 0, false
	}
	return year, month, true
}

// dateLayout is the query format for calendar days
const dateLayout = "2006-01-02"

// parseOptionalYearMonth reads ?year=&month=, defaulting each to the current month
func parseOptionalYearMonth(c echo.Context) (int, int, []ValidationError) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if yearStr := c.QueryParam("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			return 0, 0, []ValidationError{{Field: "year", Message: "Must be a valid integer"}}
		}
		year = parsed
	}
	if monthStr := c.QueryParam("month"); monthStr != "" {
		parsed, err := strconv.Atoi(monthStr)
		if err != nil {
			return 0, 0, []ValidationError{{Field: "month", Message: "Must be a valid integer"}}
		}
		month = parsed
	}
	return year, month, nil
}

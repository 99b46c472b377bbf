package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInternalError       = errors.New("internal error")
	ErrUserNotFound        = errors.New("user not found")
	ErrClinicNotFound      = errors.New("clinic not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrSlotUnavailable     = errors.New("time slot is not available")
	ErrMonthlyLimitReached = errors.New("monthly appointment limit reached")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrDuplicateEvent      = errors.New("event already processed")
	ErrInvalidSignature    = errors.New("invalid signature")
)

// Validation constants
const (
	MaxNameLength  = 255
	MaxNotesLength = 1000
	MaxPhoneLength = 32
)

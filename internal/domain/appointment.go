package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// IsValid reports whether s is a known status
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// IsActive reports whether an appointment in this status occupies its slot
// and counts toward the monthly limit
func (s AppointmentStatus) IsActive() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusCompleted:
		return true
	}
	return false
}

// allowedTransitions lists the statuses reachable from each status
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
}

// CanTransitionTo reports whether the status may change to next
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ActiveAppointmentStatuses is used to filter slot occupancy and limit counts
var ActiveAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
	AppointmentStatusCompleted,
}

type AppointmentSource string

const (
	AppointmentSourceAgenda AppointmentSource = "agenda"
	AppointmentSourcePublic AppointmentSource = "public"
)

type Appointment struct {
	ID                int32             `json:"id"`
	ClinicID          int32             `json:"clinicId"`
	PatientID         int32             `json:"patientId"`
	StartsAt          time.Time         `json:"startsAt"`
	EndsAt            time.Time         `json:"endsAt"`
	Status            AppointmentStatus `json:"status"`
	Source            AppointmentSource `json:"source"`
	Price             decimal.Decimal   `json:"price"`
	IsPaid            bool              `json:"isPaid"`
	PaymentReference  *string           `json:"paymentReference,omitempty"`
	ConfirmationToken *uuid.UUID        `json:"confirmationToken,omitempty"`
	Notes             *string           `json:"notes,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Overlaps reports whether [start, end) intersects the appointment
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return start.Before(a.EndsAt) && a.StartsAt.Before(end)
}

// AppointmentStats aggregates a clinic's appointments over a date range
type AppointmentStats struct {
	Total       int             `json:"total"`
	Scheduled   int             `json:"scheduled"`
	Confirmed   int             `json:"confirmed"`
	Completed   int             `json:"completed"`
	Cancelled   int             `json:"cancelled"`
	NoShow      int             `json:"noShow"`
	PaidRevenue decimal.Decimal `json:"paidRevenue"`
	Receivable  decimal.Decimal `json:"receivable"`
}

// LimitUsage reports how much of the monthly appointment limit is used
type LimitUsage struct {
	Year      int  `json:"year"`
	Month     int  `json:"month"`
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
	Unlimited bool `json:"unlimited"`
}

type AppointmentRepository interface {
	Create(appointment *Appointment) (*Appointment, error)
	GetByID(clinicID, id int32) (*Appointment, error)
	GetByRange(clinicID int32, start, end time.Time) ([]*Appointment, error)
	CountActiveByRange(clinicID int32, start, end time.Time) (int, error)
	GetStatsByRange(clinicID int32, start, end time.Time) (*AppointmentStats, error)
	Update(appointment *Appointment) (*Appointment, error)
	MarkPaid(clinicID, id int32, reference string) (*Appointment, error)
}

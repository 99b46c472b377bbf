package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records a settled charge reported by the payments provider
type Payment struct {
	ID            int32           `json:"id"`
	ClinicID      int32           `json:"clinicId"`
	AppointmentID int32           `json:"appointmentId"`
	ProviderID    string          `json:"providerId"`
	EventID       string          `json:"eventId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaidAt        time.Time       `json:"paidAt"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type PaymentRepository interface {
	// CreateAndMarkPaid stores the payment and flags its appointment paid
	// atomically; neither write survives if the other fails.
	CreateAndMarkPaid(payment *Payment, reference string) (*Payment, *Appointment, error)
	GetByEventID(eventID string) (*Payment, error)
	GetByAppointment(clinicID, appointmentID int32) ([]*Payment, error)
}

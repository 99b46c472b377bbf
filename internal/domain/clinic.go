package domain

import (
	"time"

	"github.com/google/uuid"
)

// Default clinic settings applied on first login
const (
	DefaultSlotMinutes             = 30
	DefaultOpensAt                 = "08:00"
	DefaultClosesAt                = "18:00"
	DefaultTimezone                = "America/Sao_Paulo"
	DefaultMonthlyAppointmentLimit = 100
)

// Slot duration bounds
const (
	MinSlotMinutes = 5
	MaxSlotMinutes = 480
)

// ClockFormat is the HH:MM layout used for opening hours
const ClockFormat = "15:04"

// Clinic is the tenant that owns patients, agenda and finances
type Clinic struct {
	ID          int32     `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Name        string    `json:"name"`
	PublicSlug  string    `json:"publicSlug"`
	SlotMinutes int       `json:"slotMinutes"`
	OpensAt     string    `json:"opensAt"`
	ClosesAt    string    `json:"closesAt"`
	Timezone    string    `json:"timezone"`
	// MonthlyAppointmentLimit caps active appointments per calendar month; 0 means unlimited
	MonthlyAppointmentLimit int       `json:"monthlyAppointmentLimit"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// Location resolves the clinic timezone, falling back to UTC
func (c *Clinic) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ClinicRepository defines the interface for clinic persistence operations
type ClinicRepository interface {
	GetByID(id int32) (*Clinic, error)
	GetByOwnerID(ownerID uuid.UUID) (*Clinic, error)
	GetByOwnerAuth0ID(auth0ID string) (*Clinic, error)
	GetBySlug(slug string) (*Clinic, error)
	Create(clinic *Clinic) (*Clinic, error)
	Update(clinic *Clinic) (*Clinic, error)
}

package service

import (
	"errors"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/notify"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxBookingHorizon limits how far ahead the public page can book
const maxBookingHorizon = 90 * 24 * time.Hour

// PublicClinic is the clinic view exposed on the booking page
type PublicClinic struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	SlotMinutes int    `json:"slotMinutes"`
	OpensAt     string `json:"opensAt"`
	ClosesAt    string `json:"closesAt"`
	Timezone    string `json:"timezone"`
}

// Slot is a bookable interval
type Slot struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

// BookingInput is what a patient submits on the booking page
type BookingInput struct {
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Email    *string   `json:"email,omitempty"`
	StartsAt time.Time `json:"startsAt"`
	Notes    *string   `json:"notes,omitempty"`
}

// BookingResult is returned to the patient after a successful booking
type BookingResult struct {
	AppointmentID     int32     `json:"appointmentId"`
	ConfirmationToken uuid.UUID `json:"confirmationToken"`
	StartsAt          time.Time `json:"startsAt"`
	EndsAt            time.Time `json:"endsAt"`
	ClinicName        string    `json:"clinicName"`
}

// PublicSchedulingService serves the unauthenticated booking page
type PublicSchedulingService struct {
	clinicRepo      domain.ClinicRepository
	appointmentRepo domain.AppointmentRepository
	patients        *PatientService
	agenda          *AgendaService
	now             func() time.Time
}

// NewPublicSchedulingService creates a new PublicSchedulingService
func NewPublicSchedulingService(
	clinicRepo domain.ClinicRepository,
	appointmentRepo domain.AppointmentRepository,
	patients *PatientService,
	agenda *AgendaService,
) *PublicSchedulingService {
	return &PublicSchedulingService{
		clinicRepo:      clinicRepo,
		appointmentRepo: appointmentRepo,
		patients:        patients,
		agenda:          agenda,
		now:             time.Now,
	}
}

// GetClinic returns the public view of a clinic
func (s *PublicSchedulingService) GetClinic(slug string) (*PublicClinic, error) {
	clinic, err := s.clinicRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	return &PublicClinic{
		Name:        clinic.Name,
		Slug:        clinic.PublicSlug,
		SlotMinutes: clinic.SlotMinutes,
		OpensAt:     clinic.OpensAt,
		ClosesAt:    clinic.ClosesAt,
		Timezone:    clinic.Timezone,
	}, nil
}

// AvailableSlots lists the free slots on date's calendar day, read as a day in the clinic timezone
func (s *PublicSchedulingService) AvailableSlots(slug string, date time.Time) ([]Slot, error) {
	clinic, err := s.clinicRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.availableSlots(clinic, date)
}

func (s *PublicSchedulingService) availableSlots(clinic *domain.Clinic, date time.Time) ([]Slot, error) {
	now := s.now()
	if date.After(now.Add(maxBookingHorizon)) {
		return []Slot{}, nil
	}

	loc := clinic.Location()
	open, closeAt, err := openingHours(clinic, date)
	if err != nil {
		return nil, err
	}

	// a full month offers nothing
	usage, err := s.agenda.GetLimitUsage(clinic.ID, open.Year(), int(open.Month()))
	if err != nil {
		return nil, err
	}
	if !usage.Unlimited && usage.Remaining == 0 {
		return []Slot{}, nil
	}

	dayStart, dayEnd := dayRange(open, loc)
	booked, err := s.appointmentRepo.GetByRange(clinic.ID, dayStart.Add(-MaxAppointmentDuration), dayEnd)
	if err != nil {
		return nil, err
	}
	var busy []*domain.Appointment
	for _, a := range booked {
		if a.Status.IsActive() {
			busy = append(busy, a)
		}
	}

	step := time.Duration(clinic.SlotMinutes) * time.Minute
	slots := []Slot{}
	for t := open; !t.Add(step).After(closeAt); t = t.Add(step) {
		if !t.After(now) {
			continue
		}
		end := t.Add(step)
		if overlapsAny(busy, t, end) {
			continue
		}
		slots = append(slots, Slot{StartsAt: t, EndsAt: end})
	}
	return slots, nil
}

// openingHours returns the clinic's open and close instants on date's day
func openingHours(clinic *domain.Clinic, date time.Time) (time.Time, time.Time, error) {
	opens, err := time.Parse(domain.ClockFormat, clinic.OpensAt)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidInput
	}
	closes, err := time.Parse(domain.ClockFormat, clinic.ClosesAt)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidInput
	}
	if clinic.SlotMinutes <= 0 {
		return time.Time{}, time.Time{}, domain.ErrInvalidInput
	}

	loc := clinic.Location()
	y, m, d := date.Date()
	open := time.Date(y, m, d, opens.Hour(), opens.Minute(), 0, 0, loc)
	closeAt := time.Date(y, m, d, closes.Hour(), closes.Minute(), 0, 0, loc)
	return open, closeAt, nil
}

func overlapsAny(busy []*domain.Appointment, start, end time.Time) bool {
	for _, a := range busy {
		if a.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// Book reserves one of the offered slots for a patient identified by phone
func (s *PublicSchedulingService) Book(slug string, input BookingInput) (*BookingResult, error) {
	clinic, err := s.clinicRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}

	slots, err := s.availableSlots(clinic, input.StartsAt.In(clinic.Location()))
	if err != nil {
		return nil, err
	}
	var chosen *Slot
	for i := range slots {
		if slots[i].StartsAt.Equal(input.StartsAt) {
			chosen = &slots[i]
			break
		}
	}
	if chosen == nil {
		return nil, domain.ErrSlotUnavailable
	}

	patient, isNew, err := s.patients.FindOrCreateByPhone(clinic.ID, PatientInput{
		Name:  input.Name,
		Phone: input.Phone,
		Email: input.Email,
	})
	if err != nil {
		return nil, err
	}

	token := uuid.New()
	appt, err := s.agenda.CreateAppointment(clinic.ID, CreateAppointmentInput{
		PatientID:         patient.ID,
		StartsAt:          chosen.StartsAt,
		EndsAt:            &chosen.EndsAt,
		Notes:             input.Notes,
		Source:            domain.AppointmentSourcePublic,
		ConfirmationToken: &token,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMonthlyLimitReached) {
			log.Info().Int32("clinic_id", clinic.ID).Msg("Public booking rejected by monthly limit")
		}
		return nil, err
	}

	log.Info().
		Int32("clinic_id", clinic.ID).
		Int32("appointment_id", appt.ID).
		Bool("new_patient", isNew).
		Msg("Public booking created")

	s.agenda.notifyPatient(notify.KindBookingConfirmed, appt)

	return &BookingResult{
		AppointmentID:     appt.ID,
		ConfirmationToken: token,
		StartsAt:          appt.StartsAt,
		EndsAt:            appt.EndsAt,
		ClinicName:        clinic.Name,
	}, nil
}

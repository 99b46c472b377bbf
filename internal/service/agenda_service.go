package service

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/notify"
	"github.com/dafibh/clinica/clinica-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MaxAppointmentDuration bounds a single appointment
const MaxAppointmentDuration = 24 * time.Hour

// AgendaService handles appointment scheduling
type AgendaService struct {
	appointmentRepo domain.AppointmentRepository
	patientRepo     domain.PatientRepository
	clinicRepo      domain.ClinicRepository
	publisher       websocket.EventPublisher
	notifier        notify.Notifier

	// serializes the limit/overlap checks with the insert
	bookingMu sync.Mutex
}

// NewAgendaService creates a new AgendaService
func NewAgendaService(
	appointmentRepo domain.AppointmentRepository,
	patientRepo domain.PatientRepository,
	clinicRepo domain.ClinicRepository,
) *AgendaService {
	return &AgendaService{
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		clinicRepo:      clinicRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *AgendaService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.publisher = publisher
}

// SetNotifier sets the patient notification publisher
func (s *AgendaService) SetNotifier(notifier notify.Notifier) {
	s.notifier = notifier
}

func (s *AgendaService) publishEvent(clinicID int32, event websocket.Event) {
	if s.publisher != nil {
		s.publisher.Publish(clinicID, event)
	}
}

// notifyPatient is best effort; failures are logged only
func (s *AgendaService) notifyPatient(kind notify.Kind, appt *domain.Appointment) {
	if s.notifier == nil {
		return
	}
	msg := &notify.AppointmentMessage{
		Kind:          kind,
		ClinicID:      appt.ClinicID,
		AppointmentID: appt.ID,
		StartsAt:      appt.StartsAt,
	}
	if patient, err := s.patientRepo.GetByID(appt.ClinicID, appt.PatientID); err == nil {
		msg.PatientName = patient.Name
		msg.PatientPhone = patient.Phone
	}
	if err := s.notifier.NotifyAppointment(context.Background(), msg); err != nil {
		log.Warn().Err(err).
			Int32("clinic_id", appt.ClinicID).
			Int32("appointment_id", appt.ID).
			Str("kind", string(kind)).
			Msg("Failed to publish appointment notification")
	}
}

// CreateAppointmentInput holds the data for a new appointment
type CreateAppointmentInput struct {
	PatientID int32                    `json:"patientId"`
	StartsAt  time.Time                `json:"startsAt"`
	EndsAt    *time.Time               `json:"endsAt,omitempty"` // defaults to one clinic slot
	Price     decimal.Decimal          `json:"price"`
	Notes     *string                  `json:"notes,omitempty"`
	Source    domain.AppointmentSource `json:"-"`
	// ConfirmationToken is set for public bookings
	ConfirmationToken *uuid.UUID `json:"-"`
}

// CreateAppointment books an appointment after checking the patient, the slot
// and the clinic's monthly limit
func (s *AgendaService) CreateAppointment(clinicID int32, input CreateAppointmentInput) (*domain.Appointment, error) {
	clinic, err := s.clinicRepo.GetByID(clinicID)
	if err != nil {
		return nil, err
	}
	if _, err := s.patientRepo.GetByID(clinicID, input.PatientID); err != nil {
		return nil, err
	}

	start := input.StartsAt
	end := start.Add(time.Duration(clinic.SlotMinutes) * time.Minute)
	if input.EndsAt != nil {
		end = *input.EndsAt
	}
	if err := validateInterval(start, end); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	notes, err := validateNotes(input.Notes)
	if err != nil {
		return nil, err
	}
	source := input.Source
	if source == "" {
		source = domain.AppointmentSourceAgenda
	}

	s.bookingMu.Lock()
	defer s.bookingMu.Unlock()

	if err := s.checkMonthlyLimit(clinic, start); err != nil {
		return nil, err
	}
	if err := s.checkSlotFree(clinicID, start, end, 0); err != nil {
		return nil, err
	}

	appt := &domain.Appointment{
		ClinicID:          clinicID,
		PatientID:         input.PatientID,
		StartsAt:          start,
		EndsAt:            end,
		Status:            domain.AppointmentStatusScheduled,
		Source:            source,
		Price:             input.Price,
		ConfirmationToken: input.ConfirmationToken,
		Notes:             notes,
	}
	created, err := s.appointmentRepo.Create(appt)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int32("clinic_id", clinicID).
		Int32("appointment_id", created.ID).
		Str("source", string(source)).
		Msg("Appointment created")
	s.publishEvent(clinicID, websocket.AppointmentCreated(created))
	return created, nil
}

func validateInterval(start, end time.Time) error {
	if start.IsZero() || !end.After(start) {
		return domain.ErrInvalidInput
	}
	if end.Sub(start) > MaxAppointmentDuration {
		return domain.ErrInvalidInput
	}
	return nil
}

// checkMonthlyLimit rejects a booking once the month holds limit active appointments
func (s *AgendaService) checkMonthlyLimit(clinic *domain.Clinic, start time.Time) error {
	if clinic.MonthlyAppointmentLimit <= 0 {
		return nil
	}
	monthStart, monthEnd, err := monthRange(yearMonthOf(start, clinic.Location()), clinic.Location())
	if err != nil {
		return err
	}
	count, err := s.appointmentRepo.CountActiveByRange(clinic.ID, monthStart, monthEnd)
	if err != nil {
		return err
	}
	if count >= clinic.MonthlyAppointmentLimit {
		log.Info().
			Int32("clinic_id", clinic.ID).
			Int("count", count).
			Int("limit", clinic.MonthlyAppointmentLimit).
			Msg("Monthly appointment limit reached")
		return domain.ErrMonthlyLimitReached
	}
	return nil
}

// checkSlotFree rejects [start, end) when it overlaps another active appointment
func (s *AgendaService) checkSlotFree(clinicID int32, start, end time.Time, excludeID int32) error {
	candidates, err := s.appointmentRepo.GetByRange(clinicID, start.Add(-MaxAppointmentDuration), end)
	if err != nil {
		return err
	}
	for _, a := range candidates {
		if a.ID == excludeID || !a.Status.IsActive() {
			continue
		}
		if a.Overlaps(start, end) {
			return domain.ErrSlotUnavailable
		}
	}
	return nil
}

// GetAppointment retrieves an appointment
func (s *AgendaService) GetAppointment(clinicID, id int32) (*domain.Appointment, error) {
	return s.appointmentRepo.GetByID(clinicID, id)
}

// GetDay lists appointments on date's calendar day in the clinic timezone
func (s *AgendaService) GetDay(clinicID int32, date time.Time) ([]*domain.Appointment, error) {
	clinic, err := s.clinicRepo.GetByID(clinicID)
	if err != nil {
		return nil, err
	}
	start, end := dayRange(date, clinic.Location())
	return s.appointmentRepo.GetByRange(clinicID, start, end)
}

// GetMonth lists appointments in a calendar month in the clinic timezone
func (s *AgendaService) GetMonth(clinicID int32, year, month int) ([]*domain.Appointment, error) {
	ym, err := validateYearMonth(year, month)
	if err != nil {
		return nil, err
	}
	clinic, err := s.clinicRepo.GetByID(clinicID)
	if err != nil {
		return nil, err
	}
	start, end, err := monthRange(ym, clinic.Location())
	if err != nil {
		return nil, err
	}
	return s.appointmentRepo.GetByRange(clinicID, start, end)
}

// UpdateStatus moves an appointment along its lifecycle
func (s *AgendaService) UpdateStatus(clinicID, id int32, status domain.AppointmentStatus) (*domain.Appointment, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	appt, err := s.appointmentRepo.GetByID(clinicID, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status.CanTransitionTo(status) {
		return nil, domain.ErrInvalidTransition
	}

	appt.Status = status
	updated, err := s.appointmentRepo.Update(appt)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int32("clinic_id", clinicID).
		Int32("appointment_id", id).
		Str("status", string(status)).
		Msg("Appointment status updated")

	if status == domain.AppointmentStatusCancelled {
		s.publishEvent(clinicID, websocket.AppointmentCancelled(updated))
		s.notifyPatient(notify.KindCancelled, updated)
	} else {
		s.publishEvent(clinicID, websocket.AppointmentUpdated(updated))
	}
	return updated, nil
}

// Cancel cancels an appointment
func (s *AgendaService) Cancel(clinicID, id int32) (*domain.Appointment, error) {
	return s.UpdateStatus(clinicID, id, domain.AppointmentStatusCancelled)
}

// Reschedule moves a scheduled or confirmed appointment to a new interval
func (s *AgendaService) Reschedule(clinicID, id int32, startsAt time.Time, endsAt *time.Time) (*domain.Appointment, error) {
	clinic, err := s.clinicRepo.GetByID(clinicID)
	if err != nil {
		return nil, err
	}
	appt, err := s.appointmentRepo.GetByID(clinicID, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != domain.AppointmentStatusScheduled && appt.Status != domain.AppointmentStatusConfirmed {
		return nil, domain.ErrInvalidTransition
	}

	end := startsAt.Add(appt.EndsAt.Sub(appt.StartsAt))
	if endsAt != nil {
		end = *endsAt
	}
	if err := validateInterval(startsAt, end); err != nil {
		return nil, err
	}

	s.bookingMu.Lock()
	defer s.bookingMu.Unlock()

	loc := clinic.Location()
	// moving into another month takes a slot of that month's quota
	if yearMonthOf(startsAt, loc) != yearMonthOf(appt.StartsAt, loc) {
		if err := s.checkMonthlyLimit(clinic, startsAt); err != nil {
			return nil, err
		}
	}
	if err := s.checkSlotFree(clinicID, startsAt, end, id); err != nil {
		return nil, err
	}

	appt.StartsAt = startsAt
	appt.EndsAt = end
	updated, err := s.appointmentRepo.Update(appt)
	if err != nil {
		return nil, err
	}

	log.Info().Int32("clinic_id", clinicID).Int32("appointment_id", id).Msg("Appointment rescheduled")
	s.publishEvent(clinicID, websocket.AppointmentRescheduled(updated))
	s.notifyPatient(notify.KindRescheduled, updated)
	return updated, nil
}

// GetLimitUsage reports how much of the monthly quota is used
func (s *AgendaService) GetLimitUsage(clinicID int32, year, month int) (*domain.LimitUsage, error) {
	ym, err := validateYearMonth(year, month)
	if err != nil {
		return nil, err
	}
	clinic, err := s.clinicRepo.GetByID(clinicID)
	if err != nil {
		return nil, err
	}
	start, end, err := monthRange(ym, clinic.Location())
	if err != nil {
		return nil, err
	}
	used, err := s.appointmentRepo.CountActiveByRange(clinicID, start, end)
	if err != nil {
		return nil, err
	}
	return limitUsage(clinic, year, month, used), nil
}

func limitUsage(clinic *domain.Clinic, year, month, used int) *domain.LimitUsage {
	usage := &domain.LimitUsage{
		Year:  year,
		Month: month,
		Used:  used,
		Limit: clinic.MonthlyAppointmentLimit,
	}
	if clinic.MonthlyAppointmentLimit <= 0 {
		usage.Unlimited = true
		return usage
	}
	usage.Remaining = clinic.MonthlyAppointmentLimit - used
	if usage.Remaining < 0 {
		usage.Remaining = 0
	}
	return usage
}

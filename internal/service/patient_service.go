package service

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// PatientService handles patient records
type PatientService struct {
	patientRepo domain.PatientRepository
	publisher   websocket.EventPublisher
}

// NewPatientService creates a new PatientService
func NewPatientService(patientRepo domain.PatientRepository) *PatientService {
	return &PatientService{patientRepo: patientRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PatientService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.publisher = publisher
}

func (s *PatientService) publishEvent(clinicID int32, event websocket.Event) {
	if s.publisher != nil {
		s.publisher.Publish(clinicID, event)
	}
}

// PatientInput holds the writable patient fields
type PatientInput struct {
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Email     *string    `json:"email,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

func (in PatientInput) validate() (*domain.Patient, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	phone, err := normalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	var email *string
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		addr, err := mail.ParseAddress(strings.TrimSpace(*in.Email))
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		email = &addr.Address
	}
	if in.BirthDate != nil && in.BirthDate.After(time.Now()) {
		return nil, domain.ErrInvalidInput
	}
	notes, err := validateNotes(in.Notes)
	if err != nil {
		return nil, err
	}
	return &domain.Patient{
		Name:      name,
		Phone:     phone,
		Email:     email,
		BirthDate: in.BirthDate,
		Notes:     notes,
	}, nil
}

// CreatePatient creates a patient, rejecting a phone already on file
func (s *PatientService) CreatePatient(clinicID int32, input PatientInput) (*domain.Patient, error) {
	patient, err := input.validate()
	if err != nil {
		return nil, err
	}

	if _, err := s.patientRepo.GetByPhone(clinicID, patient.Phone); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrPatientNotFound) {
		return nil, err
	}

	patient.ClinicID = clinicID
	created, err := s.patientRepo.Create(patient)
	if err != nil {
		return nil, err
	}

	log.Info().Int32("clinic_id", clinicID).Int32("patient_id", created.ID).Msg("Patient created")
	s.publishEvent(clinicID, websocket.PatientCreated(created))
	return created, nil
}

// FindOrCreateByPhone returns the patient with the phone or creates one
func (s *PatientService) FindOrCreateByPhone(clinicID int32, input PatientInput) (*domain.Patient, bool, error) {
	phone, err := normalizePhone(input.Phone)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.patientRepo.GetByPhone(clinicID, phone)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrPatientNotFound) {
		return nil, false, err
	}
	created, err := s.CreatePatient(clinicID, input)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// GetPatient retrieves a patient
func (s *PatientService) GetPatient(clinicID, id int32) (*domain.Patient, error) {
	return s.patientRepo.GetByID(clinicID, id)
}

// ListPatients lists patients, optionally filtered by name or phone
func (s *PatientService) ListPatients(clinicID int32, search string) ([]*domain.Patient, error) {
	return s.patientRepo.List(clinicID, strings.TrimSpace(search))
}

// UpdatePatient replaces a patient's writable fields
func (s *PatientService) UpdatePatient(clinicID, id int32, input PatientInput) (*domain.Patient, error) {
	existing, err := s.patientRepo.GetByID(clinicID, id)
	if err != nil {
		return nil, err
	}
	patient, err := input.validate()
	if err != nil {
		return nil, err
	}

	if patient.Phone != existing.Phone {
		if other, err := s.patientRepo.GetByPhone(clinicID, patient.Phone); err == nil && other.ID != id {
			return nil, domain.ErrAlreadyExists
		}
	}

	existing.Name = patient.Name
	existing.Phone = patient.Phone
	existing.Email = patient.Email
	existing.BirthDate = patient.BirthDate
	existing.Notes = patient.Notes
	return s.patientRepo.Update(existing)
}

// DeletePatient soft-deletes a patient
func (s *PatientService) DeletePatient(clinicID, id int32) error {
	return s.patientRepo.SoftDelete(clinicID, id)
}

package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

const maxSlugLength = 64

// ClinicService handles clinic settings
type ClinicService struct {
	clinicRepo domain.ClinicRepository
}

// NewClinicService creates a new ClinicService
func NewClinicService(clinicRepo domain.ClinicRepository) *ClinicService {
	return &ClinicService{clinicRepo: clinicRepo}
}

// UpdateClinicInput holds editable clinic settings
type UpdateClinicInput struct {
	Name                    string `json:"name"`
	PublicSlug              string `json:"publicSlug"`
	SlotMinutes             int    `json:"slotMinutes"`
	OpensAt                 string `json:"opensAt"`
	ClosesAt                string `json:"closesAt"`
	Timezone                string `json:"timezone"`
	MonthlyAppointmentLimit int    `json:"monthlyAppointmentLimit"`
}

// GetClinic retrieves a clinic by ID
func (s *ClinicService) GetClinic(clinicID int32) (*domain.Clinic, error) {
	return s.clinicRepo.GetByID(clinicID)
}

// UpdateSettings validates and saves clinic settings
func (s *ClinicService) UpdateSettings(clinicID int32, input UpdateClinicInput) (*domain.Clinic, error) {
	clinic, err := s.clinicRepo.GetByID(clinicID)
	if err != nil {
		return nil, err
	}

	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}

	slug := strings.ToLower(strings.TrimSpace(input.PublicSlug))
	if len(slug) < 3 || len(slug) > maxSlugLength || !slugPattern.MatchString(slug) {
		return nil, domain.ErrInvalidInput
	}

	if input.SlotMinutes < domain.MinSlotMinutes || input.SlotMinutes > domain.MaxSlotMinutes {
		return nil, domain.ErrInvalidInput
	}

	opens, err := time.Parse(domain.ClockFormat, input.OpensAt)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	closes, err := time.Parse(domain.ClockFormat, input.ClosesAt)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	if !closes.After(opens) {
		return nil, domain.ErrInvalidInput
	}

	if _, err := time.LoadLocation(input.Timezone); err != nil || input.Timezone == "" {
		return nil, domain.ErrInvalidInput
	}

	if input.MonthlyAppointmentLimit < 0 {
		return nil, domain.ErrInvalidInput
	}

	if slug != clinic.PublicSlug {
		if existing, err := s.clinicRepo.GetBySlug(slug); err == nil && existing.ID != clinicID {
			return nil, domain.ErrAlreadyExists
		}
	}

	clinic.Name = name
	clinic.PublicSlug = slug
	clinic.SlotMinutes = input.SlotMinutes
	clinic.OpensAt = input.OpensAt
	clinic.ClosesAt = input.ClosesAt
	clinic.Timezone = input.Timezone
	clinic.MonthlyAppointmentLimit = input.MonthlyAppointmentLimit

	updated, err := s.clinicRepo.Update(clinic)
	if err != nil {
		return nil, err
	}
	log.Info().Int32("clinic_id", clinicID).Msg("Clinic settings updated")
	return updated, nil
}

package service

import (
	"errors"
	"strings"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo   domain.UserRepository
	clinicRepo domain.ClinicRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, clinicRepo domain.ClinicRepository) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		clinicRepo: clinicRepo,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	Clinic    *domain.Clinic
	IsNewUser bool
}

// AuthenticateUser handles the authentication flow after Auth0 callback.
// Creates user and clinic if they don't exist.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	user, err := s.userRepo.CreateOrGetByAuth0ID(auth0ID, email, name, pictureURL)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
		return nil, err
	}

	clinic, err := s.clinicRepo.GetByOwnerID(user.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrClinicNotFound) {
			log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to get clinic")
			return nil, err
		}

		clinic, err = s.createDefaultClinic(user)
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to create default clinic")
			return nil, err
		}
		log.Info().Str("user_id", user.ID.String()).Int32("clinic_id", clinic.ID).Msg("Created new user with default clinic")
		return &AuthResult{User: user, Clinic: clinic, IsNewUser: true}, nil
	}

	log.Info().Str("user_id", user.ID.String()).Msg("Existing user authenticated")
	return &AuthResult{User: user, Clinic: clinic, IsNewUser: false}, nil
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

// GetClinicByAuth0ID retrieves the clinic owned by an Auth0 subject
func (s *AuthService) GetClinicByAuth0ID(auth0ID string) (*domain.Clinic, error) {
	return s.clinicRepo.GetByOwnerAuth0ID(auth0ID)
}

// GetClinicIDByAuth0ID resolves the clinic id for request and websocket auth
func (s *AuthService) GetClinicIDByAuth0ID(auth0ID string) (int32, error) {
	clinic, err := s.clinicRepo.GetByOwnerAuth0ID(auth0ID)
	if err != nil {
		return 0, err
	}
	return clinic.ID, nil
}

func (s *AuthService) createDefaultClinic(user *domain.User) (*domain.Clinic, error) {
	clinic := &domain.Clinic{
		OwnerID:                 user.ID,
		Name:                    user.DefaultClinicName(),
		PublicSlug:              defaultSlug(),
		SlotMinutes:             domain.DefaultSlotMinutes,
		OpensAt:                 domain.DefaultOpensAt,
		ClosesAt:                domain.DefaultClosesAt,
		Timezone:                domain.DefaultTimezone,
		MonthlyAppointmentLimit: domain.DefaultMonthlyAppointmentLimit,
	}
	return s.clinicRepo.Create(clinic)
}

// defaultSlug is random until the owner picks one in settings
func defaultSlug() string {
	return "clinica-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}

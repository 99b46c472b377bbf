package service

import (
	"testing"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validClinicInput() UpdateClinicInput {
	return UpdateClinicInput{
		Name:                    "Clínica Sorriso",
		PublicSlug:              "Sorriso-SP",
		SlotMinutes:             45,
		OpensAt:                 "09:00",
		ClosesAt:                "17:30",
		Timezone:                "UTC",
		MonthlyAppointmentLimit: 200,
	}
}

func TestClinicService_UpdateSettings(t *testing.T) {
	repo := testutil.NewMockClinicRepository()
	repo.AddClinic(newTestClinic(0), testAuth0ID)
	svc := NewClinicService(repo)

	updated, err := svc.UpdateSettings(1, validClinicInput())

	require.NoError(t, err)
	assert.Equal(t, "sorriso-sp", updated.PublicSlug)
	assert.Equal(t, 45, updated.SlotMinutes)
	assert.Equal(t, 200, updated.MonthlyAppointmentLimit)
}

func TestClinicService_UpdateSettings_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *UpdateClinicInput)
		want   error
	}{
		{"empty name", func(in *UpdateClinicInput) { in.Name = "" }, domain.ErrNameRequired},
		{"slug with spaces", func(in *UpdateClinicInput) { in.PublicSlug = "my clinic" }, domain.ErrInvalidInput},
		{"slug too short", func(in *UpdateClinicInput) { in.PublicSlug = "ab" }, domain.ErrInvalidInput},
		{"slot too short", func(in *UpdateClinicInput) { in.SlotMinutes = 1 }, domain.ErrInvalidInput},
		{"slot too long", func(in *UpdateClinicInput) { in.SlotMinutes = 600 }, domain.ErrInvalidInput},
		{"bad opening time", func(in *UpdateClinicInput) { in.OpensAt = "9am" }, domain.ErrInvalidInput},
		{"closes before opening", func(in *UpdateClinicInput) { in.ClosesAt = "08:00" }, domain.ErrInvalidInput},
		{"unknown timezone", func(in *UpdateClinicInput) { in.Timezone = "Mars/Olympus" }, domain.ErrInvalidInput},
		{"negative limit", func(in *UpdateClinicInput) { in.MonthlyAppointmentLimit = -1 }, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockClinicRepository()
			repo.AddClinic(newTestClinic(0), testAuth0ID)
			svc := NewClinicService(repo)
			input := validClinicInput()
			tt.mutate(&input)

			_, err := svc.UpdateSettings(1, input)

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClinicService_UpdateSettings_SlugTaken(t *testing.T) {
	repo := testutil.NewMockClinicRepository()
	repo.AddClinic(newTestClinic(0), testAuth0ID)
	other := newTestClinic(0)
	other.ID = 2
	other.PublicSlug = "sorriso-sp"
	repo.AddClinic(other, "auth0|other")
	svc := NewClinicService(repo)

	_, err := svc.UpdateSettings(1, validClinicInput())

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestClinicService_GetClinic(t *testing.T) {
	repo := testutil.NewMockClinicRepository()
	repo.AddClinic(newTestClinic(0), testAuth0ID)
	svc := NewClinicService(repo)

	clinic, err := svc.GetClinic(1)
	require.NoError(t, err)
	assert.Equal(t, "clinica-teste", clinic.PublicSlug)

	_, err = svc.GetClinic(2)
	assert.ErrorIs(t, err, domain.ErrClinicNotFound)
}

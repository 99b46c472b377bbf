package service

import (
	"testing"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPatientService() (*PatientService, *testutil.MockPatientRepository, *testutil.RecordingPublisher) {
	repo := testutil.NewMockPatientRepository()
	publisher := &testutil.RecordingPublisher{}
	svc := NewPatientService(repo)
	svc.SetEventPublisher(publisher)
	return svc, repo, publisher
}

func TestPatientService_CreatePatient(t *testing.T) {
	svc, _, publisher := newPatientService()
	email := " maria@example.com "

	patient, err := svc.CreatePatient(1, PatientInput{
		Name:  "  Maria Souza ",
		Phone: "+55 (11) 99999-0000",
		Email: &email,
	})

	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", patient.Name)
	assert.Equal(t, "+5511999990000", patient.Phone)
	require.NotNil(t, patient.Email)
	assert.Equal(t, "maria@example.com", *patient.Email)
	assert.Equal(t, int32(1), patient.ClinicID)
	assert.Equal(t, []string{"patient.created"}, publisher.Types())
}

func TestPatientService_CreatePatient_Validation(t *testing.T) {
	svc, _, _ := newPatientService()
	badEmail := "not-an-email"
	future := time.Now().AddDate(1, 0, 0)
	longNotes := string(make([]byte, domain.MaxNotesLength+1))

	tests := []struct {
		name  string
		input PatientInput
		want  error
	}{
		{"empty name", PatientInput{Name: "  ", Phone: "11999990000"}, domain.ErrNameRequired},
		{"long name", PatientInput{Name: string(make([]byte, domain.MaxNameLength+1)), Phone: "11999990000"}, domain.ErrNameTooLong},
		{"short phone", PatientInput{Name: "Ana", Phone: "123"}, domain.ErrInvalidInput},
		{"letters in phone", PatientInput{Name: "Ana", Phone: "11 9999 ABCD"}, domain.ErrInvalidInput},
		{"bad email", PatientInput{Name: "Ana", Phone: "11999990000", Email: &badEmail}, domain.ErrInvalidInput},
		{"birth date in future", PatientInput{Name: "Ana", Phone: "11999990000", BirthDate: &future}, domain.ErrInvalidInput},
		{"notes too long", PatientInput{Name: "Ana", Phone: "11999990000", Notes: &longNotes}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePatient(1, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPatientService_CreatePatient_DuplicatePhone(t *testing.T) {
	svc, repo, _ := newPatientService()
	repo.AddPatient(&domain.Patient{ID: 1, ClinicID: 1, Name: "Maria", Phone: "11999990000"})

	_, err := svc.CreatePatient(1, PatientInput{Name: "Outra", Phone: "11 99999-0000"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	// another clinic may reuse the number
	_, err = svc.CreatePatient(2, PatientInput{Name: "Outra", Phone: "11999990000"})
	assert.NoError(t, err)
}

func TestPatientService_FindOrCreateByPhone(t *testing.T) {
	svc, repo, _ := newPatientService()
	repo.AddPatient(&domain.Patient{ID: 7, ClinicID: 1, Name: "Maria", Phone: "11999990000"})

	found, created, err := svc.FindOrCreateByPhone(1, PatientInput{Name: "Maria S.", Phone: "(11) 99999-0000"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int32(7), found.ID)

	fresh, created, err := svc.FindOrCreateByPhone(1, PatientInput{Name: "João", Phone: "11888880000"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "João", fresh.Name)
}

func TestPatientService_ListUpdateDelete(t *testing.T) {
	svc, repo, _ := newPatientService()
	repo.AddPatient(&domain.Patient{ID: 1, ClinicID: 1, Name: "Maria", Phone: "11999990000"})
	repo.AddPatient(&domain.Patient{ID: 2, ClinicID: 1, Name: "Ana", Phone: "11888880000"})

	all, err := svc.ListPatients(1, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana", all[0].Name)

	filtered, err := svc.ListPatients(1, "mar")
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	_, err = svc.UpdatePatient(1, 1, PatientInput{Name: "Maria", Phone: "11888880000"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	updated, err := svc.UpdatePatient(1, 1, PatientInput{Name: "Maria Clara", Phone: "11999990000"})
	require.NoError(t, err)
	assert.Equal(t, "Maria Clara", updated.Name)

	require.NoError(t, svc.DeletePatient(1, 2))
	_, err = svc.GetPatient(1, 2)
	assert.ErrorIs(t, err, domain.ErrPatientNotFound)
}

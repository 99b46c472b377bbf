package service

import (
	"testing"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publicFixture struct {
	*agendaFixture
	public *PublicSchedulingService
}

func newPublicFixture(limit int, now time.Time) *publicFixture {
	f := &publicFixture{agendaFixture: newAgendaFixture(limit)}
	patients := NewPatientService(f.patients)
	f.public = NewPublicSchedulingService(f.clinics, f.appointments, patients, f.agenda)
	f.public.now = func() time.Time { return now }
	return f
}

func slotStarts(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.StartsAt.Format("15:04")
	}
	return out
}

func TestPublicSchedulingService_GetClinic(t *testing.T) {
	f := newPublicFixture(0, at(2030, 3, 9, 12, 0))

	clinic, err := f.public.GetClinic("clinica-teste")
	require.NoError(t, err)
	assert.Equal(t, "Clínica Teste", clinic.Name)
	assert.Equal(t, 30, clinic.SlotMinutes)

	_, err = f.public.GetClinic("nope")
	assert.ErrorIs(t, err, domain.ErrClinicNotFound)
}

func TestPublicSchedulingService_AvailableSlots(t *testing.T) {
	f := newPublicFixture(0, at(2030, 3, 9, 12, 0))
	f.addAppointment(1, at(2030, 3, 10, 9, 0), domain.AppointmentStatusScheduled)
	f.addAppointment(2, at(2030, 3, 10, 10, 0), domain.AppointmentStatusCancelled)

	slots, err := f.public.AvailableSlots("clinica-teste", at(2030, 3, 10, 0, 0))

	require.NoError(t, err)
	assert.Equal(t, []string{
		"08:00", "08:30", "09:30", "10:00", "10:30", "11:00", "11:30",
	}, slotStarts(slots))
	assert.Equal(t, at(2030, 3, 10, 11, 30).Add(30*time.Minute), slots[len(slots)-1].EndsAt)
}

func TestPublicSchedulingService_AvailableSlots_SkipsPast(t *testing.T) {
	f := newPublicFixture(0, at(2030, 3, 10, 10, 0))

	slots, err := f.public.AvailableSlots("clinica-teste", at(2030, 3, 10, 0, 0))

	require.NoError(t, err)
	assert.Equal(t, []string{"10:30", "11:00", "11:30"}, slotStarts(slots))
}

func TestPublicSchedulingService_AvailableSlots_FullMonth(t *testing.T) {
	f := newPublicFixture(1, at(2030, 3, 1, 0, 0))
	f.addAppointment(1, at(2030, 3, 20, 9, 0), domain.AppointmentStatusScheduled)

	slots, err := f.public.AvailableSlots("clinica-teste", at(2030, 3, 10, 0, 0))

	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestPublicSchedulingService_AvailableSlots_BeyondHorizon(t *testing.T) {
	f := newPublicFixture(0, at(2030, 3, 1, 0, 0))

	slots, err := f.public.AvailableSlots("clinica-teste", at(2031, 3, 1, 0, 0))

	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestPublicSchedulingService_Book(t *testing.T) {
	f := newPublicFixture(0, at(2030, 3, 9, 12, 0))

	result, err := f.public.Book("clinica-teste", BookingInput{
		Name:     "João Lima",
		Phone:    "(11) 98888-7777",
		StartsAt: at(2030, 3, 10, 8, 30),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.ConfirmationToken.String())
	assert.Equal(t, at(2030, 3, 10, 9, 0), result.EndsAt)

	appt, err := f.appointments.GetByID(1, result.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentSourcePublic, appt.Source)
	require.NotNil(t, appt.ConfirmationToken)
	assert.Equal(t, result.ConfirmationToken, *appt.ConfirmationToken)

	patient, err := f.patients.GetByPhone(1, "11988887777")
	require.NoError(t, err)
	assert.Equal(t, appt.PatientID, patient.ID)

	require.Len(t, f.notifier.Messages, 1)
	assert.Equal(t, notify.KindBookingConfirmed, f.notifier.Messages[0].Kind)
	assert.Equal(t, "João Lima", f.notifier.Messages[0].PatientName)
	assert.Equal(t, []string{"appointment.created"}, f.publisher.Types())
}

func TestPublicSchedulingService_Book_ReusesPatientByPhone(t *testing.T) {
	f := newPublicFixture(0, at(2030, 3, 9, 12, 0))

	result, err := f.public.Book("clinica-teste", BookingInput{
		Name:     "Maria",
		Phone:    "+55 11 99999-0000",
		StartsAt: at(2030, 3, 10, 8, 0),
	})

	require.NoError(t, err)
	appt, err := f.appointments.GetByID(1, result.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, f.patient.ID, appt.PatientID)
	assert.Len(t, f.patients.Patients, 1)
}

func TestPublicSchedulingService_Book_Rejections(t *testing.T) {
	f := newPublicFixture(0, at(2030, 3, 9, 12, 0))
	f.addAppointment(1, at(2030, 3, 10, 9, 0), domain.AppointmentStatusConfirmed)

	tests := []struct {
		name  string
		start time.Time
	}{
		{"taken slot", at(2030, 3, 10, 9, 0)},
		{"misaligned", at(2030, 3, 10, 8, 10)},
		{"outside hours", at(2030, 3, 10, 13, 0)},
		{"in the past", at(2030, 3, 9, 8, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.public.Book("clinica-teste", BookingInput{Name: "Ana", Phone: "11977776666", StartsAt: tt.start})
			assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
		})
	}
}

func TestPublicSchedulingService_Book_InvalidPatient(t *testing.T) {
	f := newPublicFixture(0, at(2030, 3, 9, 12, 0))

	_, err := f.public.Book("clinica-teste", BookingInput{Name: "", Phone: "11977776666", StartsAt: at(2030, 3, 10, 8, 0)})

	assert.ErrorIs(t, err, domain.ErrNameRequired)
	assert.Empty(t, f.appointments.Appointments)
}

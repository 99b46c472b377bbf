package service

import (
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/testutil"
	"github.com/google/uuid"
)

const testAuth0ID = "auth0|owner"

func newTestClinic(limit int) *domain.Clinic {
	return &domain.Clinic{
		ID:                      1,
		OwnerID:                 uuid.New(),
		Name:                    "Clínica Teste",
		PublicSlug:              "clinica-teste",
		SlotMinutes:             30,
		OpensAt:                 "08:00",
		ClosesAt:                "12:00",
		Timezone:                "UTC",
		MonthlyAppointmentLimit: limit,
	}
}

type agendaFixture struct {
	clinics      *testutil.MockClinicRepository
	patients     *testutil.MockPatientRepository
	appointments *testutil.MockAppointmentRepository
	publisher    *testutil.RecordingPublisher
	notifier     *testutil.RecordingNotifier
	agenda       *AgendaService
	clinic       *domain.Clinic
	patient      *domain.Patient
}

func newAgendaFixture(limit int) *agendaFixture {
	f := &agendaFixture{
		clinics:      testutil.NewMockClinicRepository(),
		patients:     testutil.NewMockPatientRepository(),
		appointments: testutil.NewMockAppointmentRepository(),
		publisher:    &testutil.RecordingPublisher{},
		notifier:     &testutil.RecordingNotifier{},
		clinic:       newTestClinic(limit),
	}
	f.clinics.AddClinic(f.clinic, testAuth0ID)
	f.patient = &domain.Patient{ID: 1, ClinicID: f.clinic.ID, Name: "Maria Souza", Phone: "+5511999990000"}
	f.patients.AddPatient(f.patient)

	f.agenda = NewAgendaService(f.appointments, f.patients, f.clinics)
	f.agenda.SetEventPublisher(f.publisher)
	f.agenda.SetNotifier(f.notifier)
	return f
}

// addAppointment stores an appointment directly, bypassing validation
func (f *agendaFixture) addAppointment(id int32, start time.Time, status domain.AppointmentStatus) *domain.Appointment {
	a := &domain.Appointment{
		ID:        id,
		ClinicID:  f.clinic.ID,
		PatientID: f.patient.ID,
		StartsAt:  start,
		EndsAt:    start.Add(30 * time.Minute),
		Status:    status,
		Source:    domain.AppointmentSourceAgenda,
	}
	f.appointments.AddAppointment(a)
	return a
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

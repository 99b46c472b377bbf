package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/middleware"
	"github.com/dafibh/clinica/clinica-backend/internal/service"
	"github.com/dafibh/clinica/clinica-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	testAuth0ID      = "auth0|owner"
	testClinicID     = int32(1)
	testWebhookToken = "whsec_test"
)

// setupAuthContext sets up auth context without a clinic, like AuthenticateUser does
func setupAuthContext(c echo.Context, auth0ID string, email, name, picture string) {
	setupAuthContextWithClinic(c, auth0ID, email, name, picture, 0)
}

// setupAuthContextWithClinic mimics the auth middleware
func setupAuthContextWithClinic(c echo.Context, auth0ID string, email, name, picture string, clinicID int32) {
	customClaims := &middleware.CustomClaims{
		Email:   email,
		Name:    name,
		Picture: picture,
	}
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: auth0ID,
		},
		CustomClaims: customClaims,
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.Auth0IDKey, auth0ID)
	if clinicID > 0 {
		ctx = context.WithValue(ctx, middleware.ClinicIDKey, clinicID)
	}
	c.SetRequest(c.Request().WithContext(ctx))
}

// fixture wires every service over in-memory repositories
type fixture struct {
	clinics      *testutil.MockClinicRepository
	users        *testutil.MockUserRepository
	patients     *testutil.MockPatientRepository
	appointments *testutil.MockAppointmentRepository
	expenses     *testutil.MockExpenseRepository
	payments     *testutil.MockPaymentRepository
	publisher    *testutil.RecordingPublisher

	clinic  *domain.Clinic
	patient *domain.Patient

	patientService   *service.PatientService
	agendaService    *service.AgendaService
	expenseService   *service.ExpenseService
	dashboardService *service.DashboardService
	publicService    *service.PublicSchedulingService
	paymentService   *service.PaymentService
	authService      *service.AuthService
}

func newFixture(limit int) *fixture {
	f := &fixture{
		clinics:      testutil.NewMockClinicRepository(),
		users:        testutil.NewMockUserRepository(),
		patients:     testutil.NewMockPatientRepository(),
		appointments: testutil.NewMockAppointmentRepository(),
		expenses:     testutil.NewMockExpenseRepository(),
		publisher:    &testutil.RecordingPublisher{},
	}
	f.clinic = &domain.Clinic{
		ID:                      testClinicID,
		OwnerID:                 uuid.New(),
		Name:                    "Clínica Teste",
		PublicSlug:              "clinica-teste",
		SlotMinutes:             30,
		OpensAt:                 "08:00",
		ClosesAt:                "12:00",
		Timezone:                "UTC",
		MonthlyAppointmentLimit: limit,
	}
	f.payments = testutil.NewMockPaymentRepository(f.appointments)
	f.clinics.AddClinic(f.clinic, testAuth0ID)
	f.patient = &domain.Patient{ID: 1, ClinicID: testClinicID, Name: "Maria Souza", Phone: "+5511999990000"}
	f.patients.AddPatient(f.patient)

	f.patientService = service.NewPatientService(f.patients)
	f.agendaService = service.NewAgendaService(f.appointments, f.patients, f.clinics)
	f.agendaService.SetEventPublisher(f.publisher)
	f.expenseService = service.NewExpenseService(f.expenses)
	f.dashboardService = service.NewDashboardService(f.clinics, f.appointments, f.expenses)
	f.publicService = service.NewPublicSchedulingService(f.clinics, f.appointments, f.patientService, f.agendaService)
	f.paymentService = service.NewPaymentService(f.payments, f.appointments, testWebhookToken, "BRL")
	f.authService = service.NewAuthService(f.users, f.clinics)
	return f
}

func (f *fixture) addAppointment(id int32, start time.Time, status domain.AppointmentStatus) *domain.Appointment {
	a := &domain.Appointment{
		ID:        id,
		ClinicID:  testClinicID,
		PatientID: f.patient.ID,
		StartsAt:  start,
		EndsAt:    start.Add(30 * time.Minute),
		Status:    status,
		Source:    domain.AppointmentSourceAgenda,
	}
	f.appointments.AddAppointment(a)
	return a
}

// newJSONRequest builds an authenticated clinic request with a JSON body
func newJSONRequest(e *echo.Echo, method, path string, body any) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithClinic(c, testAuth0ID, "owner@example.com", "Dra. Ana", "", testClinicID)
	return c, rec
}

func decodeProblem(rec *httptest.ResponseRecorder) ProblemDetails {
	var p ProblemDetails
	_ = json.Unmarshal(rec.Body.Bytes(), &p)
	return p
}

// tomorrow returns a UTC calendar day inside the public booking horizon
func tomorrow() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/dafibh/clinica/clinica-backend/internal/notify"
	"github.com/dafibh/clinica/clinica-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(auth0ID, email string, name, pictureURL *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name, pictureURL)
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockClinicRepository is a mock implementation of domain.ClinicRepository
type MockClinicRepository struct {
	Clinics        map[int32]*domain.Clinic
	ByOwnerID      map[uuid.UUID]*domain.Clinic
	ByOwnerAuth0   map[string]*domain.Clinic
	NextID         int32
	GetByOwnerIDFn func(ownerID uuid.UUID) (*domain.Clinic, error)
}

// NewMockClinicRepository creates a new MockClinicRepository
func NewMockClinicRepository() *MockClinicRepository {
	return &MockClinicRepository{
		Clinics:      make(map[int32]*domain.Clinic),
		ByOwnerID:    make(map[uuid.UUID]*domain.Clinic),
		ByOwnerAuth0: make(map[string]*domain.Clinic),
		NextID:       1,
	}
}

// GetByID retrieves a clinic by ID
func (m *MockClinicRepository) GetByID(id int32) (*domain.Clinic, error) {
	if c, ok := m.Clinics[id]; ok {
		return c, nil
	}
	return nil, domain.ErrClinicNotFound
}

// GetByOwnerID retrieves a clinic by owner user ID
func (m *MockClinicRepository) GetByOwnerID(ownerID uuid.UUID) (*domain.Clinic, error) {
	if m.GetByOwnerIDFn != nil {
		return m.GetByOwnerIDFn(ownerID)
	}
	if c, ok := m.ByOwnerID[ownerID]; ok {
		return c, nil
	}
	return nil, domain.ErrClinicNotFound
}

// GetByOwnerAuth0ID retrieves a clinic by the owner's Auth0 ID
func (m *MockClinicRepository) GetByOwnerAuth0ID(auth0ID string) (*domain.Clinic, error) {
	if c, ok := m.ByOwnerAuth0[auth0ID]; ok {
		return c, nil
	}
	return nil, domain.ErrClinicNotFound
}

// GetBySlug retrieves a clinic by its public slug
func (m *MockClinicRepository) GetBySlug(slug string) (*domain.Clinic, error) {
	for _, c := range m.Clinics {
		if c.PublicSlug == slug {
			return c, nil
		}
	}
	return nil, domain.ErrClinicNotFound
}

// Create creates a new clinic
func (m *MockClinicRepository) Create(clinic *domain.Clinic) (*domain.Clinic, error) {
	for _, c := range m.Clinics {
		if c.PublicSlug == clinic.PublicSlug {
			return nil, domain.ErrAlreadyExists
		}
	}
	clinic.ID = m.NextID
	m.NextID++
	clinic.CreatedAt = time.Now()
	clinic.UpdatedAt = clinic.CreatedAt
	m.Clinics[clinic.ID] = clinic
	m.ByOwnerID[clinic.OwnerID] = clinic
	return clinic, nil
}

// Update updates clinic settings
func (m *MockClinicRepository) Update(clinic *domain.Clinic) (*domain.Clinic, error) {
	if _, ok := m.Clinics[clinic.ID]; !ok {
		return nil, domain.ErrClinicNotFound
	}
	clinic.UpdatedAt = time.Now()
	m.Clinics[clinic.ID] = clinic
	m.ByOwnerID[clinic.OwnerID] = clinic
	for auth0ID, c := range m.ByOwnerAuth0 {
		if c.ID == clinic.ID {
			m.ByOwnerAuth0[auth0ID] = clinic
		}
	}
	return clinic, nil
}

// AddClinic adds a clinic owned by auth0ID (helper for tests)
func (m *MockClinicRepository) AddClinic(clinic *domain.Clinic, auth0ID string) {
	m.Clinics[clinic.ID] = clinic
	m.ByOwnerID[clinic.OwnerID] = clinic
	if auth0ID != "" {
		m.ByOwnerAuth0[auth0ID] = clinic
	}
	if clinic.ID >= m.NextID {
		m.NextID = clinic.ID + 1
	}
}

// MockPatientRepository is a mock implementation of domain.PatientRepository
type MockPatientRepository struct {
	Patients map[int32]*domain.Patient
	NextID   int32
	CreateFn func(patient *domain.Patient) (*domain.Patient, error)
}

// NewMockPatientRepository creates a new MockPatientRepository
func NewMockPatientRepository() *MockPatientRepository {
	return &MockPatientRepository{
		Patients: make(map[int32]*domain.Patient),
		NextID:   1,
	}
}

// Create creates a new patient
func (m *MockPatientRepository) Create(patient *domain.Patient) (*domain.Patient, error) {
	if m.CreateFn != nil {
		return m.CreateFn(patient)
	}
	patient.ID = m.NextID
	m.NextID++
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt
	m.Patients[patient.ID] = patient
	return patient, nil
}

// GetByID retrieves an active patient by clinic and ID
func (m *MockPatientRepository) GetByID(clinicID, id int32) (*domain.Patient, error) {
	p, ok := m.Patients[id]
	if !ok || p.ClinicID != clinicID || p.DeletedAt != nil {
		return nil, domain.ErrPatientNotFound
	}
	return p, nil
}

// GetByPhone retrieves an active patient by phone
func (m *MockPatientRepository) GetByPhone(clinicID int32, phone string) (*domain.Patient, error) {
	for _, p := range m.Patients {
		if p.ClinicID == clinicID && p.Phone == phone && p.DeletedAt == nil {
			return p, nil
		}
	}
	return nil, domain.ErrPatientNotFound
}

// List returns active patients ordered by name, filtered by name or phone
func (m *MockPatientRepository) List(clinicID int32, search string) ([]*domain.Patient, error) {
	needle := strings.ToLower(search)
	var result []*domain.Patient
	for _, p := range m.Patients {
		if p.ClinicID != clinicID || p.DeletedAt != nil {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) && !strings.Contains(p.Phone, search) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Update updates a patient
func (m *MockPatientRepository) Update(patient *domain.Patient) (*domain.Patient, error) {
	if _, err := m.GetByID(patient.ClinicID, patient.ID); err != nil {
		return nil, err
	}
	patient.UpdatedAt = time.Now()
	m.Patients[patient.ID] = patient
	return patient, nil
}

// SoftDelete marks a patient deleted
func (m *MockPatientRepository) SoftDelete(clinicID, id int32) error {
	p, err := m.GetByID(clinicID, id)
	if err != nil {
		return err
	}
	now := time.Now()
	p.DeletedAt = &now
	return nil
}

// AddPatient adds a patient to the mock repository (helper for tests)
func (m *MockPatientRepository) AddPatient(patient *domain.Patient) {
	m.Patients[patient.ID] = patient
	if patient.ID >= m.NextID {
		m.NextID = patient.ID + 1
	}
}

// MockAppointmentRepository is a mock implementation of domain.AppointmentRepository
type MockAppointmentRepository struct {
	mu           sync.RWMutex
	Appointments map[int32]*domain.Appointment
	NextID       int32
	GetStatsFn   func(clinicID int32, start, end time.Time) (*domain.AppointmentStats, error)
	// MarkPaidFn, when set, runs before MarkPaid and can fail it
	MarkPaidFn func(clinicID, id int32) error
}

// NewMockAppointmentRepository creates a new MockAppointmentRepository
func NewMockAppointmentRepository() *MockAppointmentRepository {
	return &MockAppointmentRepository{
		Appointments: make(map[int32]*domain.Appointment),
		NextID:       1,
	}
}

// Create creates a new appointment
func (m *MockAppointmentRepository) Create(a *domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.NextID
	m.NextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.Appointments[a.ID] = a
	return a, nil
}

// GetByID retrieves an appointment by clinic and ID
func (m *MockAppointmentRepository) GetByID(clinicID, id int32) (*domain.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.Appointments[id]
	if !ok || a.ClinicID != clinicID {
		return nil, domain.ErrAppointmentNotFound
	}
	return a, nil
}

func (m *MockAppointmentRepository) inRange(clinicID int32, start, end time.Time) []*domain.Appointment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Appointment
	for _, a := range m.Appointments {
		if a.ClinicID == clinicID && !a.StartsAt.Before(start) && a.StartsAt.Before(end) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartsAt.Before(result[j].StartsAt) })
	return result
}

// GetByRange returns appointments starting in [start, end)
func (m *MockAppointmentRepository) GetByRange(clinicID int32, start, end time.Time) ([]*domain.Appointment, error) {
	return m.inRange(clinicID, start, end), nil
}

// CountActiveByRange counts active appointments starting in [start, end)
func (m *MockAppointmentRepository) CountActiveByRange(clinicID int32, start, end time.Time) (int, error) {
	count := 0
	for _, a := range m.inRange(clinicID, start, end) {
		if a.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

// GetStatsByRange aggregates appointments starting in [start, end)
func (m *MockAppointmentRepository) GetStatsByRange(clinicID int32, start, end time.Time) (*domain.AppointmentStats, error) {
	if m.GetStatsFn != nil {
		return m.GetStatsFn(clinicID, start, end)
	}
	stats := &domain.AppointmentStats{PaidRevenue: decimal.Zero, Receivable: decimal.Zero}
	for _, a := range m.inRange(clinicID, start, end) {
		stats.Total++
		switch a.Status {
		case domain.AppointmentStatusScheduled:
			stats.Scheduled++
		case domain.AppointmentStatusConfirmed:
			stats.Confirmed++
		case domain.AppointmentStatusCompleted:
			stats.Completed++
		case domain.AppointmentStatusCancelled:
			stats.Cancelled++
		case domain.AppointmentStatusNoShow:
			stats.NoShow++
		}
		if a.IsPaid {
			stats.PaidRevenue = stats.PaidRevenue.Add(a.Price)
		} else if a.Status.IsActive() {
			stats.Receivable = stats.Receivable.Add(a.Price)
		}
	}
	return stats, nil
}

// Update updates schedule, status, price and notes
func (m *MockAppointmentRepository) Update(a *domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Appointments[a.ID]
	if !ok || existing.ClinicID != a.ClinicID {
		return nil, domain.ErrAppointmentNotFound
	}
	a.UpdatedAt = time.Now()
	m.Appointments[a.ID] = a
	return a, nil
}

// MarkPaid flags an appointment paid
func (m *MockAppointmentRepository) MarkPaid(clinicID, id int32, reference string) (*domain.Appointment, error) {
	if m.MarkPaidFn != nil {
		if err := m.MarkPaidFn(clinicID, id); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Appointments[id]
	if !ok || a.ClinicID != clinicID {
		return nil, domain.ErrAppointmentNotFound
	}
	a.IsPaid = true
	a.PaymentReference = &reference
	a.UpdatedAt = time.Now()
	return a, nil
}

// AddAppointment adds an appointment to the mock repository (helper for tests)
func (m *MockAppointmentRepository) AddAppointment(a *domain.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Appointments[a.ID] = a
	if a.ID >= m.NextID {
		m.NextID = a.ID + 1
	}
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	mu       sync.RWMutex
	Expenses map[int32]*domain.Expense
	NextID   int32
	SumFn    func(clinicID int32, start, end time.Time) (*domain.ExpenseTotals, error)
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Expenses: make(map[int32]*domain.Expense),
		NextID:   1,
	}
}

// Create creates a new expense
func (m *MockExpenseRepository) Create(e *domain.Expense) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.NextID
	m.NextID++
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	m.Expenses[e.ID] = e
	return e, nil
}

// GetByID retrieves an expense by clinic and ID
func (m *MockExpenseRepository) GetByID(clinicID, id int32) (*domain.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.Expenses[id]
	if !ok || e.ClinicID != clinicID {
		return nil, domain.ErrExpenseNotFound
	}
	return e, nil
}

func (m *MockExpenseRepository) inRange(clinicID int32, start, end time.Time) []*domain.Expense {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Expense
	for _, e := range m.Expenses {
		if e.ClinicID == clinicID && !e.ExpenseDate.Before(start) && !e.ExpenseDate.After(end) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ExpenseDate.Equal(result[j].ExpenseDate) {
			return result[i].ID < result[j].ID
		}
		return result[i].ExpenseDate.Before(result[j].ExpenseDate)
	})
	return result
}

// GetByRange returns expenses dated within [start, end]
func (m *MockExpenseRepository) GetByRange(clinicID int32, start, end time.Time) ([]*domain.Expense, error) {
	return m.inRange(clinicID, start, end), nil
}

// GetRecurringTemplates returns expenses with a recurring day
func (m *MockExpenseRepository) GetRecurringTemplates(clinicID int32) ([]*domain.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Expense
	for _, e := range m.Expenses {
		if e.ClinicID == clinicID && e.RecurringDay != nil {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ExistsForTemplate reports whether a template was materialized in [start, end]
func (m *MockExpenseRepository) ExistsForTemplate(clinicID, templateID int32, start, end time.Time) (bool, error) {
	for _, e := range m.inRange(clinicID, start, end) {
		if e.TemplateID != nil && *e.TemplateID == templateID {
			return true, nil
		}
	}
	return false, nil
}

// SumByRange totals expenses dated within [start, end]
func (m *MockExpenseRepository) SumByRange(clinicID int32, start, end time.Time) (*domain.ExpenseTotals, error) {
	if m.SumFn != nil {
		return m.SumFn(clinicID, start, end)
	}
	totals := &domain.ExpenseTotals{
		Total:  decimal.Zero,
		Paid:   decimal.Zero,
		Unpaid: decimal.Zero,
		ByCat:  make(map[domain.ExpenseCategory]decimal.Decimal),
	}
	for _, e := range m.inRange(clinicID, start, end) {
		totals.Total = totals.Total.Add(e.Amount)
		if e.IsPaid {
			totals.Paid = totals.Paid.Add(e.Amount)
		} else {
			totals.Unpaid = totals.Unpaid.Add(e.Amount)
		}
		totals.ByCat[e.Category] = totals.ByCat[e.Category].Add(e.Amount)
	}
	return totals, nil
}

// Update updates an expense
func (m *MockExpenseRepository) Update(e *domain.Expense) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Expenses[e.ID]
	if !ok || existing.ClinicID != e.ClinicID {
		return nil, domain.ErrExpenseNotFound
	}
	e.UpdatedAt = time.Now()
	m.Expenses[e.ID] = e
	return e, nil
}

// TogglePaid flips the paid flag
func (m *MockExpenseRepository) TogglePaid(clinicID, id int32) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Expenses[id]
	if !ok || e.ClinicID != clinicID {
		return nil, domain.ErrExpenseNotFound
	}
	e.IsPaid = !e.IsPaid
	e.UpdatedAt = time.Now()
	return e, nil
}

// Delete removes an expense
func (m *MockExpenseRepository) Delete(clinicID, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Expenses[id]
	if !ok || e.ClinicID != clinicID {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// AddExpense adds an expense to the mock repository (helper for tests)
func (m *MockExpenseRepository) AddExpense(e *domain.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Expenses[e.ID] = e
	if e.ID >= m.NextID {
		m.NextID = e.ID + 1
	}
}

// MockPaymentRepository is a mock implementation of domain.PaymentRepository.
// Appointments are flagged paid through the given appointment mock.
type MockPaymentRepository struct {
	Payments     map[string]*domain.Payment
	NextID       int32
	appointments *MockAppointmentRepository
}

// NewMockPaymentRepository creates a new MockPaymentRepository
func NewMockPaymentRepository(appointments *MockAppointmentRepository) *MockPaymentRepository {
	return &MockPaymentRepository{
		Payments:     make(map[string]*domain.Payment),
		NextID:       1,
		appointments: appointments,
	}
}

// CreateAndMarkPaid stores a payment only when the appointment update succeeds
func (m *MockPaymentRepository) CreateAndMarkPaid(p *domain.Payment, reference string) (*domain.Payment, *domain.Appointment, error) {
	if _, ok := m.Payments[p.EventID]; ok {
		return nil, nil, domain.ErrDuplicateEvent
	}
	appt, err := m.appointments.MarkPaid(p.ClinicID, p.AppointmentID, reference)
	if err != nil {
		return nil, nil, err
	}
	m.AddPayment(p)
	return p, appt, nil
}

// AddPayment stores a payment directly (helper for tests)
func (m *MockPaymentRepository) AddPayment(p *domain.Payment) {
	p.ID = m.NextID
	m.NextID++
	p.CreatedAt = time.Now()
	m.Payments[p.EventID] = p
}

// GetByEventID retrieves a payment by provider event id
func (m *MockPaymentRepository) GetByEventID(eventID string) (*domain.Payment, error) {
	if p, ok := m.Payments[eventID]; ok {
		return p, nil
	}
	return nil, domain.ErrPaymentNotFound
}

// GetByAppointment lists payments for an appointment
func (m *MockPaymentRepository) GetByAppointment(clinicID, appointmentID int32) ([]*domain.Payment, error) {
	var result []*domain.Payment
	for _, p := range m.Payments {
		if p.ClinicID == clinicID && p.AppointmentID == appointmentID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MockObjectStore is an in-memory storage.ObjectStore
type MockObjectStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	UploadErr error
}

// NewMockObjectStore creates a new MockObjectStore
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{Objects: make(map[string][]byte)}
}

// Upload stores the object bytes
func (m *MockObjectStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = buf.Bytes()
	return objectPath, nil
}

// Delete removes an object
func (m *MockObjectStore) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	return nil
}

// PresignedURL returns a fake signed URL
func (m *MockObjectStore) PresignedURL(ctx context.Context, objectPath string) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?signed=1", objectPath), nil
}

// PublishedEvent is an event captured by RecordingPublisher
type PublishedEvent struct {
	ClinicID int32
	Event    websocket.Event
}

// RecordingPublisher captures websocket events for assertions
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// Publish records the event
func (r *RecordingPublisher) Publish(clinicID int32, event websocket.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, PublishedEvent{ClinicID: clinicID, Event: event})
}

// Types returns the recorded event types in order
func (r *RecordingPublisher) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.Events))
	for i, e := range r.Events {
		types[i] = e.Event.Type
	}
	return types
}

// RecordingNotifier captures notifications for assertions
type RecordingNotifier struct {
	mu       sync.Mutex
	Messages []*notify.AppointmentMessage
	Err      error
}

// NotifyAppointment records the message
func (r *RecordingNotifier) NotifyAppointment(ctx context.Context, msg *notify.AppointmentMessage) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, msg)
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, clinic_id, patient_id, starts_at, ends_at, status, source, price, is_paid,
	payment_reference, confirmation_token, notes, created_at, updated_at`

// activeStatusesSQL must match domain.ActiveAppointmentStatuses
const activeStatusesSQL = `('scheduled', 'confirmed', 'completed')`

// AppointmentRepository implements domain.AppointmentRepository using PostgreSQL
type AppointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository creates a new AppointmentRepository
func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// Create creates a new appointment
func (r *AppointmentRepository) Create(a *domain.Appointment) (*domain.Appointment, error) {
	price, err := decimalToPgNumeric(a.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO appointments (clinic_id, patient_id, starts_at, ends_at, status, source, price,
			is_paid, payment_reference, confirmation_token, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+appointmentColumns,
		a.ClinicID, a.PatientID, a.StartsAt, a.EndsAt, string(a.Status), string(a.Source), price,
		a.IsPaid, stringPtrToPgText(a.PaymentReference), uuidPtrToPg(a.ConfirmationToken), stringPtrToPgText(a.Notes))
	return scanAppointment(row)
}

// GetByID retrieves an appointment
func (r *AppointmentRepository) GetByID(clinicID, id int32) (*domain.Appointment, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+appointmentColumns+` FROM appointments WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	a, err := scanAppointment(row)
	if err != nil {
		return nil, notFound(err, domain.ErrAppointmentNotFound)
	}
	return a, nil
}

// GetByRange returns appointments starting in [start, end), ordered by start
func (r *AppointmentRepository) GetByRange(clinicID int32, start, end time.Time) ([]*domain.Appointment, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+appointmentColumns+` FROM appointments
		WHERE clinic_id = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at, id`,
		clinicID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var result []*domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// CountActiveByRange counts active appointments starting in [start, end)
func (r *AppointmentRepository) CountActiveByRange(clinicID int32, start, end time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM appointments
		WHERE clinic_id = $1 AND starts_at >= $2 AND starts_at < $3 AND status IN `+activeStatusesSQL,
		clinicID, start, end).Scan(&count)
	return count, err
}

// GetStatsByRange aggregates counts and revenue for appointments starting in [start, end)
func (r *AppointmentRepository) GetStatsByRange(clinicID int32, start, end time.Time) (*domain.AppointmentStats, error) {
	var (
		stats      domain.AppointmentStats
		paid       pgtype.Numeric
		receivable pgtype.Numeric
	)
	err := r.pool.QueryRow(context.Background(), `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'scheduled'),
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE status = 'no_show'),
			COALESCE(SUM(price) FILTER (WHERE is_paid), 0),
			COALESCE(SUM(price) FILTER (WHERE NOT is_paid AND status IN `+activeStatusesSQL+`), 0)
		FROM appointments
		WHERE clinic_id = $1 AND starts_at >= $2 AND starts_at < $3`,
		clinicID, start, end).Scan(&stats.Total, &stats.Scheduled, &stats.Confirmed, &stats.Completed,
		&stats.Cancelled, &stats.NoShow, &paid, &receivable)
	if err != nil {
		return nil, err
	}
	stats.PaidRevenue = pgNumericToDecimal(paid)
	stats.Receivable = pgNumericToDecimal(receivable)
	return &stats, nil
}

// Update persists schedule, status and note changes
func (r *AppointmentRepository) Update(a *domain.Appointment) (*domain.Appointment, error) {
	price, err := decimalToPgNumeric(a.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	row := r.pool.QueryRow(context.Background(), `
		UPDATE appointments SET starts_at = $3, ends_at = $4, status = $5, price = $6, notes = $7, updated_at = NOW()
		WHERE clinic_id = $1 AND id = $2
		RETURNING `+appointmentColumns,
		a.ClinicID, a.ID, a.StartsAt, a.EndsAt, string(a.Status), price, stringPtrToPgText(a.Notes))
	updated, err := scanAppointment(row)
	if err != nil {
		return nil, notFound(err, domain.ErrAppointmentNotFound)
	}
	return updated, nil
}

// MarkPaid flags an appointment paid with the provider reference
func (r *AppointmentRepository) MarkPaid(clinicID, id int32, reference string) (*domain.Appointment, error) {
	return markPaid(context.Background(), r.pool, clinicID, id, reference)
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func markPaid(ctx context.Context, q rowQuerier, clinicID, id int32, reference string) (*domain.Appointment, error) {
	row := q.QueryRow(ctx, `
		UPDATE appointments SET is_paid = TRUE, payment_reference = $3, updated_at = NOW()
		WHERE clinic_id = $1 AND id = $2
		RETURNING `+appointmentColumns,
		clinicID, id, reference)
	updated, err := scanAppointment(row)
	if err != nil {
		return nil, notFound(err, domain.ErrAppointmentNotFound)
	}
	return updated, nil
}

func uuidPtrToPg(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var (
		a      domain.Appointment
		status string
		source string
		price  pgtype.Numeric
		ref    pgtype.Text
		token  pgtype.UUID
		notes  pgtype.Text
	)
	err := row.Scan(&a.ID, &a.ClinicID, &a.PatientID, &a.StartsAt, &a.EndsAt, &status, &source, &price,
		&a.IsPaid, &ref, &token, &notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = domain.AppointmentStatus(status)
	a.Source = domain.AppointmentSource(source)
	a.Price = pgNumericToDecimal(price)
	a.PaymentReference = pgTextToStringPtr(ref)
	a.Notes = pgTextToStringPtr(notes)
	if token.Valid {
		id := uuid.UUID(token.Bytes)
		a.ConfirmationToken = &id
	}
	return &a, nil
}

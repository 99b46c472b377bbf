package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `id, clinic_id, appointment_id, provider_id, event_id, amount, currency, paid_at, created_at`

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations
const uniqueViolation = "23505"

// PaymentRepository implements domain.PaymentRepository using PostgreSQL
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// CreateAndMarkPaid stores a payment and flags its appointment paid in one
// transaction. A repeated provider event id yields domain.ErrDuplicateEvent.
func (r *PaymentRepository) CreateAndMarkPaid(p *domain.Payment, reference string) (*domain.Payment, *domain.Appointment, error) {
	amount, err := decimalToPgNumeric(p.Amount)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid amount: %w", err)
	}

	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO payments (clinic_id, appointment_id, provider_id, event_id, amount, currency, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+paymentColumns,
		p.ClinicID, p.AppointmentID, p.ProviderID, p.EventID, amount, p.Currency, p.PaidAt)
	created, err := scanPayment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, nil, domain.ErrDuplicateEvent
		}
		return nil, nil, err
	}

	appt, err := markPaid(ctx, tx, p.ClinicID, p.AppointmentID, reference)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return created, appt, nil
}

// GetByEventID retrieves a payment by provider event id
func (r *PaymentRepository) GetByEventID(eventID string) (*domain.Payment, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+paymentColumns+` FROM payments WHERE event_id = $1`, eventID)
	p, err := scanPayment(row)
	if err != nil {
		return nil, notFound(err, domain.ErrPaymentNotFound)
	}
	return p, nil
}

// GetByAppointment lists payments for an appointment
func (r *PaymentRepository) GetByAppointment(clinicID, appointmentID int32) ([]*domain.Payment, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+paymentColumns+` FROM payments WHERE clinic_id = $1 AND appointment_id = $2 ORDER BY paid_at`,
		clinicID, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var result []*domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		p      domain.Payment
		amount pgtype.Numeric
	)
	err := row.Scan(&p.ID, &p.ClinicID, &p.AppointmentID, &p.ProviderID, &p.EventID, &amount,
		&p.Currency, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Amount = pgNumericToDecimal(amount)
	return &p, nil
}

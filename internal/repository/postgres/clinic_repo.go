package postgres

import (
	"context"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clinicColumns = `c.id, c.owner_id, c.name, c.public_slug, c.slot_minutes, c.opens_at, c.closes_at,
	c.timezone, c.monthly_appointment_limit, c.created_at, c.updated_at`

// ClinicRepository implements domain.ClinicRepository using PostgreSQL
type ClinicRepository struct {
	pool *pgxpool.Pool
}

// NewClinicRepository creates a new ClinicRepository
func NewClinicRepository(pool *pgxpool.Pool) *ClinicRepository {
	return &ClinicRepository{pool: pool}
}

// GetByID retrieves a clinic by ID
func (r *ClinicRepository) GetByID(id int32) (*domain.Clinic, error) {
	return r.getOne(`SELECT `+clinicColumns+` FROM clinics c WHERE c.id = $1`, id)
}

// GetByOwnerID retrieves the clinic owned by a user
func (r *ClinicRepository) GetByOwnerID(ownerID uuid.UUID) (*domain.Clinic, error) {
	return r.getOne(`SELECT `+clinicColumns+` FROM clinics c WHERE c.owner_id = $1`, ownerID)
}

// GetByOwnerAuth0ID retrieves the clinic owned by the user with the given Auth0 subject
func (r *ClinicRepository) GetByOwnerAuth0ID(auth0ID string) (*domain.Clinic, error) {
	return r.getOne(`SELECT `+clinicColumns+` FROM clinics c
		JOIN users u ON u.id = c.owner_id WHERE u.auth0_id = $1`, auth0ID)
}

// GetBySlug retrieves a clinic by its public scheduling slug
func (r *ClinicRepository) GetBySlug(slug string) (*domain.Clinic, error) {
	return r.getOne(`SELECT `+clinicColumns+` FROM clinics c WHERE c.public_slug = $1`, slug)
}

// Create creates a new clinic
func (r *ClinicRepository) Create(clinic *domain.Clinic) (*domain.Clinic, error) {
	row := r.pool.QueryRow(context.Background(), `
		WITH c AS (
			INSERT INTO clinics (owner_id, name, public_slug, slot_minutes, opens_at, closes_at, timezone, monthly_appointment_limit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING *
		) SELECT `+clinicColumns+` FROM c`,
		clinic.OwnerID, clinic.Name, clinic.PublicSlug, clinic.SlotMinutes, clinic.OpensAt,
		clinic.ClosesAt, clinic.Timezone, clinic.MonthlyAppointmentLimit)
	return scanClinic(row)
}

// Update updates clinic settings
func (r *ClinicRepository) Update(clinic *domain.Clinic) (*domain.Clinic, error) {
	row := r.pool.QueryRow(context.Background(), `
		WITH c AS (
			UPDATE clinics SET name = $2, public_slug = $3, slot_minutes = $4, opens_at = $5,
				closes_at = $6, timezone = $7, monthly_appointment_limit = $8, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		) SELECT `+clinicColumns+` FROM c`,
		clinic.ID, clinic.Name, clinic.PublicSlug, clinic.SlotMinutes, clinic.OpensAt,
		clinic.ClosesAt, clinic.Timezone, clinic.MonthlyAppointmentLimit)
	updated, err := scanClinic(row)
	if err != nil {
		return nil, notFound(err, domain.ErrClinicNotFound)
	}
	return updated, nil
}

func (r *ClinicRepository) getOne(query string, args ...any) (*domain.Clinic, error) {
	clinic, err := scanClinic(r.pool.QueryRow(context.Background(), query, args...))
	if err != nil {
		return nil, notFound(err, domain.ErrClinicNotFound)
	}
	return clinic, nil
}

func scanClinic(row pgx.Row) (*domain.Clinic, error) {
	var c domain.Clinic
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.PublicSlug, &c.SlotMinutes, &c.OpensAt, &c.ClosesAt,
		&c.Timezone, &c.MonthlyAppointmentLimit, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

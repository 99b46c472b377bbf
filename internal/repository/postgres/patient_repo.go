package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const patientColumns = `id, clinic_id, name, phone, email, birth_date, notes, created_at, updated_at, deleted_at`

// PatientRepository implements domain.PatientRepository using PostgreSQL
type PatientRepository struct {
	pool *pgxpool.Pool
}

// NewPatientRepository creates a new PatientRepository
func NewPatientRepository(pool *pgxpool.Pool) *PatientRepository {
	return &PatientRepository{pool: pool}
}

// Create creates a new patient
func (r *PatientRepository) Create(patient *domain.Patient) (*domain.Patient, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO patients (clinic_id, name, phone, email, birth_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+patientColumns,
		patient.ClinicID, patient.Name, patient.Phone, stringPtrToPgText(patient.Email),
		birthDateParam(patient.BirthDate), stringPtrToPgText(patient.Notes))
	return scanPatient(row)
}

// GetByID retrieves a non-deleted patient
func (r *PatientRepository) GetByID(clinicID, id int32) (*domain.Patient, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+patientColumns+` FROM patients WHERE clinic_id = $1 AND id = $2 AND deleted_at IS NULL`,
		clinicID, id)
	patient, err := scanPatient(row)
	if err != nil {
		return nil, notFound(err, domain.ErrPatientNotFound)
	}
	return patient, nil
}

// GetByPhone retrieves a non-deleted patient by phone number
func (r *PatientRepository) GetByPhone(clinicID int32, phone string) (*domain.Patient, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+patientColumns+` FROM patients
		WHERE clinic_id = $1 AND phone = $2 AND deleted_at IS NULL
		ORDER BY id LIMIT 1`,
		clinicID, phone)
	patient, err := scanPatient(row)
	if err != nil {
		return nil, notFound(err, domain.ErrPatientNotFound)
	}
	return patient, nil
}

// List returns patients ordered by name, optionally filtered by name/phone
func (r *PatientRepository) List(clinicID int32, search string) ([]*domain.Patient, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+patientColumns+` FROM patients
		WHERE clinic_id = $1 AND deleted_at IS NULL
			AND ($2::text = '' OR name ILIKE '%' || $2::text || '%' OR phone LIKE '%' || $2::text || '%')
		ORDER BY name`,
		clinicID, search)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var result []*domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Update updates a patient
func (r *PatientRepository) Update(patient *domain.Patient) (*domain.Patient, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE patients SET name = $3, phone = $4, email = $5, birth_date = $6, notes = $7, updated_at = NOW()
		WHERE clinic_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+patientColumns,
		patient.ClinicID, patient.ID, patient.Name, patient.Phone, stringPtrToPgText(patient.Email),
		birthDateParam(patient.BirthDate), stringPtrToPgText(patient.Notes))
	updated, err := scanPatient(row)
	if err != nil {
		return nil, notFound(err, domain.ErrPatientNotFound)
	}
	return updated, nil
}

// SoftDelete marks a patient deleted
func (r *PatientRepository) SoftDelete(clinicID, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE patients SET deleted_at = NOW() WHERE clinic_id = $1 AND id = $2 AND deleted_at IS NULL`,
		clinicID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPatientNotFound
	}
	return nil
}

func birthDateParam(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return timeToPgDate(*t)
}

func scanPatient(row pgx.Row) (*domain.Patient, error) {
	var (
		p         domain.Patient
		email     pgtype.Text
		birthDate pgtype.Date
		notes     pgtype.Text
		deletedAt pgtype.Timestamptz
	)
	err := row.Scan(&p.ID, &p.ClinicID, &p.Name, &p.Phone, &email, &birthDate, &notes,
		&p.CreatedAt, &p.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	p.Email = pgTextToStringPtr(email)
	p.Notes = pgTextToStringPtr(notes)
	if birthDate.Valid {
		d := pgDateToTime(birthDate)
		p.BirthDate = &d
	}
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	return &p, nil
}

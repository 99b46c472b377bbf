package domain

import "time"

type Patient struct {
	ID        int32      `json:"id"`
	ClinicID  int32      `json:"clinicId"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Email     *string    `json:"email,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

type PatientRepository interface {
	Create(patient *Patient) (*Patient, error)
	GetByID(clinicID, id int32) (*Patient, error)
	GetByPhone(clinicID int32, phone string) (*Patient, error)
	List(clinicID int32, search string) ([]*Patient, error)
	Update(patient *Patient) (*Patient, error)
	SoftDelete(clinicID, id int32) error
}

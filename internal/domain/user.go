package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// FallbackClinicName names clinics whose owner has no display name yet
const FallbackClinicName = "Minha Clínica"

// User is a clinic owner signed in through Auth0. Email, name and picture
// mirror the identity token claims from the last login.
type User struct {
	ID         uuid.UUID `json:"id"`
	Auth0ID    string    `json:"auth0Id"`
	Email      string    `json:"email"`
	Name       *string   `json:"name"`
	PictureURL *string   `json:"pictureUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DisplayName is the trimmed name claim, or "" when absent
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return strings.TrimSpace(*u.Name)
}

// DefaultClinicName is the name given to the clinic provisioned on first login
func (u *User) DefaultClinicName() string {
	name := u.DisplayName()
	if name == "" {
		return FallbackClinicName
	}
	full := "Clínica " + name
	// cut on a rune boundary so the byte length fits the name column check
	for len(full) > MaxNameLength {
		_, size := utf8.DecodeLastRuneInString(full)
		full = full[:len(full)-size]
	}
	return full
}

type UserRepository interface {
	GetByID(id uuid.UUID) (*User, error)
	GetByAuth0ID(auth0ID string) (*User, error)
	CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*User, error)
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the role-tagged identity row keyed by the auth user id.
type Profile struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Role         Role      `json:"role" db:"role"`
	FullName     string    `json:"full_name" db:"full_name"`
	PharmacyName *string   `json:"pharmacy_name,omitempty" db:"pharmacy_name"`
	ClinicName   *string   `json:"clinic_name,omitempty" db:"clinic_name"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileSummary is the expanded profile embedded in other rows.
type ProfileSummary struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FullName     string    `json:"full_name" db:"full_name"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	PharmacyName *string   `json:"pharmacy_name,omitempty" db:"pharmacy_name"`
}

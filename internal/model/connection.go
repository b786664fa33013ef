package model

import (
	"time"

	"github.com/google/uuid"
)

// Connection links a patient to a pharmacy. The pair is unique in the store.
type Connection struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PatientID  uuid.UUID `json:"patient_id" db:"patient_id"`
	PharmacyID uuid.UUID `json:"pharmacy_id" db:"pharmacy_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ConnectedPharmacy is a connection row with the pharmacy profile expanded.
type ConnectedPharmacy struct {
	Connection
	Pharmacy ProfileSummary `json:"pharmacy" db:"pharmacy"`
}

// ConnectLoginPath sends an anonymous visitor of an invite link to login and
// back to the same link afterwards.
func ConnectLoginPath(pharmacyID string) string {
	return "/login?next=/connect?pharmacy_id=" + pharmacyID
}

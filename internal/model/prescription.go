package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const PrescriptionStatusActive = "active"

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

type Medications []Medication

func (m Medications) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

func (m *Medications) Scan(src interface{}) error {
	return scanJSON(src, m)
}

type Prescription struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	PatientID   uuid.UUID   `json:"patient_id" db:"patient_id"`
	DoctorID    *uuid.UUID  `json:"doctor_id,omitempty" db:"doctor_id"`
	Medications Medications `json:"medications" db:"medications"`
	Status      string      `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

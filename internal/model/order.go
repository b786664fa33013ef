package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusReady, OrderStatusCompleted:
		return true
	}
	return false
}

// Order is a prescription-fulfilment request. Status updates are not checked
// for monotonic progression.
type Order struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	PatientID      uuid.UUID   `json:"patient_id" db:"patient_id"`
	PharmacyID     *uuid.UUID  `json:"pharmacy_id,omitempty" db:"pharmacy_id"`
	PrescriptionID *uuid.UUID  `json:"prescription_id,omitempty" db:"prescription_id"`
	Status         OrderStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderView is an order with patient and prescription expanded.
type OrderView struct {
	Order
	PatientName  *string     `json:"patient_name,omitempty" db:"patient_name"`
	PatientPhone *string     `json:"patient_phone,omitempty" db:"patient_phone"`
	Medications  Medications `json:"medications,omitempty" db:"medications"`
}

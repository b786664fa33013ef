package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BillStatus string

const (
	BillStatusUnpaid BillStatus = "unpaid"
	BillStatusPaid   BillStatus = "paid"
)

// BillItem is one line of a bill.
type BillItem struct {
	Name     string  `json:"name" form:"name" validate:"required"`
	Quantity int     `json:"quantity" form:"quantity" validate:"gt=0"`
	Price    float64 `json:"price" form:"price" validate:"gte=0"`
}

type BillItems []BillItem

func (items BillItems) Value() (driver.Value, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

func (items *BillItems) Scan(src interface{}) error {
	return scanJSON(src, items)
}

// Total sums price*quantity over all lines.
func (items BillItems) Total() float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// Bill is an itemized charge issued by a pharmacy to a patient.
type Bill struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	PharmacyID  uuid.UUID  `json:"pharmacy_id" db:"pharmacy_id"`
	PatientID   uuid.UUID  `json:"patient_id" db:"patient_id"`
	OrderID     *uuid.UUID `json:"order_id,omitempty" db:"order_id"`
	Items       BillItems  `json:"items" db:"items"`
	TotalAmount float64    `json:"total_amount" db:"total_amount"`
	Status      BillStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// BillView is a bill with the counterparty name expanded for dashboards.
type BillView struct {
	Bill
	PatientName  *string `json:"patient_name,omitempty" db:"patient_name"`
	PharmacyName *string `json:"pharmacy_name,omitempty" db:"pharmacy_name"`
}

// BillTransactionResult is the JSON document returned by process_bill_transaction.
type BillTransactionResult struct {
	Success bool       `json:"success"`
	BillID  *uuid.UUID `json:"bill_id,omitempty"`
	Error   string     `json:"error,omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is a pharmacy stock line. Updates are last-write-wins.
type InventoryItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PharmacyID uuid.UUID `json:"pharmacy_id" db:"pharmacy_id"`
	Name       string    `json:"name" db:"name"`
	Quantity   int       `json:"quantity" db:"quantity"`
	Price      float64   `json:"price" db:"price"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// NewInventoryItem is the input of an add/bulk-add.
type NewInventoryItem struct {
	Name     string  `json:"name" form:"name" validate:"required"`
	Quantity int     `json:"quantity" form:"quantity" validate:"gte=0"`
	Price    float64 `json:"price" form:"price" validate:"gte=0"`
}

// InventoryUpdate carries the optional fields of an update.
type InventoryUpdate struct {
	Quantity *int     `json:"quantity,omitempty" form:"quantity" validate:"omitempty,gte=0"`
	Price    *float64 `json:"price,omitempty" form:"price" validate:"omitempty,gte=0"`
}

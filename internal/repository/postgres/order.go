package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

type orderRepository struct {
	BaseRepository
}

func NewOrderRepository(base BaseRepository) repository.OrderRepository {
	return &orderRepository{base}
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id, pharmacyID uuid.UUID, status model.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND pharmacy_id = $4`

	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id, pharmacyID)
	if err != nil {
		return mapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *orderRepository) ListForPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*model.OrderView, error) {
	query := `
		SELECT o.id, o.patient_id, o.pharmacy_id, o.prescription_id, o.status, o.created_at, o.updated_at,
			p.full_name AS patient_name,
			p.phone AS patient_phone,
			COALESCE(rx.medications, '[]'::jsonb) AS medications
		FROM orders o
		LEFT JOIN profiles p ON p.id = o.patient_id
		LEFT JOIN prescriptions rx ON rx.id = o.prescription_id
		WHERE o.pharmacy_id = $1
		ORDER BY o.created_at DESC
	`

	var orders []*model.OrderView
	if err := r.db.SelectContext(ctx, &orders, query, pharmacyID); err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

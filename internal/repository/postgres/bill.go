package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

const billColumns = `b.id, b.pharmacy_id, b.patient_id, b.order_id, b.items, b.total_amount, b.status, b.created_at`

type billRepository struct {
	BaseRepository
}

func NewBillRepository(base BaseRepository) repository.BillRepository {
	return &billRepository{base}
}

// ProcessTransaction calls process_bill_transaction, which creates the bill,
// decrements stock by item name and advances the linked order in one
// store-side transaction.
func (r *billRepository) ProcessTransaction(ctx context.Context, pharmacyID uuid.UUID, orderID *uuid.UUID, patientID uuid.UUID, items model.BillItems, total float64) (*model.BillTransactionResult, error) {
	query := `SELECT process_bill_transaction($1, $2, $3, $4::jsonb, $5)`

	var raw []byte
	if err := r.db.QueryRowxContext(ctx, query, pharmacyID, orderID, patientID, items, total).Scan(&raw); err != nil {
		return nil, mapError(err)
	}

	var result model.BillTransactionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode bill transaction result: %w", err)
	}
	return &result, nil
}

func (r *billRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills b WHERE b.id = $1`

	var bill model.Bill
	if err := r.db.GetContext(ctx, &bill, query, id); err != nil {
		return nil, mapError(err)
	}
	return &bill, nil
}

// MarkPaid flips an unpaid bill owned by patientID to paid. A bill that is
// already paid yields repository.ErrAlreadyPaid.
func (r *billRepository) MarkPaid(ctx context.Context, id, patientID uuid.UUID) (*model.Bill, error) {
	query := `
		UPDATE bills b SET status = 'paid'
		WHERE b.id = $1 AND b.patient_id = $2 AND b.status = 'unpaid'
		RETURNING ` + billColumns

	var bill model.Bill
	err := r.db.GetContext(ctx, &bill, query, id, patientID)
	if err == nil {
		return &bill, nil
	}
	if err = mapError(err); !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	var status model.BillStatus
	err = r.db.GetContext(ctx, &status, `SELECT status FROM bills WHERE id = $1 AND patient_id = $2`, id, patientID)
	if err != nil {
		return nil, mapError(err)
	}
	if status == model.BillStatusPaid {
		return nil, repository.ErrAlreadyPaid
	}
	return nil, repository.ErrNotFound
}

func (r *billRepository) ListForPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*model.BillView, error) {
	query := `
		SELECT ` + billColumns + `, p.full_name AS patient_name
		FROM bills b
		LEFT JOIN profiles p ON p.id = b.patient_id
		WHERE b.pharmacy_id = $1
		ORDER BY b.created_at DESC
	`

	var bills []*model.BillView
	if err := r.db.SelectContext(ctx, &bills, query, pharmacyID); err != nil {
		return nil, mapError(err)
	}
	return bills, nil
}

func (r *billRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.BillView, error) {
	query := `
		SELECT ` + billColumns + `, COALESCE(p.pharmacy_name, p.full_name) AS pharmacy_name
		FROM bills b
		LEFT JOIN profiles p ON p.id = b.pharmacy_id
		WHERE b.patient_id = $1
		ORDER BY b.created_at DESC
	`

	var bills []*model.BillView
	if err := r.db.SelectContext(ctx, &bills, query, patientID); err != nil {
		return nil, mapError(err)
	}
	return bills, nil
}

func (r *billRepository) ListUnnotified(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills b
		WHERE b.created_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM messages m
			WHERE m.type = 'bill' AND m.metadata->>'bill_id' = b.id::text
		  )
		ORDER BY b.created_at ASC
		LIMIT $2
	`

	var bills []*model.Bill
	if err := r.db.SelectContext(ctx, &bills, query, createdBefore, limit); err != nil {
		return nil, mapError(err)
	}
	return bills, nil
}

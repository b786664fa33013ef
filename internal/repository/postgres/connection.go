package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

type connectionRepository struct {
	BaseRepository
}

func NewConnectionRepository(base BaseRepository) repository.ConnectionRepository {
	return &connectionRepository{base}
}

// Create links a patient to a pharmacy. A repeated pair fails with an error
// wrapping repository.ErrDuplicate.
func (r *connectionRepository) Create(ctx context.Context, patientID, pharmacyID uuid.UUID) error {
	query := `
		INSERT INTO patient_pharmacies (id, patient_id, pharmacy_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, uuid.New(), patientID, pharmacyID, time.Now().UTC())
	return mapError(err)
}

func (r *connectionRepository) Get(ctx context.Context, patientID, pharmacyID uuid.UUID) (*model.Connection, error) {
	query := `
		SELECT id, patient_id, pharmacy_id, created_at
		FROM patient_pharmacies
		WHERE patient_id = $1 AND pharmacy_id = $2
	`

	var conn model.Connection
	if err := r.db.GetContext(ctx, &conn, query, patientID, pharmacyID); err != nil {
		return nil, mapError(err)
	}
	return &conn, nil
}

func (r *connectionRepository) ListPharmacies(ctx context.Context, patientID uuid.UUID) ([]*model.ConnectedPharmacy, error) {
	query := `
		SELECT c.id, c.patient_id, c.pharmacy_id, c.created_at,
			p.id AS "pharmacy.id",
			p.full_name AS "pharmacy.full_name",
			p.phone AS "pharmacy.phone",
			p.pharmacy_name AS "pharmacy.pharmacy_name"
		FROM patient_pharmacies c
		JOIN profiles p ON p.id = c.pharmacy_id
		WHERE c.patient_id = $1
		ORDER BY c.created_at ASC
	`

	var conns []*model.ConnectedPharmacy
	if err := r.db.SelectContext(ctx, &conns, query, patientID); err != nil {
		return nil, mapError(err)
	}
	return conns, nil
}

func (r *connectionRepository) ListPatients(ctx context.Context, pharmacyID uuid.UUID) ([]*model.ProfileSummary, error) {
	query := `
		SELECT p.id, p.full_name, p.phone, p.pharmacy_name
		FROM patient_pharmacies c
		JOIN profiles p ON p.id = c.patient_id
		WHERE c.pharmacy_id = $1
		ORDER BY c.created_at ASC
	`

	var patients []*model.ProfileSummary
	if err := r.db.SelectContext(ctx, &patients, query, pharmacyID); err != nil {
		return nil, mapError(err)
	}
	return patients, nil
}

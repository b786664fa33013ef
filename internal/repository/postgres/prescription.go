package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(base BaseRepository) repository.PrescriptionRepository {
	return &prescriptionRepository{base}
}

func (r *prescriptionRepository) ListActiveForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	query := `
		SELECT id, patient_id, doctor_id, medications, status, created_at
		FROM prescriptions
		WHERE patient_id = $1 AND status = $2
		ORDER BY created_at DESC
	`

	var prescriptions []*model.Prescription
	if err := r.db.SelectContext(ctx, &prescriptions, query, patientID, model.PrescriptionStatusActive); err != nil {
		return nil, mapError(err)
	}
	return prescriptions, nil
}

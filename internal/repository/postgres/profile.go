package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

const profileColumns = `id, role, full_name, pharmacy_name, clinic_name, phone, created_at, updated_at`

type profileRepository struct {
	BaseRepository
}

func NewProfileRepository(base BaseRepository) repository.ProfileRepository {
	return &profileRepository{base}
}

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	var profile model.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, mapError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetWithRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 AND role = $2`

	var profile model.Profile
	if err := r.db.GetContext(ctx, &profile, query, id, role); err != nil {
		return nil, mapError(err)
	}
	return &profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (id, role, full_name, pharmacy_name, clinic_name, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			role = EXCLUDED.role,
			full_name = EXCLUDED.full_name,
			phone = COALESCE(EXCLUDED.phone, profiles.phone),
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.Role,
		profile.FullName,
		profile.PharmacyName,
		profile.ClinicName,
		profile.Phone,
		now,
	)
	if err != nil {
		return mapError(err)
	}
	profile.UpdatedAt = now
	return nil
}

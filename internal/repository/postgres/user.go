package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

// Create inserts the credential row. The on_auth_user_created trigger turns
// the metadata into a profile inside the same statement.
func (r *userRepository) Create(ctx context.Context, user *model.AuthUser) error {
	query := `
		INSERT INTO auth_users (id, email, password_hash, raw_user_meta_data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Metadata,
		user.CreatedAt,
	)
	return mapError(err)
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.AuthUser, error) {
	query := `
		SELECT id, email, password_hash, raw_user_meta_data, last_sign_in_at, created_at
		FROM auth_users
		WHERE id = $1
	`

	var user model.AuthUser
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	query := `
		SELECT id, email, password_hash, raw_user_meta_data, last_sign_in_at, created_at
		FROM auth_users
		WHERE lower(email) = lower($1)
	`

	var user model.AuthUser
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *userRepository) TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE auth_users SET last_sign_in_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to record sign-in: %w", mapError(err))
	}
	return nil
}

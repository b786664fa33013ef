package postgres

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

// SQLSTATE codes the application gives meaning to.
const (
	codeUniqueViolation = "23505"
	codeUndefinedTable  = "42P01"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// mapError translates driver errors into repository errors, keeping the
// store's own message as the error text.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		storeErr := &repository.StoreError{
			Code:    string(pqErr.Code),
			Message: pqErr.Message,
		}
		switch storeErr.Code {
		case codeUniqueViolation:
			storeErr.Kind = repository.ErrDuplicate
		case codeUndefinedTable:
			storeErr.Kind = repository.ErrUndefinedTable
		}
		return storeErr
	}
	return err
}

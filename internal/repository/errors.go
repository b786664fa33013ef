package repository

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate key value violates unique constraint")
	ErrUndefinedTable = errors.New("relation does not exist")
	ErrAlreadyPaid    = errors.New("bill is already paid")
)

// StoreError carries the store's error code and raw message. Kind, when set,
// is one of the sentinel errors above so callers can use errors.Is.
type StoreError struct {
	Code    string
	Message string
	Kind    error
}

func (e *StoreError) Error() string {
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Kind
}

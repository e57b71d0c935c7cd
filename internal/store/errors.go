package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidReference  = errors.New("invalid reference")
	ErrNotCancelable     = errors.New("order not cancelable")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidInput      = errors.New("invalid input")
)

// Error is a store failure with a caller-facing message. It unwraps to one
// of the sentinel errors above so callers can branch with errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// translate maps driver and gorm failures that reach the store boundary
// onto store errors. Unknown errors are wrapped and returned as-is.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return newError(ErrConflict, "%s: duplicate value for a unique field", op)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return newError(ErrInvalidReference, "%s: referenced record does not exist", op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

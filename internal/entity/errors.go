package entity

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrReferential  = errors.New("referenced record is missing or inactive")
	ErrInvalidState = errors.New("invalid state transition")
)

// ReferentialError names the input field whose referenced record
// does not exist or is deactivated.
type ReferentialError struct {
	Field  string
	ID     int64
	Reason string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Field, e.ID, e.Reason)
}

func (e *ReferentialError) Unwrap() error {
	return ErrReferential
}

func Missing(field string, id int64) error {
	return &ReferentialError{Field: field, ID: id, Reason: "does not exist"}
}

func Inactive(field string, id int64) error {
	return &ReferentialError{Field: field, ID: id, Reason: "is deactivated"}
}

func NotFound(name string, id int64) error {
	return fmt.Errorf("%s with id %d: %w", name, id, ErrNotFound)
}

func Invalid(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

package core

import (
	"errors"
	"strings"
)

var (
	// ErrNoSelection is returned by delete when no expense was chosen.
	ErrNoSelection = errors.New("no expense selected")
	// ErrNotFound is returned when an expense id does not exist.
	ErrNotFound = errors.New("expense not found")
	// ErrInvalidAmount is returned by ParseAmount.
	ErrInvalidAmount = errors.New("invalid amount")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists the fields that prevented an operation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// FieldNames returns the offending field names in the order reported.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StorageUnavailableError wraps a failure of the backing store. The
// operation it aborted left persisted data unchanged.
type StorageUnavailableError struct {
	Op  string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return "storage unavailable: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err as a StorageUnavailableError for op. A nil err
// stays nil.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageUnavailableError{Op: op, Err: err}
}

// IsStorageUnavailable reports whether err came from the backing store.
func IsStorageUnavailable(err error) bool {
	var target *StorageUnavailableError
	return errors.As(err, &target)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

package domain

import (
	"fmt"
	"strings"
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field that failed validation.
// The joined summary is computed once so callers can render either form.
type ValidationError struct {
	Errors  []FieldError
	summary string
}

// NewValidationError builds a ValidationError keeping the given field order.
func NewValidationError(fields []FieldError) *ValidationError {
	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		messages = append(messages, f.Message)
	}
	return &ValidationError{
		Errors:  append([]FieldError(nil), fields...),
		summary: strings.Join(messages, ", "),
	}
}

func (e *ValidationError) Error() string {
	return e.summary
}

// Fields returns the names of the invalid fields in report order.
func (e *ValidationError) Fields() []string {
	names := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors {
		names = append(names, f.Field)
	}
	return names
}

// Has reports whether field is among the invalid fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Errors {
		if f.Field == field {
			return true
		}
	}
	return false
}

// StorageError is returned when the review store is unreachable or rejects a write.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err as a failure of the given store operation.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("review store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotifyError is returned by a notification channel that failed to deliver.
// It never reaches HTTP clients.
type NotifyError struct {
	Channel string
	Err     error
}

func (e *NotifyError) Error() string {
	if e.Channel == "" {
		return fmt.Sprintf("notify: %v", e.Err)
	}
	return fmt.Sprintf("notify %s: %v", e.Channel, e.Err)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

package sample

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation indicates a candidate violates the sample schema.
	ErrValidation = errors.New("invalid sample")
	// ErrIdentifier indicates the sample ID inputs are incomplete.
	ErrIdentifier = errors.New("sample id inputs incomplete")
	// ErrNotFound indicates no sample carries the requested ID.
	ErrNotFound = errors.New("sample not found")
	// ErrCorruptDocument indicates the persisted document could not be parsed.
	ErrCorruptDocument = errors.New("sample document corrupt")
	// ErrDuplicateID indicates a derived ID is already taken by another sample.
	ErrDuplicateID = errors.New("sample id already in use")
	// ErrConflict indicates the persisted document changed since it was loaded.
	ErrConflict = errors.New("sample document modified by another writer")
)

// Reason classifies a field violation.
type Reason string

const (
	ReasonMissing    Reason = "Missing"
	ReasonWrongType  Reason = "WrongType"
	ReasonOutOfEnum  Reason = "OutOfEnum"
	ReasonOutOfRange Reason = "OutOfRange"
)

// FieldError names a field and why it was rejected.
type FieldError struct {
	Field  string `json:"field"`
	Reason Reason `json:"reason"`
}

func (e FieldError) String() string {
	return e.Field + ": " + string(e.Reason)
}

// ValidationError lists every schema violation of a candidate.
type ValidationError struct {
	Violations []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// IdentifierError lists the missing ID inputs.
type IdentifierError struct {
	Missing []string
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIdentifier, strings.Join(e.Missing, ", "))
}

func (e *IdentifierError) Unwrap() error { return ErrIdentifier }

// NotFoundError carries the sample ID that was not found.
type NotFoundError struct {
	SampleID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNotFound, e.SampleID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PersistenceCorruptError describes a document that failed to parse. Load
// recovers from it by starting with an empty collection.
type PersistenceCorruptError struct {
	Key string
	Err error
}

func (e *PersistenceCorruptError) Error() string {
	return fmt.Sprintf("%s: slot %q: %v", ErrCorruptDocument, e.Key, e.Err)
}

func (e *PersistenceCorruptError) Unwrap() []error { return []error{ErrCorruptDocument, e.Err} }

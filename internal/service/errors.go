package service

import (
	"errors"
	"fmt"
	"strings"
)

// Terminal resolution errors. Neither is retried by the engine: the caller
// decides whether to re-queue the transaction.
var (
	// ErrUnmapped means no active routing exists for the key.
	ErrUnmapped = errors.New("no active partner mapping for routing key")

	// ErrPartnerUnavailable means the mapped partner is inactive or suspended
	// and no eligible failover partner remains.
	ErrPartnerUnavailable = errors.New("mapped partner unavailable and no failover candidate")

	// ErrNoApplicableTariff means no tariff matches the transaction context.
	// The transaction must be rejected, never given a guessed fee.
	ErrNoApplicableTariff = errors.New("no applicable tariff for transaction context")

	// ErrConcurrentModification is an optimistic-lock conflict; the caller
	// should re-read and retry the mutation.
	ErrConcurrentModification = errors.New("record was modified concurrently")
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError rejects a mutation before anything is persisted. It carries
// every violated field so admin clients can annotate their forms.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalidField(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

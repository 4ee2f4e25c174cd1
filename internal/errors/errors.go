// Package errors defines the error taxonomy for the projection engine.
// Every recoverable condition is handled locally inside a handler (log plus
// early return); nothing here is meant to abort event processing.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies a projection error.
type Category string

const (
	// CategoryNotFound means a referenced entity was absent when a
	// non-creation event expected it to exist.
	CategoryNotFound Category = "not_found"
	// CategoryReverted means a contract read-back call reverted or returned
	// the zero-address owner sentinel. Treated identically to not-found.
	CategoryReverted Category = "reverted"
	// CategoryRPC means the read-back transport itself failed.
	CategoryRPC Category = "rpc"
	// CategoryStore means the entity store rejected a load or save.
	CategoryStore Category = "store"
)

// ProjectionError carries the category plus the entity coordinates that
// produced it.
type ProjectionError struct {
	Category Category
	Kind     string // entity kind, e.g. "subscription"
	Key      string // natural key
	Cause    error
}

func (e *ProjectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s %s: %v", e.Category, e.Kind, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s %s %s", e.Category, e.Kind, e.Key)
}

func (e *ProjectionError) Unwrap() error { return e.Cause }

// NewNotFound reports a missing entity.
func NewNotFound(kind, key string) *ProjectionError {
	return &ProjectionError{Category: CategoryNotFound, Kind: kind, Key: key}
}

// NewReverted reports a reverted or empty read-back.
func NewReverted(kind, key string, cause error) *ProjectionError {
	return &ProjectionError{Category: CategoryReverted, Kind: kind, Key: key, Cause: cause}
}

// NewRPC reports a read-back transport failure.
func NewRPC(kind, key string, cause error) *ProjectionError {
	return &ProjectionError{Category: CategoryRPC, Kind: kind, Key: key, Cause: cause}
}

// NewStore reports an entity store failure.
func NewStore(kind, key string, cause error) *ProjectionError {
	return &ProjectionError{Category: CategoryStore, Kind: kind, Key: key, Cause: cause}
}

// IsNotFound reports whether err is a missing-entity or reverted read-back
// condition; handlers treat the two identically.
func IsNotFound(err error) bool {
	var pe *ProjectionError
	if errors.As(err, &pe) {
		return pe.Category == CategoryNotFound || pe.Category == CategoryReverted
	}
	return false
}

// CategoryOf returns the category of err, or "" for uncategorized errors.
func CategoryOf(err error) Category {
	var pe *ProjectionError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// Package catalog holds the engine's domain rules: the error taxonomy shared
// by all repositories, the book status state machine, and the category forest
// traversal that replaces recursive SQL tree queries.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError carries the ordered list of rule violations for a rejected
// entity. Nothing is written when it is returned.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NotFoundError means the referenced id does not resolve to a live,
// non-deleted entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError means the operation would violate a business invariant:
// deleting a borrowed book, an invalid status transition, a cyclic category
// parent, or a duplicate category name.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// StorageError wraps an unexpected persistence failure with its cause
// preserved for logging. Repositories convert every raw storage error into
// one of these; callers never see gorm or sqlite errors directly.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// WrapStorage converts err into a StorageError unless it already belongs to
// the catalog taxonomy, in which case it passes through unchanged.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve  *ValidationError
		nfe *NotFoundError
		ce  *ConflictError
		se  *StorageError
	)
	if errors.As(err, &ve) || errors.As(err, &nfe) || errors.As(err, &ce) || errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

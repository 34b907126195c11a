// Package apperr defines the error taxonomy shared by stores, use cases and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected before any write happens.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}

	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

var (
	ErrInvalidAmount = NewValidationError("amount", "must be greater than zero")
	ErrInvalidType   = NewValidationError("type", "must be income or expense")
)

// NotFoundError reports an id that does not resolve to a record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}

	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is matches another NotFoundError for the same resource. An empty ID on the
// target matches any id, so package level sentinels work with errors.Is.
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}

	return t.Resource == e.Resource && (t.ID == "" || t.ID == e.ID)
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ProtectedResourceError reports an attempt to remove a record the system owns.
type ProtectedResourceError struct {
	Resource string
	ID       string
}

func (e *ProtectedResourceError) Error() string {
	return fmt.Sprintf("%s %s is protected and cannot be deleted", e.Resource, e.ID)
}

func Protected(resource, id string) error {
	return &ProtectedResourceError{Resource: resource, ID: id}
}

// StorageError wraps a failure of the underlying persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError. A nil err stays nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}

	return &StorageError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsProtected(err error) bool {
	var target *ProtectedResourceError
	return errors.As(err, &target)
}

func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

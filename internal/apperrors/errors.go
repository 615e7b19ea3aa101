// Package apperrors holds the error taxonomy shared by stores, services and
// handlers. Each kind maps to exactly one HTTP status in StatusCode.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports malformed or forbidden input
type ValidationError struct {
	Message string
	// Fields maps a field name to what is wrong with it
	Fields        map[string]string
	InvalidFields []string
	AllowedFields []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports an unknown id
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ForbiddenError reports an authorization denial
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// AuthError reports bad credentials or a missing session
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ConflictError reports a uniqueness violation such as a duplicate email
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StoreError wraps an I/O or database failure. Its message stays server side.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Validation builds a ValidationError with an optional per-field map
func Validation(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// ForbiddenFields builds the whitelist rejection error
func ForbiddenFields(invalid, allowed []string) *ValidationError {
	return &ValidationError{
		Message:       "invalid updates, request contains forbidden fields",
		InvalidFields: invalid,
		AllowedFields: allowed,
	}
}

// NotFound builds a NotFoundError for the given resource and id
func NotFound(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Forbidden builds a ForbiddenError
func Forbidden(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// Unauthorized builds an AuthError
func Unauthorized(message string) *AuthError {
	return &AuthError{Message: message}
}

// Conflict builds a ConflictError
func Conflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// Store wraps err as a StoreError unless it is already one of ours
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// ErrInvalidCredentials is the single message returned for any failed login
var ErrInvalidCredentials = Unauthorized("invalid credentials")

// ErrSelfDelete is returned when an admin tries to delete their own account
var ErrSelfDelete = Validation("admins cannot delete their own account", nil)

// IsDomain reports whether err is one of the client-facing kinds
func IsDomain(err error) bool {
	var (
		ve *ValidationError
		ne *NotFoundError
		fe *ForbiddenError
		ae *AuthError
		ce *ConflictError
	)
	return errors.As(err, &ve) || errors.As(err, &ne) || errors.As(err, &fe) ||
		errors.As(err, &ae) || errors.As(err, &ce)
}

// StatusCode maps an error to its HTTP status
func StatusCode(err error) int {
	var (
		ve *ValidationError
		ne *NotFoundError
		fe *ForbiddenError
		ae *AuthError
		ce *ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		return http.StatusBadRequest
	case errors.As(err, &ne):
		return http.StatusNotFound
	case errors.As(err, &fe):
		return http.StatusForbidden
	case errors.As(err, &ae):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

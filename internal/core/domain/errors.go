package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrSessionRevoked     = errors.New("session is no longer active")
	ErrForbidden          = errors.New("access forbidden")

	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")

	ErrClientNotFound      = errors.New("client not found")
	ErrTransporterNotFound = errors.New("transporter not found")
	ErrProfileExists       = errors.New("identity already has a profile")
	ErrAmbiguousIdentity   = errors.New("identity holds both a client and a transporter profile")

	ErrProductNotFound      = errors.New("product not found")
	ErrDuplicateProductName = errors.New("product with this name already exists")
	ErrPhotoStorageDisabled = errors.New("photo storage is not configured")

	ErrOrderNotFound          = errors.New("order not found")
	ErrNoTransporterAvailable = errors.New("no transporters available")
	ErrOrderAlreadyDelivered  = errors.New("order already delivered")
	ErrIdempotencyKeyInUse    = errors.New("a request with this idempotency key is still in progress")
)

// ValidationError reports field-level input problems. Fields maps the
// offending field name (as it appears on the wire) to a human-readable message.
type ValidationError struct {
	Fields map[string]string
	cause  error
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// WithCause attaches a sentinel so callers can still match it with errors.Is.
func (e *ValidationError) WithCause(err error) *ValidationError {
	e.cause = err
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.cause }

// ProfileConflictError names the profile kind that blocks a second profile
// for the same identity.
type ProfileConflictError struct {
	UserID   uint
	Existing IdentityKind
}

func (e *ProfileConflictError) Error() string {
	return "identity already has a " + string(e.Existing) + " profile"
}

func (e *ProfileConflictError) Unwrap() error { return ErrProfileExists }

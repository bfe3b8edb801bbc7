// Package apperrors defines the domain error taxonomy. Controllers map
// kinds onto HTTP statuses; domain packages never format HTTP responses.
package apperrors

import "errors"

type Kind int

const (
	// KindNotFound means a referenced entity is absent.
	KindNotFound Kind = iota + 1
	// KindValidation covers malformed input, cross-entity mismatches,
	// duplicate submissions and per-quiz limits.
	KindValidation
	// KindPermissionDenied is an authorization failure on a write/delete.
	KindPermissionDenied
	// KindConflict is a storage-level uniqueness violation that raced past
	// application checks. Callers see it as a validation failure.
	KindConflict
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func PermissionDenied(message string) error {
	return &Error{Kind: KindPermissionDenied, Message: message}
}

func Conflict(message string, err error) error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

// KindOf returns the kind of err, or 0 for non-domain errors.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return 0
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

func IsValidation(err error) bool { return KindOf(err) == KindValidation }

func IsPermissionDenied(err error) bool { return KindOf(err) == KindPermissionDenied }

func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// Message returns the user-facing message for domain errors and a generic
// one otherwise, so storage internals never leak to clients.
func Message(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "Something went wrong!"
}

// HTTPStatus maps a domain error onto its response status. Conflicts are
// reported as 400 because callers are told "already taken", not given a
// retryable 409.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return 404
	case KindValidation, KindConflict:
		return 400
	case KindPermissionDenied:
		return 403
	default:
		return 500
	}
}

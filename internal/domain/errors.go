package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so transports can map it to a status code
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindNotFound     ErrorKind = "not_found"
	KindProvider     ErrorKind = "provider"
	KindStore        ErrorKind = "store"
	KindUnauthorized ErrorKind = "unauthorized"
)

// Error is a classified domain error.
// errors.Is matches any other *Error of the same kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// NewError creates a classified error
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind sentinels, match with errors.Is
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrProvider     = &Error{Kind: KindProvider}
	ErrStore        = &Error{Kind: KindStore}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

// Domain errors
var (
	ErrRecordNotFound    = NewError(KindNotFound, "dns record not found", nil)
	ErrZoneNotFound      = NewError(KindNotFound, "hosted zone not found", nil)
	ErrUserNotFound      = NewError(KindNotFound, "user not found", nil)
	ErrDuplicateRecord   = NewError(KindConflict, "dns record already exists for this domain", nil)
	ErrDuplicateUser     = NewError(KindConflict, "user already exists", nil)
	ErrApexHasSubdomains = NewError(KindConflict, "cannot delete apex while subdomains exist", nil)
	ErrChangeNotAccepted = NewError(KindProvider, "dns provider did not accept the change", nil)
	ErrInvalidField      = NewError(KindValidation, "unknown record field", nil)
	ErrInvalidUpload     = NewError(KindValidation, "only CSV files are allowed", nil)
	ErrBadCredentials    = NewError(KindUnauthorized, "authentication failed, invalid username/password", nil)
)

// ProviderError wraps a DNS provider failure
func ProviderError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return NewError(KindProvider, "dns provider: "+operation, err)
}

// StoreError wraps a persistence failure
func StoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return NewError(KindStore, "store: "+operation, err)
}

// KindOf returns the kind of a classified error, or "" for anything else
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

package erpapi

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the store rejects the credential. The
	// bound authorizer has already been revoked when a caller sees it.
	ErrUnauthorized = errors.New("erpapi: unauthorized")
	// ErrNotFound indicates the target record does not exist (or no longer does).
	ErrNotFound = errors.New("erpapi: not found")
	// ErrTransport wraps network failures and unexpected server responses.
	ErrTransport = errors.New("erpapi: transport failure")
	// ErrInvalidCredentials is returned by Login and Register on rejection.
	ErrInvalidCredentials = errors.New("erpapi: invalid credentials")
)

// ValidationError carries the store's explanation for a rejected payload.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("erpapi: validation failed (status %d)", e.Status)
	}
	return "erpapi: " + e.Message
}

// IsValidation reports whether err is a store-side validation rejection and
// returns its message.
func IsValidation(err error) (string, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message, true
	}
	return "", false
}

// StatusError describes an unexpected non-2xx response. It matches ErrTransport.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("erpapi: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("erpapi: %s %s: status %d", e.Method, e.Path, e.Status)
}

// Is makes StatusError match ErrTransport.
func (e *StatusError) Is(target error) bool {
	return target == ErrTransport
}

// Package errors provides structured error types for the p4view backend.
// These errors provide context about what operation failed and where.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindTransport
	KindParse
	KindAuth
	KindConfig
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindTransport:
		return "transport error"
	case KindParse:
		return "parse error"
	case KindAuth:
		return "authentication error"
	case KindConfig:
		return "configuration error"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for p4view.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Server errors
func ServerNotFound(id string) error {
	return E(Op("store.GetServer"), KindNotFound, fmt.Sprintf("server %s not found", id))
}

// LoginConflictError is returned when a login is attempted while a session
// for a different server is active. It carries the active server's id so
// callers can offer a logout-first remediation flow.
type LoginConflictError struct {
	ActiveServerID string
}

func (e *LoginConflictError) Error() string {
	return fmt.Sprintf("another server (%s) has an active session, log out first", e.ActiveServerID)
}

// LoginConflict reports that server activeID already holds the session.
func LoginConflict(activeID string) error {
	return E(Op("auth.Login"), KindAuth, &LoginConflictError{ActiveServerID: activeID})
}

// Auth errors
func TicketNotFound() error {
	return E(Op("provider.Login"), KindAuth, "no ticket found in login output")
}

// Store errors
func StoreCorrupt(key string, err error) error {
	return E(Op("store.Get"), KindConfig, fmt.Sprintf("stored value for %q is corrupt", key), err)
}

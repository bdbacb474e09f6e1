// Package provider defines the backend-agnostic contract for talking to a
// Perforce server, plus the concrete CLI-backed implementation. Callers
// receive uniform Result values and never learn which backend is active.
package provider

import (
	"context"

	"github.com/sgrant/p4view/internal/ztag"
)

// Result is the uniform wrapper every provider operation returns. Callers
// must check Success before reading Data; Error is a human-readable
// message, not a structured code. Nothing throws past this boundary.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Ok wraps data in a successful Result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail wraps an error message in a failed Result.
func Fail[T any](msg string) Result[T] {
	return Result[T]{Success: false, Error: msg}
}

// Provider is the capability contract both backends satisfy.
type Provider interface {
	// GetSubmittedChanges lists submitted changelists, newest first.
	// maxCount <= 0 means no limit; depotPath filters by depot syntax
	// path when non-empty.
	GetSubmittedChanges(ctx context.Context, maxCount int, depotPath string) Result[[]ztag.ChangelistInfo]

	// GetPendingChanges lists pending changelists for user. When user is
	// empty the current user is resolved first; failure to resolve is
	// reported as its own error.
	GetPendingChanges(ctx context.Context, user string) Result[[]ztag.ChangelistInfo]

	// GetCurrentUser returns the username the ambient configuration
	// resolves to.
	GetCurrentUser(ctx context.Context) Result[string]

	// RunInfoCommand probes the server at address, independent of any
	// ambient session.
	RunInfoCommand(ctx context.Context, address string) Result[ztag.ServerInfo]

	// Login authenticates against address and returns the issued ticket.
	Login(ctx context.Context, address, username, password string) Result[string]

	// Logout invalidates the server-side session for address/username.
	Logout(ctx context.Context, address, username string) Result[bool]

	// ValidateTicket reports whether the ticket is still accepted by the
	// server. Any failure collapses to false.
	ValidateTicket(ctx context.Context, address, username, ticket string) Result[bool]

	// GetTickets lists the credential tickets known to the local ticket
	// store.
	GetTickets(ctx context.Context) Result[[]ztag.Ticket]
}

// Package auth orchestrates login, logout, and session validation against
// the provider and the session/server stores, enforcing the
// single-active-session invariant: at most one authenticated session
// exists process-wide, and switching servers requires an explicit logout.
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/sgrant/p4view/internal/errors"
	"github.com/sgrant/p4view/internal/logger"
	"github.com/sgrant/p4view/internal/provider"
	"github.com/sgrant/p4view/internal/store"
)

// Manager is the session state machine. It holds its collaborators
// explicitly rather than reaching for package-level state, so tests can
// construct isolated instances.
type Manager struct {
	provider provider.Provider
	servers  *store.ServerStore
	sessions *store.SessionStore
}

// NewManager returns a session manager over the given collaborators.
func NewManager(p provider.Provider, servers *store.ServerStore, sessions *store.SessionStore) *Manager {
	return &Manager{provider: p, servers: servers, sessions: sessions}
}

// LoginResult reports a login attempt. When NeedsLogout is true the
// request was rejected because a session for CurrentServerID is active;
// the caller should offer a logout-first remediation flow.
type LoginResult struct {
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
	NeedsLogout     bool   `json:"needsLogout,omitempty"`
	CurrentServerID string `json:"currentServerId,omitempty"`
}

// loginFailure maps an error to a LoginResult. A login conflict in the
// chain carries the active server's id, which drives the needs-logout
// remediation flow.
func loginFailure(err error) LoginResult {
	result := LoginResult{Error: err.Error()}

	var conflict *errors.LoginConflictError
	if stderrors.As(err, &conflict) {
		result.NeedsLogout = true
		result.CurrentServerID = conflict.ActiveServerID
	}
	return result
}

// SessionStatus is a pure read of the session state.
type SessionStatus struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	ServerID   string `json:"serverId,omitempty"`
	ServerName string `json:"serverName,omitempty"`
	Username   string `json:"username,omitempty"`
}

// Login authenticates against the given server and stores the session.
//
// The check-then-act against the session store is not atomic: two logins
// racing each other can both pass the no-other-session check before
// either writes. Acceptable for a single-user desktop tool.
func (m *Manager) Login(ctx context.Context, serverID, username, password string) LoginResult {
	log := logger.ComponentLogger("auth")

	sess, err := m.sessions.Get()
	if err != nil {
		return LoginResult{Error: err.Error()}
	}
	if sess != nil && sess.ServerID != serverID {
		// Never auto-switch servers; no subprocess is invoked.
		log.Info("login rejected, another session is active", "requested", serverID, "active", sess.ServerID)
		return loginFailure(errors.LoginConflict(sess.ServerID))
	}

	server, err := m.servers.Get(serverID)
	if err != nil {
		return LoginResult{Error: fmt.Sprintf("server %s not found", serverID)}
	}

	res := m.provider.Login(ctx, server.Address, username, password)
	if !res.Success {
		return LoginResult{Error: res.Error}
	}

	// Overwrite, never merge: a new login replaces whatever was stored.
	session := store.ServerSession{
		ServerID: serverID,
		Username: username,
		Ticket:   res.Data,
		LoginAt:  time.Now().UTC(),
	}
	if err := m.sessions.Put(session); err != nil {
		return LoginResult{Error: err.Error()}
	}

	log.Info("login succeeded", "server", serverID, "user", username)
	return LoginResult{Success: true}
}

// Logout ends the session for the given server. Logging out of a server
// that holds no session is a successful no-op. The provider logout is
// best-effort; the local session is cleared unconditionally because stale
// "logged in" state is worse than an unnecessary logout.
func (m *Manager) Logout(ctx context.Context, serverID string) provider.Result[bool] {
	log := logger.ComponentLogger("auth")

	sess, err := m.sessions.Get()
	if err != nil {
		return provider.Fail[bool](err.Error())
	}
	if sess == nil || sess.ServerID != serverID {
		return provider.Ok(true)
	}

	if server, err := m.servers.Get(serverID); err == nil {
		if res := m.provider.Logout(ctx, server.Address, sess.Username); !res.Success {
			log.Warn("provider logout failed, clearing session anyway", "server", serverID, "error", res.Error)
		}
	}

	if err := m.sessions.Clear(); err != nil {
		return provider.Fail[bool](err.Error())
	}

	log.Info("logged out", "server", serverID)
	return provider.Ok(true)
}

// clearSession drops the session, logging rather than propagating a
// failure to clear.
func (m *Manager) clearSession() {
	if err := m.sessions.Clear(); err != nil {
		logger.Warn("auth: failed to clear session: %v", err)
	}
}

// ValidateSession confirms the stored ticket is still accepted by the
// server. Any failure invalidates and clears the session.
func (m *Manager) ValidateSession(ctx context.Context) provider.Result[bool] {
	sess, err := m.sessions.Get()
	if err != nil {
		return provider.Fail[bool](err.Error())
	}
	if sess == nil {
		return provider.Ok(false)
	}

	server, err := m.servers.Get(sess.ServerID)
	if err != nil {
		// Server record is gone; the session cannot be valid.
		m.clearSession()
		return provider.Ok(false)
	}

	res := m.provider.ValidateTicket(ctx, server.Address, sess.Username, sess.Ticket)
	if !res.Success || !res.Data {
		m.clearSession()
		return provider.Ok(false)
	}
	return provider.Ok(true)
}

// RecoverSession checks at startup whether some valid ticket still exists
// for the stored session's server and user. It is weaker than
// ValidateSession because the exact ticket value may have rotated; a
// matching entry in the ticket store refreshes the session.
func (m *Manager) RecoverSession(ctx context.Context) provider.Result[bool] {
	sess, err := m.sessions.Get()
	if err != nil {
		return provider.Fail[bool](err.Error())
	}
	if sess == nil {
		return provider.Ok(false)
	}

	server, err := m.servers.Get(sess.ServerID)
	if err != nil {
		m.clearSession()
		return provider.Ok(false)
	}

	ticket, ok := m.findTicket(ctx, server.Address, sess.Username)
	if !ok {
		m.clearSession()
		return provider.Ok(false)
	}

	if ticket != sess.Ticket {
		refreshed := *sess
		refreshed.Ticket = ticket
		if err := m.sessions.Put(refreshed); err != nil {
			return provider.Fail[bool](err.Error())
		}
	}
	return provider.Ok(true)
}

// RecoverFor creates a session for serverID/username from a ticket in the
// local ticket store, validating it first. An already-active session is
// never overwritten. Returns true if a session was recovered.
func (m *Manager) RecoverFor(ctx context.Context, serverID, username string) bool {
	sess, err := m.sessions.Get()
	if err != nil || sess != nil {
		return false
	}

	server, err := m.servers.Get(serverID)
	if err != nil {
		return false
	}

	ticket, ok := m.findTicket(ctx, server.Address, username)
	if !ok {
		return false
	}

	res := m.provider.ValidateTicket(ctx, server.Address, username, ticket)
	if !res.Success || !res.Data {
		return false
	}

	session := store.ServerSession{
		ServerID: serverID,
		Username: username,
		Ticket:   ticket,
		LoginAt:  time.Now().UTC(),
	}
	if err := m.sessions.Put(session); err != nil {
		logger.Warn("auth: failed to store recovered session: %v", err)
		return false
	}

	logger.Info("auth: recovered session for server=%s user=%s", serverID, username)
	return true
}

// findTicket returns the ticket for address/username from the provider's
// ticket listing, matching the host case-insensitively.
func (m *Manager) findTicket(ctx context.Context, address, username string) (string, bool) {
	res := m.provider.GetTickets(ctx)
	if !res.Success {
		return "", false
	}
	for _, t := range res.Data {
		if strings.EqualFold(t.Host, address) && t.User == username {
			return t.Ticket, true
		}
	}
	return "", false
}

// GetSessionStatus reports the current session state without mutating it.
// The server display name is resolved when the record still exists.
func (m *Manager) GetSessionStatus() SessionStatus {
	sess, err := m.sessions.Get()
	if err != nil || sess == nil {
		return SessionStatus{}
	}

	status := SessionStatus{
		IsLoggedIn: true,
		ServerID:   sess.ServerID,
		Username:   sess.Username,
	}
	if server, err := m.servers.Get(sess.ServerID); err == nil {
		status.ServerName = server.Name
	}
	return status
}

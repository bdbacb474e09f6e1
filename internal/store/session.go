package store

import (
	"encoding/json"
	"time"

	"github.com/sgrant/p4view/internal/errors"
)

// sessionKey is the KV key holding the single active session.
const sessionKey = "session"

// ServerSession is the one active authenticated session. At most one
// exists process-wide; a new login overwrites it rather than merging.
// ServerID references a ServerConfig but is not enforced as a join;
// callers resolve it and must handle a deleted server.
type ServerSession struct {
	ServerID  string     `json:"server_id"`
	Username  string     `json:"username"`
	Ticket    string     `json:"ticket"`
	LoginAt   time.Time  `json:"login_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// SessionStore manages the active session on top of a KV collaborator.
type SessionStore struct {
	kv KV
}

// NewSessionStore returns a session store backed by kv.
func NewSessionStore(kv KV) *SessionStore {
	return &SessionStore{kv: kv}
}

// Get returns the active session, or nil if none exists.
func (s *SessionStore) Get() (*ServerSession, error) {
	raw, ok, err := s.kv.Get(sessionKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var sess ServerSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, errors.StoreCorrupt(sessionKey, err)
	}
	if sess.ServerID == "" {
		return nil, nil
	}
	return &sess, nil
}

// Put overwrites the active session.
func (s *SessionStore) Put(sess ServerSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.kv.Set(sessionKey, string(data))
}

// Clear removes the active session. Clearing an already-empty store is a
// no-op.
func (s *SessionStore) Clear() error {
	return s.kv.Set(sessionKey, "")
}

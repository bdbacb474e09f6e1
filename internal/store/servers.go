package store

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sgrant/p4view/internal/errors"
)

// serversKey is the KV key holding the known-server list.
const serversKey = "servers"

// ServerConfig is one known server. Identity is the ID; the connection
// address is compared case-insensitively for dedup but uniqueness is only
// enforced going forward by the discovery engine.
type ServerConfig struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServerUpdate carries the fields an edit may change. Nil fields keep the
// existing value (copy-on-write merge).
type ServerUpdate struct {
	Name        *string
	Address     *string
	Description *string
}

// ServerStore manages the known-server list on top of a KV collaborator.
type ServerStore struct {
	kv KV
}

// NewServerStore returns a server store backed by kv.
func NewServerStore(kv KV) *ServerStore {
	return &ServerStore{kv: kv}
}

func (s *ServerStore) load() ([]ServerConfig, error) {
	raw, ok, err := s.kv.Get(serversKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []ServerConfig{}, nil
	}

	var servers []ServerConfig
	if err := json.Unmarshal([]byte(raw), &servers); err != nil {
		return nil, errors.StoreCorrupt(serversKey, err)
	}
	return servers, nil
}

func (s *ServerStore) save(servers []ServerConfig) error {
	data, err := json.Marshal(servers)
	if err != nil {
		return err
	}
	return s.kv.Set(serversKey, string(data))
}

// List returns all known servers.
func (s *ServerStore) List() ([]ServerConfig, error) {
	return s.load()
}

// Get returns the server with the given id.
func (s *ServerStore) Get(id string) (*ServerConfig, error) {
	servers, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range servers {
		if servers[i].ID == id {
			srv := servers[i] // copy
			return &srv, nil
		}
	}
	return nil, errors.ServerNotFound(id)
}

// FindByAddress returns the first server whose address matches
// case-insensitively, or nil if none does.
func (s *ServerStore) FindByAddress(address string) (*ServerConfig, error) {
	servers, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range servers {
		if strings.EqualFold(servers[i].Address, address) {
			srv := servers[i] // copy
			return &srv, nil
		}
	}
	return nil, nil
}

// Add creates a new server record with a generated id and returns it.
func (s *ServerStore) Add(name, address, description string) (*ServerConfig, error) {
	servers, err := s.load()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	srv := ServerConfig{
		ID:          uuid.New().String(),
		Name:        name,
		Address:     address,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	servers = append(servers, srv)
	if err := s.save(servers); err != nil {
		return nil, err
	}
	return &srv, nil
}

// Update merges the provided fields over the existing record and stamps
// UpdatedAt. Returns the updated record.
func (s *ServerStore) Update(id string, update ServerUpdate) (*ServerConfig, error) {
	servers, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range servers {
		if servers[i].ID != id {
			continue
		}
		if update.Name != nil {
			servers[i].Name = *update.Name
		}
		if update.Address != nil {
			servers[i].Address = *update.Address
		}
		if update.Description != nil {
			servers[i].Description = *update.Description
		}
		servers[i].UpdatedAt = time.Now().UTC()

		if err := s.save(servers); err != nil {
			return nil, err
		}
		srv := servers[i] // copy
		return &srv, nil
	}
	return nil, errors.ServerNotFound(id)
}

// Remove deletes a server by id. Returns true if the server was found.
func (s *ServerStore) Remove(id string) (bool, error) {
	servers, err := s.load()
	if err != nil {
		return false, err
	}

	for i := range servers {
		if servers[i].ID == id {
			servers = append(servers[:i], servers[i+1:]...)
			if err := s.save(servers); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Package store persists the known-server list and the single active
// session. Persistence is expressed as plain get/set key-value storage so
// the on-disk format (or an encrypted store supplied by a host
// application) stays swappable.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// KV is the minimal persistence contract this package builds on. Writes
// must be visible to subsequent reads from the same process.
type KV interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) (string, bool, error)
	// Set stores the value under key, overwriting any previous value.
	Set(key, value string) error
}

// MemKV is an in-memory KV for tests.
type MemKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemKV returns an empty in-memory store.
func NewMemKV() *MemKV {
	return &MemKV{values: make(map[string]string)}
}

func (m *MemKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// FileKV persists keys as a single JSON object on disk.
type FileKV struct {
	mu       sync.RWMutex
	filePath string
	values   map[string]string
}

// stateDir returns the path to the state directory
func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".p4view"), nil
}

// DefaultStatePath returns the default on-disk location for FileKV.
func DefaultStatePath() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.json"), nil
}

// OpenFileKV loads the store at path, creating an empty one if the file
// does not exist yet.
func OpenFileKV(path string) (*FileKV, error) {
	kv := &FileKV{
		filePath: path,
		values:   make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return kv, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &kv.values); err != nil {
		return nil, err
	}
	if kv.values == nil {
		kv.values = make(map[string]string)
	}
	return kv, nil
}

// OpenDefaultFileKV opens the store at the default location.
func OpenDefaultFileKV() (*FileKV, error) {
	path, err := DefaultStatePath()
	if err != nil {
		return nil, err
	}
	return OpenFileKV(path)
}

func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok, nil
}

// Set stores the value and writes the whole store back to disk.
func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value

	if err := os.MkdirAll(filepath.Dir(f.filePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(f.filePath, data, 0644)
}

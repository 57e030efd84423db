package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Identity names the acting analyst and their manager. Either may be
// empty; consumers degrade empties to the unknown sentinel instead of
// blocking.
type Identity struct {
	Analyst string `json:"analyst"`
	Manager string `json:"manager"`
}

// IdentityStore caches the identity in a local JSON file, the one piece
// of state allowed to outlive the session.
type IdentityStore struct {
	mu   sync.Mutex
	path string
	id   Identity
}

// NewIdentityStore loads the cache at path. A missing or unreadable file
// is not an error: the store starts empty and names degrade downstream.
func NewIdentityStore(path string) *IdentityStore {
	s := &IdentityStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	// Malformed cache content is discarded the same way.
	_ = json.Unmarshal(data, &s.id)
	return s
}

// Get returns the cached identity.
func (s *IdentityStore) Get() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Set updates the identity and rewrites the cache file.
func (s *IdentityStore) Set(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id

	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create identity cache directory: %w", err)
	}
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write identity cache: %w", err)
	}
	return nil
}

// Package secrets holds job secrets owned by the host process.
package secrets

import (
	"fmt"
	"sync"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
)

// Store is an in-memory secrets store keyed by job resource name.
// The host creates one and hands it to the targets that need it.
type Store struct {
	mu      sync.RWMutex
	secrets map[string]domain.JobSecrets
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{secrets: make(map[string]domain.JobSecrets)}
}

// Put records the secrets of a resource, replacing earlier ones.
func (s *Store) Put(resource string, secrets domain.JobSecrets) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[resource] = secrets
}

// Get returns the secrets of a resource.
func (s *Store) Get(resource string) (domain.JobSecrets, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secrets, ok := s.secrets[resource]
	if !ok {
		return domain.JobSecrets{}, fmt.Errorf("secrets of %s: %w", resource, domain.ErrNotFound)
	}
	return secrets, nil
}

// Forget drops the secrets of a resource. Unknown resources are ignored.
func (s *Store) Forget(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, resource)
}

// Len returns the number of resources with recorded secrets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.secrets)
}

// Package auth resolves the tokens jobs use to call the platform.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/melih/lighthouse-jobs/internal/core/domain"
)

// TokenStore implements ports.AuthTokenProvider. Families without a preset
// token get a random one on first use, reused for later deployments.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewTokenStore creates a store seeded with preset family tokens.
func NewTokenStore(preset map[string]string) *TokenStore {
	tokens := make(map[string]string, len(preset))
	for family, token := range preset {
		tokens[family] = token
	}
	return &TokenStore{tokens: tokens}
}

// TokenForFamily returns the token of a job family.
func (s *TokenStore) TokenForFamily(_ context.Context, family string) (string, error) {
	if family == "" {
		return "", fmt.Errorf("job family is required: %w", domain.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.tokens[family]; ok {
		return token, nil
	}
	token := uuid.NewString()
	s.tokens[family] = token
	return token, nil
}

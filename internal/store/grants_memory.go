package store

import (
	"context"
	"maps"
	"sync"

	"github.com/serroba/albumkit/internal/imagesaver"
)

// GrantMemoryStore is an in-memory implementation of host.GrantStore.
type GrantMemoryStore struct {
	mu     sync.RWMutex
	grants map[string]map[imagesaver.Scope]bool // session -> scope -> granted
}

// NewGrantMemoryStore creates an empty grant store.
func NewGrantMemoryStore() *GrantMemoryStore {
	return &GrantMemoryStore{
		grants: make(map[string]map[imagesaver.Scope]bool),
	}
}

func (s *GrantMemoryStore) Get(_ context.Context, session string, scope imagesaver.Scope) (imagesaver.PermissionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	granted, ok := s.grants[session][scope]
	if !ok {
		return imagesaver.PermissionUnknown, nil
	}

	return permissionState(granted), nil
}

func (s *GrantMemoryStore) Set(_ context.Context, session string, scope imagesaver.Scope, granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grants[session] == nil {
		s.grants[session] = make(map[imagesaver.Scope]bool)
	}

	s.grants[session][scope] = granted

	return nil
}

func (s *GrantMemoryStore) List(_ context.Context, session string) (map[imagesaver.Scope]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[imagesaver.Scope]bool, len(s.grants[session]))
	maps.Copy(out, s.grants[session])

	return out, nil
}

func permissionState(granted bool) imagesaver.PermissionState {
	if granted {
		return imagesaver.PermissionGranted
	}

	return imagesaver.PermissionDenied
}

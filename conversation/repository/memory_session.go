package repository

import (
	"context"
	"sync"

	"github.com/AzielCF/az-relay/conversation/domain"
)

// MemorySessionStore implements domain.SessionStore with in-process maps.
// Entries live for the lifetime of the process.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	profiles map[string]domain.UserProfile
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domain.Session),
		profiles: make(map[string]domain.UserProfile),
	}
}

func (ms *MemorySessionStore) CreateSessionIfAbsent(ctx context.Context, candidate domain.Session) (domain.Session, bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if existing, ok := ms.sessions[candidate.ParticipantID]; ok {
		return existing, false, nil
	}
	ms.sessions[candidate.ParticipantID] = candidate
	return candidate, true, nil
}

func (ms *MemorySessionStore) GetSession(ctx context.Context, participantID string) (*domain.Session, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	s, ok := ms.sessions[participantID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (ms *MemorySessionStore) SaveProfile(ctx context.Context, profile domain.UserProfile) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.profiles[profile.ParticipantID] = profile
	return nil
}

func (ms *MemorySessionStore) GetProfile(ctx context.Context, participantID string) (*domain.UserProfile, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	p, ok := ms.profiles[participantID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Stats returns how many sessions and profiles are cached.
func (ms *MemorySessionStore) Stats() (sessions int, profiles int) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.sessions), len(ms.profiles)
}

package botengine

import (
	"sync"

	"github.com/AzielCF/az-relay/botengine/domain"
)

// MemoryStore keeps the recent chat turns of each NLU session in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	limit  int
	memory map[string][]domain.ChatTurn // key: session id
}

// NewMemoryStore keeps at most limit turns per session. A limit of zero
// or less keeps everything.
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		limit:  limit,
		memory: make(map[string][]domain.ChatTurn),
	}
}

func (s *MemoryStore) Get(key string) []domain.ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns, ok := s.memory[key]
	if !ok {
		return nil
	}
	cpy := make([]domain.ChatTurn, len(turns))
	copy(cpy, turns)
	return cpy
}

// Save appends turns in order and drops the oldest beyond the limit.
func (s *MemoryStore) Save(key string, turns ...domain.ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := append(s.memory[key], turns...)
	if s.limit > 0 && len(all) > s.limit {
		all = all[len(all)-s.limit:]
	}
	s.memory[key] = all
}

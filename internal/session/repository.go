package session

import "sync"

// Repository stores the active session per user key. The interface keeps
// the state machine ignorant of the storage medium; the in-memory
// implementation below is the default, a remote store can replace it.
type Repository interface {
	Load(userKey string) (*Session, bool)
	Save(userKey string, s *Session)
	Delete(userKey string)
}

type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]*Session)}
}

func (r *MemoryRepository) Load(userKey string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userKey]
	return s, ok
}

func (r *MemoryRepository) Save(userKey string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userKey] = s
}

func (r *MemoryRepository) Delete(userKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userKey)
}

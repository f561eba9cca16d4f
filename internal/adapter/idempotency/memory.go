package idempotency

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time
}

const minSweepInterval = time.Minute

// MemoryStore is a process local store used when Redis is not configured.
// Expired keys are swept on writes at most once per TTL.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	locks     map[string]time.Time
	values    map[string]entry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore constructs MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:    ttl,
		locks:  make(map[string]time.Time),
		values: make(map[string]entry),
		now:    time.Now,
	}
}

func (s *MemoryStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.maybeSweep()
	k := lockKey(scope, key)
	if exp, ok := s.locks[k]; ok && s.now().Before(exp) {
		return false, nil
	}
	s.locks[k] = s.now().Add(s.ttl)
	return true, nil
}

func (s *MemoryStore) Unlock(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, lockKey(scope, key))
	return nil
}

func (s *MemoryStore) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybeSweep()
	s.values[mapKey(scope, key)] = entry{value: value, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := mapKey(scope, key)
	e, ok := s.values[k]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(e.expires) {
		delete(s.values, k)
		return "", false, nil
	}
	return e.value, true, nil
}

// Len returns the number of live locks and remembered values.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks) + len(s.values)
}

func (s *MemoryStore) maybeSweep() {
	now := s.now()
	if now.Sub(s.lastSweep) < max(s.ttl, minSweepInterval) {
		return
	}
	s.lastSweep = now
	for k, exp := range s.locks {
		if !now.Before(exp) {
			delete(s.locks, k)
		}
	}
	for k, e := range s.values {
		if !now.Before(e.expires) {
			delete(s.values, k)
		}
	}
}

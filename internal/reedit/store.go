// Package reedit remembers, on the applicant's side, which record they may
// still amend and until when.
package reedit

import "sync"

const (
	KeyCandidateID      = "iisa_candidate_id"
	KeyRegistrationDate = "iisa_registration_date"
	KeyEditToken        = "iisa_edit_token"
)

// Store is session-scoped key/value persistence owned by the applicant.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *MemoryStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

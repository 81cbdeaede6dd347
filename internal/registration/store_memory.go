package registration

import (
	"context"
	"sync"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

type pairKey struct {
	registrantKey string
	electionID    id.ElectionID
}

// InMemoryStore keeps registrations in process memory. A single mutex makes
// the uniqueness check and the insert one atomic step.
type InMemoryStore struct {
	mu     sync.RWMutex
	byPair map[pairKey]Registration
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byPair: make(map[pairKey]Registration)}
}

func (s *InMemoryStore) Save(_ context.Context, r Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{registrantKey: r.RegistrantKey, electionID: r.ElectionID}
	if _, exists := s.byPair[key]; exists {
		return sentinel.ErrConflict
	}
	s.byPair[key] = r
	return nil
}

func (s *InMemoryStore) FindByRegistrantAndElection(_ context.Context, registrantKey string, electionID id.ElectionID) (Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byPair[pairKey{registrantKey: registrantKey, electionID: electionID}]
	if !ok {
		return Registration{}, sentinel.ErrNotFound
	}
	return r, nil
}

func (s *InMemoryStore) ListByRegistrant(_ context.Context, registrantKey string) ([]Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Registration
	for key, r := range s.byPair {
		if key.registrantKey == registrantKey {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *InMemoryStore) CountByElection(_ context.Context, electionID id.ElectionID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for key := range s.byPair {
		if key.electionID == electionID {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) DeleteByElection(_ context.Context, electionID id.ElectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.byPair {
		if key.electionID == electionID {
			delete(s.byPair, key)
		}
	}
	return nil
}

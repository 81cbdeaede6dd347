package election

import (
	"context"
	"sort"
	"sync"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

// InMemoryStore keeps elections in a mutex-guarded map. It favors clarity
// over performance and backs tests and single-node demos.
type InMemoryStore struct {
	mu        sync.RWMutex
	elections map[id.ElectionID]Election
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{elections: make(map[id.ElectionID]Election)}
}

func (s *InMemoryStore) Save(_ context.Context, e Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.elections[e.ID]; exists {
		return sentinel.ErrConflict
	}
	s.elections[e.ID] = cloneElection(e)
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, e Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.elections[e.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.elections[e.ID] = cloneElection(e)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, electionID id.ElectionID) (Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.elections[electionID]; ok {
		return cloneElection(e), nil
	}
	return Election{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Election, 0, len(s.elections))
	for _, e := range s.elections {
		out = append(out, cloneElection(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, electionID id.ElectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.elections[electionID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.elections, electionID)
	return nil
}

// cloneElection copies the candidate slice so callers can't mutate stored state.
func cloneElection(e Election) Election {
	e.Candidates = append([]Candidate(nil), e.Candidates...)
	return e
}

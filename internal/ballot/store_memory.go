package ballot

import (
	"context"
	"sort"
	"sync"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

type voterKey struct {
	electionID id.ElectionID
	voterHash  id.VoterHash
}

// InMemoryStore keeps the ledger in process memory. One mutex covers the
// duplicate check and the append, so concurrent casts for the same voter
// serialize and exactly one wins.
type InMemoryStore struct {
	mu      sync.RWMutex
	byVoter map[voterKey]Vote
}

// NewInMemoryStore creates an empty ledger.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byVoter: make(map[voterKey]Vote)}
}

func (s *InMemoryStore) Append(_ context.Context, v Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voterKey{electionID: v.ElectionID, voterHash: v.VoterHash}
	if _, exists := s.byVoter[key]; exists {
		return sentinel.ErrConflict
	}
	s.byVoter[key] = cloneVote(v)
	return nil
}

func (s *InMemoryStore) ListByElection(_ context.Context, electionID id.ElectionID) ([]Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Vote
	for key, v := range s.byVoter {
		if key.electionID == electionID {
			out = append(out, cloneVote(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CastAt.Before(out[j].CastAt) })
	return out, nil
}

func (s *InMemoryStore) CountByElection(_ context.Context, electionID id.ElectionID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for key := range s.byVoter {
		if key.electionID == electionID {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) HasAnyVote(_ context.Context, voterHash id.VoterHash) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for key := range s.byVoter {
		if key.voterHash == voterHash {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) DeleteByElection(_ context.Context, electionID id.ElectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.byVoter {
		if key.electionID == electionID {
			delete(s.byVoter, key)
		}
	}
	return nil
}

func cloneVote(v Vote) Vote {
	out := v
	out.Ciphertext = append([]byte(nil), v.Ciphertext...)
	out.Nonce = append([]byte(nil), v.Nonce...)
	return out
}

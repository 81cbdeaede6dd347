package identity

import (
	"context"

	id "votegate/pkg/domain"
)

// HashSource lists the voter hashes issued to a registrant.
type HashSource interface {
	VoterHashes(ctx context.Context, registrantKey string) ([]id.VoterHash, error)
}

// VoteChecker answers whether a voter hash appears in the vote ledger.
type VoteChecker interface {
	HasAnyVote(ctx context.Context, voterHash id.VoterHash) (bool, error)
}

// LedgerHistory implements VoteHistory over the registration and vote
// ledgers: a registrant "has voted" when any of their issued voter hashes
// appears as a committed vote, in any election.
type LedgerHistory struct {
	hashes HashSource
	votes  VoteChecker
}

// NewLedgerHistory wires the two ledgers together.
func NewLedgerHistory(hashes HashSource, votes VoteChecker) *LedgerHistory {
	return &LedgerHistory{hashes: hashes, votes: votes}
}

func (h *LedgerHistory) HasVoted(ctx context.Context, registrantKey string) (bool, error) {
	voterHashes, err := h.hashes.VoterHashes(ctx, registrantKey)
	if err != nil {
		return false, err
	}
	for _, hash := range voterHashes {
		voted, err := h.votes.HasAnyVote(ctx, hash)
		if err != nil {
			return false, err
		}
		if voted {
			return true, nil
		}
	}
	return false, nil
}

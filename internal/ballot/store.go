package ballot

import (
	"context"

	id "votegate/pkg/domain"
)

// Store is the append-only vote ledger. Append is a conditional insert: it
// must fail with sentinel.ErrConflict when a vote for the same
// (ElectionID, VoterHash) pair exists, atomically with the insert. There is
// no update or single-vote delete; votes are immutable once committed.
type Store interface {
	Append(ctx context.Context, v Vote) error
	ListByElection(ctx context.Context, electionID id.ElectionID) ([]Vote, error)
	CountByElection(ctx context.Context, electionID id.ElectionID) (int, error)
	HasAnyVote(ctx context.Context, voterHash id.VoterHash) (bool, error)
	DeleteByElection(ctx context.Context, electionID id.ElectionID) error
}

package tally

import (
	"time"

	id "votegate/pkg/domain"
)

// CandidateResult is one candidate's share of the tally.
type CandidateResult struct {
	CandidateID id.CandidateID `json:"candidate_id"`
	Name        string         `json:"name"`
	Votes       int            `json:"votes"`
	Percent     float64        `json:"percent"`
}

// Result is a complete tally for one election. Turnout can exceed 100 when
// more voters registered than the expected count.
type Result struct {
	ElectionID     id.ElectionID     `json:"election_id"`
	Title          string            `json:"title"`
	TotalVotes     int               `json:"total_votes"`
	ExpectedVoters int               `json:"expected_voters"`
	TurnoutPercent float64           `json:"turnout_percent"`
	Candidates     []CandidateResult `json:"candidates"`
	Winner         id.CandidateID    `json:"winner,omitempty"`
	ComputedAt     time.Time         `json:"computed_at"`
}

// ExportedVote is one ledger entry in an export document. The candidate
// choice appears alongside the integrity tag so auditors can re-verify the
// sealed record.
type ExportedVote struct {
	VoterHash    id.VoterHash   `json:"voter_hash"`
	CandidateID  id.CandidateID `json:"candidate_id"`
	CastAt       time.Time      `json:"cast_at"`
	IntegrityTag string         `json:"integrity_tag"`
}

// ExportDocument is the downloadable audit artifact for one election.
type ExportDocument struct {
	Result     Result         `json:"result"`
	Votes      []ExportedVote `json:"votes"`
	ExportedAt time.Time      `json:"exported_at"`
}

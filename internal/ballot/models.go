package ballot

import (
	"time"

	id "votegate/pkg/domain"
)

// Vote is one immutable, sealed ledger entry. The candidate choice lives
// only inside Ciphertext; IntegrityTag commits to the sealed bytes so
// tampering is detectable without unsealing.
type Vote struct {
	ID           id.VoteID
	ElectionID   id.ElectionID
	CandidateID  id.CandidateID
	VoterHash    id.VoterHash
	Ciphertext   []byte
	Nonce        []byte
	IntegrityTag string
	CastAt       time.Time
}

package registration

import (
	"time"

	id "votegate/pkg/domain"
)

// Registration binds one verified registrant to one election through an
// anonymized voter hash. The (RegistrantKey, ElectionID) pair is unique.
type Registration struct {
	ID            id.RegistrationID
	RegistrantKey string
	ElectionID    id.ElectionID
	VoterHash     id.VoterHash
	RegisteredAt  time.Time
}

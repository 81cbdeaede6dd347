package registration

import (
	"context"

	id "votegate/pkg/domain"
)

// Store persists registrations. Save is a conditional insert: it must fail
// with sentinel.ErrConflict when a registration for the same
// (RegistrantKey, ElectionID) pair already exists, atomically with the
// insert itself.
type Store interface {
	Save(ctx context.Context, r Registration) error
	FindByRegistrantAndElection(ctx context.Context, registrantKey string, electionID id.ElectionID) (Registration, error)
	ListByRegistrant(ctx context.Context, registrantKey string) ([]Registration, error)
	CountByElection(ctx context.Context, electionID id.ElectionID) (int, error)
	DeleteByElection(ctx context.Context, electionID id.ElectionID) error
}

package registration

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"votegate/internal/election"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
)

// =============================================================================
// Registration Service Test Suite
// =============================================================================
// Justification for unit tests: the double-register rejection and voter hash
// issuance are commitments the vote ledger builds on; they need direct
// coverage against the conditional-insert store.

type fakeElectionFinder struct {
	elections map[id.ElectionID]election.Election
}

func (f *fakeElectionFinder) Get(_ context.Context, electionID id.ElectionID) (election.Election, error) {
	e, ok := f.elections[electionID]
	if !ok {
		return election.Election{}, dErrors.New(dErrors.CodeNotFound, "election not found")
	}
	return e, nil
}

type RegistrationServiceSuite struct {
	suite.Suite
	store    *InMemoryStore
	finder   *fakeElectionFinder
	service  *Service
	election election.Election
}

func TestRegistrationServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistrationServiceSuite))
}

func (s *RegistrationServiceSuite) SetupTest() {
	now := time.Now().UTC()
	s.election = election.Election{
		ID:        id.NewElectionID(),
		Title:     "City Council 2026",
		Status:    election.StatusActive,
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
	}
	s.store = NewInMemoryStore()
	s.finder = &fakeElectionFinder{elections: map[id.ElectionID]election.Election{
		s.election.ID: s.election,
	}}

	var err error
	s.service, err = NewService(s.store, s.finder, slog.Default())
	s.Require().NoError(err)
}

// =============================================================================
// Register Tests
// =============================================================================

func (s *RegistrationServiceSuite) TestRegister() {
	ctx := context.Background()

	s.Run("first registration succeeds with a voter hash", func() {
		reg, err := s.service.Register(ctx, "primary-id:AB123456", s.election.ID)
		s.NoError(err)
		s.False(reg.ID.IsNil())
		s.Len(string(reg.VoterHash), 64)
	})

	s.Run("second registration for same pair is rejected", func() {
		_, err := s.service.Register(ctx, "primary-id:CD111111", s.election.ID)
		s.Require().NoError(err)

		_, err = s.service.Register(ctx, "primary-id:CD111111", s.election.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRegistered))
	})

	s.Run("same registrant in another election gets an unrelated hash", func() {
		second := s.election
		second.ID = id.NewElectionID()
		s.finder.elections[second.ID] = second

		first, err := s.service.Register(ctx, "primary-id:EF222222", s.election.ID)
		s.Require().NoError(err)
		other, err := s.service.Register(ctx, "primary-id:EF222222", second.ID)
		s.NoError(err)
		s.NotEqual(first.VoterHash, other.VoterHash)
	})

	s.Run("unknown election returns not found", func() {
		_, err := s.service.Register(ctx, "primary-id:GH333333", id.NewElectionID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("completed election refuses registration", func() {
		done := s.election
		done.ID = id.NewElectionID()
		done.Status = election.StatusCompleted
		s.finder.elections[done.ID] = done

		_, err := s.service.Register(ctx, "primary-id:IJ444444", done.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeWindowClosed))
	})

	s.Run("election past its end refuses registration", func() {
		over := s.election
		over.ID = id.NewElectionID()
		over.EndTime = time.Now().UTC().Add(-time.Minute)
		s.finder.elections[over.ID] = over

		_, err := s.service.Register(ctx, "primary-id:KL555555", over.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeWindowClosed))
	})

	s.Run("empty registrant key is invalid input", func() {
		_, err := s.service.Register(ctx, "", s.election.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// =============================================================================
// Ledger Query Tests
// =============================================================================

func (s *RegistrationServiceSuite) TestQueries() {
	ctx := context.Background()

	s.Run("HasRegistrations flips after first registration", func() {
		bound, err := s.service.HasRegistrations(ctx, s.election.ID)
		s.NoError(err)
		s.False(bound)

		_, err = s.service.Register(ctx, "primary-id:MN666666", s.election.ID)
		s.Require().NoError(err)

		bound, err = s.service.HasRegistrations(ctx, s.election.ID)
		s.NoError(err)
		s.True(bound)
	})

	s.Run("VoterHashes lists all hashes for a registrant", func() {
		second := s.election
		second.ID = id.NewElectionID()
		s.finder.elections[second.ID] = second

		_, err := s.service.Register(ctx, "primary-id:OP777777", s.election.ID)
		s.Require().NoError(err)
		_, err = s.service.Register(ctx, "primary-id:OP777777", second.ID)
		s.Require().NoError(err)

		hashes, err := s.service.VoterHashes(ctx, "primary-id:OP777777")
		s.NoError(err)
		s.Len(hashes, 2)
	})

	s.Run("DeleteByElection clears the ledger", func() {
		_, err := s.service.Register(ctx, "primary-id:QR888888", s.election.ID)
		s.Require().NoError(err)

		s.NoError(s.service.DeleteByElection(ctx, s.election.ID))

		bound, err := s.service.HasRegistrations(ctx, s.election.ID)
		s.NoError(err)
		s.False(bound)
	})
}

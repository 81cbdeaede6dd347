package ballot

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"votegate/internal/election"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
)

// =============================================================================
// Ballot Service Test Suite
// =============================================================================
// Justification for unit tests: the one-vote-per-voter guarantee and the
// window boundary checks are the core invariants of the system; the
// concurrent cast test exercises the conditional insert directly.

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

type BallotServiceSuite struct {
	suite.Suite
	store    *InMemoryStore
	finder   *fakeElectionFinder
	sealer   *Sealer
	service  *Service
	election election.Election
}

func TestBallotServiceSuite(t *testing.T) {
	suite.Run(t, new(BallotServiceSuite))
}

// SetupSubTest resets the fixtures before every s.Run, since subtests
// mutate shared state (the in-memory vote store, the election finder).
func (s *BallotServiceSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *BallotServiceSuite) SetupTest() {
	now := time.Now().UTC()
	s.election = election.Election{
		ID:     id.NewElectionID(),
		Title:  "City Council 2026",
		Status: election.StatusActive,
		Candidates: []election.Candidate{
			{ID: "candidate-1", Name: "Alice Novak"},
			{ID: "candidate-2", Name: "Bob Reyes"},
		},
		StartTime:      now.Add(-time.Hour),
		EndTime:        now.Add(time.Hour),
		ExpectedVoters: 100,
	}
	s.store = NewInMemoryStore()
	s.finder = &fakeElectionFinder{elections: map[id.ElectionID]election.Election{
		s.election.ID: s.election,
	}}

	var err error
	s.sealer, err = NewSealer(testMasterKey)
	s.Require().NoError(err)

	s.service, err = NewService(s.store, s.finder, s.sealer, slog.Default())
	s.Require().NoError(err)
}

// =============================================================================
// Cast Tests
// =============================================================================

func (s *BallotServiceSuite) TestCast() {
	ctx := context.Background()

	s.Run("valid cast commits a sealed vote", func() {
		vote, err := s.service.Cast(ctx, "voter-a", s.election.ID, "candidate-1")
		s.NoError(err)
		s.False(vote.ID.IsNil())
		s.NotEmpty(vote.Ciphertext)
		s.NotEmpty(vote.IntegrityTag)

		candidate, err := s.service.Unseal(vote)
		s.NoError(err)
		s.Equal(id.CandidateID("candidate-1"), candidate)
	})

	s.Run("second cast for the same voter is a duplicate", func() {
		_, err := s.service.Cast(ctx, "voter-b", s.election.ID, "candidate-1")
		s.Require().NoError(err)

		_, err = s.service.Cast(ctx, "voter-b", s.election.ID, "candidate-2")
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateVote))

		count, err := s.store.CountByElection(ctx, s.election.ID)
		s.NoError(err)
		s.Equal(1, count)
	})

	s.Run("unknown election returns not found", func() {
		_, err := s.service.Cast(ctx, "voter-c", id.NewElectionID(), "candidate-1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("candidate off the ballot returns not found", func() {
		_, err := s.service.Cast(ctx, "voter-d", s.election.ID, "candidate-9")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("empty voter hash is invalid input", func() {
		_, err := s.service.Cast(ctx, "", s.election.ID, "candidate-1")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// =============================================================================
// Window Boundary Tests
// =============================================================================

func (s *BallotServiceSuite) TestCastWindow() {
	ctx := context.Background()
	now := time.Now().UTC()

	s.Run("draft election refuses casts", func() {
		draft := s.election
		draft.ID = id.NewElectionID()
		draft.Status = election.StatusDraft
		s.finder.elections[draft.ID] = draft

		_, err := s.service.Cast(ctx, "voter-a", draft.ID, "candidate-1")
		s.True(dErrors.HasCode(err, dErrors.CodeWindowNotOpen))
	})

	s.Run("active election before its start refuses casts", func() {
		early := s.election
		early.ID = id.NewElectionID()
		early.StartTime = now.Add(time.Hour)
		early.EndTime = now.Add(2 * time.Hour)
		s.finder.elections[early.ID] = early

		_, err := s.service.Cast(ctx, "voter-a", early.ID, "candidate-1")
		s.True(dErrors.HasCode(err, dErrors.CodeWindowNotOpen))
	})

	s.Run("cast exactly at the end time is closed", func() {
		closing := s.election
		closing.ID = id.NewElectionID()
		closing.StartTime = now.Add(-time.Hour)
		closing.EndTime = now.Add(-time.Nanosecond)
		s.finder.elections[closing.ID] = closing

		_, err := s.service.Cast(ctx, "voter-a", closing.ID, "candidate-1")
		s.True(dErrors.HasCode(err, dErrors.CodeWindowClosed))
	})

	s.Run("completed election refuses casts", func() {
		done := s.election
		done.ID = id.NewElectionID()
		done.Status = election.StatusCompleted
		s.finder.elections[done.ID] = done

		_, err := s.service.Cast(ctx, "voter-a", done.ID, "candidate-1")
		s.True(dErrors.HasCode(err, dErrors.CodeWindowClosed))
	})
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func (s *BallotServiceSuite) TestConcurrentCasts() {
	ctx := context.Background()

	s.Run("exactly one of many concurrent casts wins", func() {
		const attempts = 50

		var (
			wg         sync.WaitGroup
			succeeded  atomic.Int32
			duplicates atomic.Int32
		)
		start := make(chan struct{})

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start

				_, err := s.service.Cast(ctx, "contended-voter", s.election.ID, "candidate-1")
				switch {
				case err == nil:
					succeeded.Add(1)
				case dErrors.HasCode(err, dErrors.CodeDuplicateVote):
					duplicates.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		s.Equal(int32(1), succeeded.Load())
		s.Equal(int32(attempts-1), duplicates.Load())

		count, err := s.store.CountByElection(ctx, s.election.ID)
		s.NoError(err)
		s.Equal(1, count)
	})
}

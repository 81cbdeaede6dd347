package ballot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"votegate/internal/audit"
	"votegate/internal/election"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// ElectionFinder is the slice of the election directory this service needs.
type ElectionFinder interface {
	Get(ctx context.Context, electionID id.ElectionID) (election.Election, error)
}

// Guard is an optional shared reservation in front of the ledger insert,
// for multi-instance deployments.
type Guard interface {
	Reserve(ctx context.Context, electionID id.ElectionID, voterHash id.VoterHash) error
	Release(ctx context.Context, electionID id.ElectionID, voterHash id.VoterHash)
}

// Service is the vote ledger: it validates the voting window, seals the
// ballot and commits it through the store's conditional insert. The
// duplicate check is never a read followed by a write; the insert itself
// decides, so concurrent casts for one voter produce exactly one vote.
type Service struct {
	store     Store
	elections ElectionFinder
	sealer    *Sealer
	guard     Guard
	auditLog  *audit.Publisher
	metrics   *Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithGuard installs the shared duplicate-vote reservation.
func WithGuard(guard Guard) Option {
	return func(s *Service) { s.guard = guard }
}

// WithAuditPublisher attaches the audit trail.
func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) { s.auditLog = publisher }
}

// WithMetrics attaches cast metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs the vote ledger service.
func NewService(store Store, elections ElectionFinder, sealer *Sealer, logger *slog.Logger, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("vote store is required")
	}
	if elections == nil {
		return nil, fmt.Errorf("election finder is required")
	}
	if sealer == nil {
		return nil, fmt.Errorf("ballot sealer is required")
	}

	svc := &Service{
		store:     store,
		elections: elections,
		sealer:    sealer,
		logger:    logger,
		tracer:    otel.Tracer("votegate/ballot"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Cast commits one vote. Checks run in order: election exists, window open,
// candidate on the ballot, then the atomic conditional append.
func (s *Service) Cast(ctx context.Context, voterHash id.VoterHash, electionID id.ElectionID, candidateID id.CandidateID) (Vote, error) {
	ctx, span := s.tracer.Start(ctx, "ballot.Cast")
	defer span.End()

	if voterHash == "" {
		return Vote{}, dErrors.New(dErrors.CodeInvalidInput, "voter hash is required")
	}

	e, err := s.elections.Get(ctx, electionID)
	if err != nil {
		return Vote{}, err
	}

	now := requestcontext.Now(ctx)
	if !e.VotingOpen(now) {
		if e.Status == election.StatusActive && now.Before(e.StartTime) {
			return Vote{}, s.reject(ctx, electionID, voterHash,
				dErrors.New(dErrors.CodeWindowNotOpen, "voting window has not opened"))
		}
		if e.Status == election.StatusDraft {
			return Vote{}, s.reject(ctx, electionID, voterHash,
				dErrors.New(dErrors.CodeWindowNotOpen, "election is not active"))
		}
		return Vote{}, s.reject(ctx, electionID, voterHash,
			dErrors.New(dErrors.CodeWindowClosed, "voting window has closed"))
	}

	if !e.HasCandidate(candidateID) {
		return Vote{}, s.reject(ctx, electionID, voterHash,
			dErrors.Newf(dErrors.CodeNotFound, "candidate %q is not on this ballot", candidateID))
	}

	if s.guard != nil {
		if err := s.guard.Reserve(ctx, electionID, voterHash); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return Vote{}, s.reject(ctx, electionID, voterHash,
					dErrors.New(dErrors.CodeDuplicateVote, "a vote for this voter is already recorded"))
			}
			return Vote{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "vote reservation failed")
		}
	}

	voteID := id.NewVoteID()
	sealed, err := s.sealer.Seal(voteID, candidateID)
	if err != nil {
		s.release(ctx, electionID, voterHash)
		return Vote{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seal ballot")
	}

	v := Vote{
		ID:           voteID,
		ElectionID:   electionID,
		CandidateID:  candidateID,
		VoterHash:    voterHash,
		Ciphertext:   sealed.Ciphertext,
		Nonce:        sealed.Nonce,
		IntegrityTag: sealed.IntegrityTag,
		CastAt:       now,
	}
	if err := s.store.Append(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Vote{}, s.reject(ctx, electionID, voterHash,
				dErrors.New(dErrors.CodeDuplicateVote, "a vote for this voter is already recorded"))
		}
		s.release(ctx, electionID, voterHash)
		return Vote{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to append vote")
	}

	s.logger.InfoContext(ctx, "vote cast",
		"request_id", requestcontext.RequestID(ctx),
		"election_id", electionID,
		"vote_id", voteID,
	)
	if s.metrics != nil {
		s.metrics.VotesCastTotal.Inc()
	}
	s.emit(ctx, audit.Event{
		Action:     audit.ActionVoteCast,
		Subject:    string(voterHash),
		ElectionID: electionID.String(),
		Decision:   "accepted",
	})
	return v, nil
}

// Unseal recovers the candidate choice from a sealed vote. Audited
// recovery only; emits no voter-visible state.
func (s *Service) Unseal(vote Vote) (id.CandidateID, error) {
	candidateID, err := s.sealer.Open(vote)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to unseal ballot")
	}
	return candidateID, nil
}

// HasAnyVote reports whether a voter hash appears anywhere in the ledger.
func (s *Service) HasAnyVote(ctx context.Context, voterHash id.VoterHash) (bool, error) {
	voted, err := s.store.HasAnyVote(ctx, voterHash)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check vote history")
	}
	return voted, nil
}

// DeleteByElection removes all votes for a deleted election.
func (s *Service) DeleteByElection(ctx context.Context, electionID id.ElectionID) error {
	if err := s.store.DeleteByElection(ctx, electionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete votes")
	}
	return nil
}

func (s *Service) release(ctx context.Context, electionID id.ElectionID, voterHash id.VoterHash) {
	if s.guard != nil {
		s.guard.Release(ctx, electionID, voterHash)
	}
}

func (s *Service) reject(ctx context.Context, electionID id.ElectionID, voterHash id.VoterHash, err error) error {
	s.logger.InfoContext(ctx, "vote rejected",
		"request_id", requestcontext.RequestID(ctx),
		"election_id", electionID,
		"reason", dErrors.CodeOf(err),
	)
	if s.metrics != nil {
		s.metrics.VotesRejectedTotal.WithLabelValues(string(dErrors.CodeOf(err))).Inc()
	}
	s.emit(ctx, audit.Event{
		Action:     audit.ActionVoteRejected,
		Subject:    string(voterHash),
		ElectionID: electionID.String(),
		Decision:   "rejected",
		Reason:     string(dErrors.CodeOf(err)),
	})
	return err
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditLog == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	s.auditLog.Emit(ctx, event)
}

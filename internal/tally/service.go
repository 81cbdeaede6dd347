package tally

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"votegate/internal/audit"
	"votegate/internal/ballot"
	"votegate/internal/election"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/requestcontext"
)

// ElectionFinder is the slice of the election directory this service needs.
type ElectionFinder interface {
	Get(ctx context.Context, electionID id.ElectionID) (election.Election, error)
}

// VoteSource reads the committed ledger.
type VoteSource interface {
	ListByElection(ctx context.Context, electionID id.ElectionID) ([]ballot.Vote, error)
}

// Service computes election results from the vote ledger. Tallies are pure
// reads over committed state: recomputing never changes the outcome, and
// concurrent tallies are safe.
type Service struct {
	elections ElectionFinder
	votes     VoteSource
	auditLog  *audit.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithAuditPublisher attaches the audit trail.
func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) { s.auditLog = publisher }
}

// NewService constructs the tally service.
func NewService(elections ElectionFinder, votes VoteSource, logger *slog.Logger, opts ...Option) (*Service, error) {
	if elections == nil {
		return nil, fmt.Errorf("election finder is required")
	}
	if votes == nil {
		return nil, fmt.Errorf("vote source is required")
	}

	svc := &Service{
		elections: elections,
		votes:     votes,
		logger:    logger,
		tracer:    otel.Tracer("votegate/tally"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ComputeResults tallies one election. Results are withheld until the
// voting window has closed; a request exactly at the end time succeeds.
func (s *Service) ComputeResults(ctx context.Context, electionID id.ElectionID) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "tally.ComputeResults")
	defer span.End()

	e, err := s.elections.Get(ctx, electionID)
	if err != nil {
		return Result{}, err
	}

	now := requestcontext.Now(ctx)
	if !e.ResultsAvailable(now) {
		return Result{}, dErrors.New(dErrors.CodeResultsNotReady, "results are not available until the voting window closes")
	}

	ledger, err := s.votes.ListByElection(ctx, electionID)
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to read vote ledger")
	}

	counts := make(map[id.CandidateID]int, len(e.Candidates))
	for _, v := range ledger {
		counts[v.CandidateID]++
	}

	total := len(ledger)
	result := Result{
		ElectionID:     e.ID,
		Title:          e.Title,
		TotalVotes:     total,
		ExpectedVoters: e.ExpectedVoters,
		ComputedAt:     now,
	}
	if e.ExpectedVoters > 0 {
		result.TurnoutPercent = float64(total) / float64(e.ExpectedVoters) * 100
	}

	// Candidate order is the election's declared order, which also breaks
	// ties: the first candidate to reach the winning count keeps it.
	best := 0
	for _, c := range e.Candidates {
		votes := counts[c.ID]
		percent := 0.0
		if total > 0 {
			percent = float64(votes) / float64(total) * 100
		}
		result.Candidates = append(result.Candidates, CandidateResult{
			CandidateID: c.ID,
			Name:        c.Name,
			Votes:       votes,
			Percent:     percent,
		})
		if total > 0 && votes > best {
			best = votes
			result.Winner = c.ID
		}
	}

	s.logger.InfoContext(ctx, "results computed",
		"request_id", requestcontext.RequestID(ctx),
		"election_id", electionID,
		"total_votes", total,
	)
	s.emit(ctx, audit.Event{
		Action:     audit.ActionResultsComputed,
		ElectionID: electionID.String(),
		Decision:   "computed",
	})
	return result, nil
}

// Export bundles the tally with the full anonymized ledger for auditors.
func (s *Service) Export(ctx context.Context, electionID id.ElectionID) (ExportDocument, error) {
	ctx, span := s.tracer.Start(ctx, "tally.Export")
	defer span.End()

	result, err := s.ComputeResults(ctx, electionID)
	if err != nil {
		return ExportDocument{}, err
	}

	ledger, err := s.votes.ListByElection(ctx, electionID)
	if err != nil {
		return ExportDocument{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to read vote ledger")
	}

	doc := ExportDocument{
		Result:     result,
		Votes:      make([]ExportedVote, 0, len(ledger)),
		ExportedAt: requestcontext.Now(ctx),
	}
	for _, v := range ledger {
		doc.Votes = append(doc.Votes, ExportedVote{
			VoterHash:    v.VoterHash,
			CandidateID:  v.CandidateID,
			CastAt:       v.CastAt,
			IntegrityTag: v.IntegrityTag,
		})
	}

	s.emit(ctx, audit.Event{
		Action:     audit.ActionResultsExported,
		Actor:      requestcontext.AdminID(ctx).String(),
		ElectionID: electionID.String(),
		Decision:   "exported",
	})
	return doc, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditLog == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	s.auditLog.Emit(ctx, event)
}

package registration

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

// Service binds verified registrants to elections. Each registrant gets one
// registration per election, carrying the anonymized voter hash used by the
// vote ledger.
type Service struct {
	store     Store
	elections ElectionFinder
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

// NewService constructs the registration service.
func NewService(store Store, elections ElectionFinder, logger *slog.Logger, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("registration store is required")
	}
	if elections == nil {
		return nil, fmt.Errorf("election finder is required")
	}

	svc := &Service{
		store:     store,
		elections: elections,
		logger:    logger,
		tracer:    otel.Tracer("votegate/registration"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register creates a registration for a verified registrant. A second
// attempt for the same (registrant, election) pair fails with
// AlreadyRegistered; the store's conditional insert decides, so two
// concurrent attempts cannot both succeed.
func (s *Service) Register(ctx context.Context, registrantKey string, electionID id.ElectionID) (Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Register")
	defer span.End()

	if registrantKey == "" {
		return Registration{}, dErrors.New(dErrors.CodeInvalidInput, "registrant key is required")
	}

	e, err := s.elections.Get(ctx, electionID)
	if err != nil {
		return Registration{}, err
	}
	now := requestcontext.Now(ctx)
	if e.Status == election.StatusCompleted || !now.Before(e.EndTime) {
		return Registration{}, s.reject(ctx, registrantKey, electionID,
			dErrors.New(dErrors.CodeWindowClosed, "election is no longer accepting registrations"))
	}

	voterHash, err := DeriveVoterHash(registrantKey, electionID)
	if err != nil {
		return Registration{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to derive voter hash")
	}

	r := Registration{
		ID:            id.NewRegistrationID(),
		RegistrantKey: registrantKey,
		ElectionID:    electionID,
		VoterHash:     voterHash,
		RegisteredAt:  now,
	}
	if err := s.store.Save(ctx, r); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Registration{}, s.reject(ctx, registrantKey, electionID,
				dErrors.New(dErrors.CodeAlreadyRegistered, "registrant is already registered for this election"))
		}
		return Registration{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save registration")
	}

	s.logger.InfoContext(ctx, "registration created",
		"request_id", requestcontext.RequestID(ctx),
		"election_id", electionID,
		"voter_hash", voterHash,
	)
	s.emit(ctx, audit.Event{
		Action:     audit.ActionRegistrationCreated,
		Subject:    registrantKey,
		ElectionID: electionID.String(),
		Decision:   "accepted",
	})
	return r, nil
}

// HasRegistrations reports whether any voter is registered for an election.
// The election directory uses this to freeze the candidate list.
func (s *Service) HasRegistrations(ctx context.Context, electionID id.ElectionID) (bool, error) {
	count, err := s.store.CountByElection(ctx, electionID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to count registrations")
	}
	return count > 0, nil
}

// DeleteByElection removes all registrations for a deleted election.
func (s *Service) DeleteByElection(ctx context.Context, electionID id.ElectionID) error {
	if err := s.store.DeleteByElection(ctx, electionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete registrations")
	}
	return nil
}

// VoterHashes returns the voter hashes issued to a registrant across all
// elections. Verification uses this to run the global prior-vote check.
func (s *Service) VoterHashes(ctx context.Context, registrantKey string) ([]id.VoterHash, error) {
	registrations, err := s.store.ListByRegistrant(ctx, registrantKey)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list registrations")
	}
	hashes := make([]id.VoterHash, 0, len(registrations))
	for _, r := range registrations {
		hashes = append(hashes, r.VoterHash)
	}
	return hashes, nil
}

func (s *Service) reject(ctx context.Context, registrantKey string, electionID id.ElectionID, err error) error {
	s.logger.InfoContext(ctx, "registration rejected",
		"request_id", requestcontext.RequestID(ctx),
		"election_id", electionID,
		"reason", dErrors.CodeOf(err),
	)
	s.emit(ctx, audit.Event{
		Action:     audit.ActionRegistrationRejected,
		Subject:    registrantKey,
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

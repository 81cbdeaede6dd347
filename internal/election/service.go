package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"votegate/internal/audit"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// RegistrationLedger is the slice of the registration subsystem the
// directory needs: whether voters are bound to an election, and cascade
// removal when an election is deleted.
type RegistrationLedger interface {
	HasRegistrations(ctx context.Context, electionID id.ElectionID) (bool, error)
	DeleteByElection(ctx context.Context, electionID id.ElectionID) error
}

// VoteLedger is the cascade hook into the vote subsystem.
type VoteLedger interface {
	DeleteByElection(ctx context.Context, electionID id.ElectionID) error
}

// Service owns election definitions and their lifecycle. Deleting an
// election cascades to dependent votes and registrations so no ledger entry
// ever references a missing election.
type Service struct {
	store         Store
	registrations RegistrationLedger
	votes         VoteLedger
	auditLog      *audit.Publisher
	logger        *slog.Logger
	tracer        trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithAuditPublisher attaches the audit trail.
func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) { s.auditLog = publisher }
}

// NewService constructs the election directory service.
func NewService(store Store, registrations RegistrationLedger, votes VoteLedger, logger *slog.Logger, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("election store is required")
	}
	if registrations == nil || votes == nil {
		return nil, fmt.Errorf("registration and vote ledgers are required")
	}

	svc := &Service{
		store:         store,
		registrations: registrations,
		votes:         votes,
		logger:        logger,
		tracer:        otel.Tracer("votegate/election"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateParams carries an administrator's new election definition.
type CreateParams struct {
	Title          string
	Description    string
	Candidates     []Candidate
	StartTime      time.Time
	EndTime        time.Time
	ExpectedVoters int
}

// Create validates and stores a new election in draft status.
func (s *Service) Create(ctx context.Context, createdBy id.AdminID, params CreateParams) (Election, error) {
	ctx, span := s.tracer.Start(ctx, "election.Create")
	defer span.End()

	e := Election{
		ID:             id.NewElectionID(),
		Title:          params.Title,
		Description:    params.Description,
		Candidates:     params.Candidates,
		StartTime:      params.StartTime,
		EndTime:        params.EndTime,
		ExpectedVoters: params.ExpectedVoters,
		Status:         StatusDraft,
		CreatedBy:      createdBy,
		CreatedAt:      requestcontext.Now(ctx),
	}
	if err := e.Validate(); err != nil {
		return Election{}, err
	}

	if err := s.store.Save(ctx, e); err != nil {
		return Election{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save election")
	}

	s.logger.InfoContext(ctx, "election created",
		"request_id", requestcontext.RequestID(ctx),
		"election_id", e.ID,
		"candidates", len(e.Candidates),
	)
	s.emit(ctx, audit.Event{
		Action:     audit.ActionElectionCreated,
		Actor:      createdBy.String(),
		ElectionID: e.ID.String(),
		Decision:   "accepted",
	})
	return e, nil
}

// Get returns one election by ID.
func (s *Service) Get(ctx context.Context, electionID id.ElectionID) (Election, error) {
	e, err := s.store.FindByID(ctx, electionID)
	if err != nil {
		return Election{}, s.translate(err, "election")
	}
	return e, nil
}

// List returns all elections ordered by creation time.
func (s *Service) List(ctx context.Context) ([]Election, error) {
	elections, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list elections")
	}
	return elections, nil
}

// UpdateParams carries mutable election fields. Nil pointers leave the
// stored value untouched.
type UpdateParams struct {
	Title          *string
	Description    *string
	Candidates     []Candidate
	StartTime      *time.Time
	EndTime        *time.Time
	ExpectedVoters *int
}

// Update applies an administrator edit. The candidate list is frozen once
// the first registration exists: voters registered against a ballot must
// see that same ballot when they cast.
func (s *Service) Update(ctx context.Context, electionID id.ElectionID, params UpdateParams) (Election, error) {
	ctx, span := s.tracer.Start(ctx, "election.Update")
	defer span.End()

	e, err := s.store.FindByID(ctx, electionID)
	if err != nil {
		return Election{}, s.translate(err, "election")
	}

	if params.Candidates != nil {
		bound, err := s.registrations.HasRegistrations(ctx, electionID)
		if err != nil {
			return Election{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check registrations")
		}
		if bound {
			return Election{}, dErrors.New(dErrors.CodeConflict, "candidate list is immutable once voters are registered")
		}
		e.Candidates = params.Candidates
	}
	if params.Title != nil {
		e.Title = *params.Title
	}
	if params.Description != nil {
		e.Description = *params.Description
	}
	if params.StartTime != nil {
		e.StartTime = *params.StartTime
	}
	if params.EndTime != nil {
		e.EndTime = *params.EndTime
	}
	if params.ExpectedVoters != nil {
		e.ExpectedVoters = *params.ExpectedVoters
	}

	if err := e.Validate(); err != nil {
		return Election{}, err
	}
	if err := s.store.Update(ctx, e); err != nil {
		return Election{}, s.translate(err, "election")
	}

	s.emit(ctx, audit.Event{
		Action:     audit.ActionElectionUpdated,
		Actor:      requestcontext.AdminID(ctx).String(),
		ElectionID: e.ID.String(),
		Decision:   "accepted",
	})
	return e, nil
}

// Activate moves a draft election into the active state, opening its window.
func (s *Service) Activate(ctx context.Context, electionID id.ElectionID) (Election, error) {
	e, err := s.store.FindByID(ctx, electionID)
	if err != nil {
		return Election{}, s.translate(err, "election")
	}
	if e.Status != StatusDraft {
		return Election{}, dErrors.Newf(dErrors.CodeConflict, "election is %s, only draft elections can be activated", e.Status)
	}

	e.Status = StatusActive
	if err := s.store.Update(ctx, e); err != nil {
		return Election{}, s.translate(err, "election")
	}

	s.emit(ctx, audit.Event{
		Action:     audit.ActionElectionActivated,
		Actor:      requestcontext.AdminID(ctx).String(),
		ElectionID: e.ID.String(),
		Decision:   "accepted",
	})
	return e, nil
}

// Complete marks an election completed after its window has closed.
func (s *Service) Complete(ctx context.Context, electionID id.ElectionID) (Election, error) {
	e, err := s.store.FindByID(ctx, electionID)
	if err != nil {
		return Election{}, s.translate(err, "election")
	}
	if e.Status != StatusActive {
		return Election{}, dErrors.Newf(dErrors.CodeConflict, "election is %s, only active elections can be completed", e.Status)
	}
	if now := requestcontext.Now(ctx); now.Before(e.EndTime) {
		return Election{}, dErrors.New(dErrors.CodeWindowClosed, "voting window is still open")
	}

	e.Status = StatusCompleted
	if err := s.store.Update(ctx, e); err != nil {
		return Election{}, s.translate(err, "election")
	}
	return e, nil
}

// Delete removes an election and cascades to its votes and registrations,
// preserving referential integrity across the ledgers.
func (s *Service) Delete(ctx context.Context, electionID id.ElectionID) error {
	ctx, span := s.tracer.Start(ctx, "election.Delete")
	defer span.End()

	if _, err := s.store.FindByID(ctx, electionID); err != nil {
		return s.translate(err, "election")
	}

	// Dependents first so a crash mid-delete can never leave votes that
	// reference a missing election.
	if err := s.votes.DeleteByElection(ctx, electionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete election votes")
	}
	if err := s.registrations.DeleteByElection(ctx, electionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete election registrations")
	}
	if err := s.store.Delete(ctx, electionID); err != nil {
		return s.translate(err, "election")
	}

	s.logger.InfoContext(ctx, "election deleted",
		"request_id", requestcontext.RequestID(ctx),
		"election_id", electionID,
	)
	s.emit(ctx, audit.Event{
		Action:     audit.ActionElectionDeleted,
		Actor:      requestcontext.AdminID(ctx).String(),
		ElectionID: electionID.String(),
		Decision:   "accepted",
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditLog == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	s.auditLog.Emit(ctx, event)
}

func (s *Service) translate(err error, entity string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Newf(dErrors.CodeNotFound, "%s not found", entity)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Newf(dErrors.CodeConflict, "%s already exists", entity)
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "election store failed")
	}
}

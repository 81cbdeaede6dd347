package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"votegate/internal/audit"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// DefaultFaceMatchThreshold is used when config supplies none.
const DefaultFaceMatchThreshold = 0.80

// VoteHistory answers whether a registrant has ever cast a ballot, across
// all elections. Verification enforces the global one-person rule here;
// per-election enforcement lives in the vote ledger.
type VoteHistory interface {
	HasVoted(ctx context.Context, registrantKey string) (bool, error)
}

// Service performs identity verification: registry lookup, eligibility
// status, prior-vote history and face match, in that order of precedence.
// It never writes voter state.
type Service struct {
	registry   Registry
	comparator FaceComparator
	history    VoteHistory
	threshold  float64
	auditLog   *audit.Publisher
	metrics    *Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithThreshold overrides the face match threshold.
func WithThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithAuditPublisher attaches the audit trail.
func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) { s.auditLog = publisher }
}

// WithMetrics attaches verification metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs the verification service.
func NewService(registry Registry, comparator FaceComparator, history VoteHistory, logger *slog.Logger, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("identity registry is required")
	}
	if comparator == nil {
		return nil, fmt.Errorf("face comparator is required")
	}
	if history == nil {
		return nil, fmt.Errorf("vote history is required")
	}

	svc := &Service{
		registry:   registry,
		comparator: comparator,
		history:    history,
		threshold:  DefaultFaceMatchThreshold,
		logger:     logger,
		tracer:     otel.Tracer("votegate/identity"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// VerifyParams carries one verification attempt.
type VerifyParams struct {
	DocumentType   id.DocumentType
	DocumentNumber id.DocumentNumber
	ProofImage     []byte
}

// Verify runs the full verification sequence. Check precedence is fixed:
// unknown document, then ineligible status, then prior vote, then face
// mismatch. Evidence behind the last two checks is gathered concurrently
// since neither depends on the other.
func (s *Service) Verify(ctx context.Context, params VerifyParams) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Verify")
	defer span.End()

	if !params.DocumentType.IsValid() {
		return Outcome{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown document type %q", params.DocumentType)
	}
	if params.DocumentNumber == "" {
		return Outcome{}, dErrors.New(dErrors.CodeInvalidInput, "document number is required")
	}
	if len(params.ProofImage) == 0 {
		return Outcome{}, dErrors.New(dErrors.CodeInvalidInput, "proof image is required")
	}

	registrant, err := s.registry.Lookup(ctx, params.DocumentType, params.DocumentNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Outcome{}, s.reject(ctx, params, "", dErrors.New(dErrors.CodeNotFound, "registrant not found in registry"))
		}
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry lookup failed")
	}

	if registrant.Status != StatusVerified {
		return Outcome{}, s.reject(ctx, params, registrant.Key(),
			dErrors.New(dErrors.CodeNotEligible, "registrant is not eligible to vote"))
	}

	var (
		voted bool
		score float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		voted, err = s.history.HasVoted(gctx, registrant.Key())
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "vote history lookup failed")
		}
		return nil
	})
	g.Go(func() error {
		reference, err := s.registry.ReferencePhoto(gctx, registrant)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "reference photo unavailable")
		}
		score, err = s.comparator.Compare(gctx, params.ProofImage, reference)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, "face comparison failed")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}

	if s.metrics != nil {
		s.metrics.FaceScore.Observe(score)
	}

	if voted {
		return Outcome{}, s.reject(ctx, params, registrant.Key(),
			dErrors.New(dErrors.CodeAlreadyVoted, "registrant has already cast a ballot"))
	}
	if score < s.threshold {
		return Outcome{}, s.reject(ctx, params, registrant.Key(),
			dErrors.Newf(dErrors.CodeFaceMismatch, "face match score %.2f below threshold", score))
	}

	s.logger.InfoContext(ctx, "identity verified",
		"request_id", requestcontext.RequestID(ctx),
		"registrant", registrant.Key(),
		"face_score", score,
	)
	if s.metrics != nil {
		s.metrics.VerificationsTotal.WithLabelValues("succeeded").Inc()
	}
	s.emit(ctx, audit.Event{
		Action:   audit.ActionVerificationSucceeded,
		Subject:  registrant.Key(),
		Decision: "verified",
	})
	return Outcome{Registrant: registrant, FaceScore: score}, nil
}

func (s *Service) reject(ctx context.Context, params VerifyParams, subject string, err error) error {
	if subject == "" {
		subject = fmt.Sprintf("%s:%s", params.DocumentType, params.DocumentNumber)
	}

	s.logger.InfoContext(ctx, "identity verification rejected",
		"request_id", requestcontext.RequestID(ctx),
		"subject", subject,
		"reason", dErrors.CodeOf(err),
	)
	if s.metrics != nil {
		s.metrics.VerificationsTotal.WithLabelValues(string(dErrors.CodeOf(err))).Inc()
	}
	s.emit(ctx, audit.Event{
		Action:   audit.ActionVerificationFailed,
		Subject:  subject,
		Decision: "rejected",
		Reason:   string(dErrors.CodeOf(err)),
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

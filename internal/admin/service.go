package admin

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"votegate/internal/audit"
	"votegate/internal/platform/config"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/requestcontext"
)

// Service authenticates administrators and vends session tokens. A single
// configured administrator account replaces any ambient trusted-client
// admin flag; every privileged route checks the session server-side.
type Service struct {
	email        string
	passwordHash []byte
	adminID      id.AdminID
	tokens       *TokenService
	auditLog     *audit.Publisher
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAuditPublisher attaches the audit trail.
func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) { s.auditLog = publisher }
}

// NewService constructs the admin session service from config.
func NewService(cfg config.AdminConfig, logger *slog.Logger, opts ...Option) (*Service, error) {
	if cfg.Email == "" || cfg.PasswordHash == "" {
		return nil, fmt.Errorf("admin email and password hash are required")
	}
	if cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("jwt signing key is required")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	svc := &Service{
		email:        cfg.Email,
		passwordHash: []byte(cfg.PasswordHash),
		adminID:      id.NewAdminID(),
		tokens:       NewTokenService(cfg.JWTSigningKey, ttl),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Login checks credentials and returns a session token. The email
// comparison is constant time and failures are indistinguishable, so the
// response never reveals which credential was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(s.email)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))

	if !emailMatch || passwordErr != nil {
		s.logger.WarnContext(ctx, "admin login failed",
			"request_id", requestcontext.RequestID(ctx),
		)
		s.emit(ctx, audit.Event{
			Action:   audit.ActionAdminLoginFailed,
			Decision: "rejected",
			Reason:   "invalid credentials",
		})
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.Generate(s.adminID, s.email)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	s.logger.InfoContext(ctx, "admin login succeeded",
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:   audit.ActionAdminLoginSucceeded,
		Actor:    s.adminID.String(),
		Decision: "accepted",
	})
	return token, nil
}

// VerifySessionToken validates a bearer token and returns the admin ID.
// Satisfies the RequireAdmin middleware's TokenVerifier.
func (s *Service) VerifySessionToken(token string) (id.AdminID, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return id.AdminID{}, err
	}
	adminID, err := id.ParseAdminID(claims.AdminID)
	if err != nil {
		return id.AdminID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session claims")
	}
	return adminID, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditLog == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	s.auditLog.Emit(ctx, event)
}

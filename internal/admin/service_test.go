package admin

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"votegate/internal/platform/config"
	dErrors "votegate/pkg/domain-errors"
)

// =============================================================================
// Admin Service Test Suite
// =============================================================================

type AdminServiceSuite struct {
	suite.Suite
	service *Service
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupTest() {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	s.Require().NoError(err)

	s.service, err = NewService(config.AdminConfig{
		Email:         "admin@example.org",
		PasswordHash:  string(hash),
		JWTSigningKey: "test-signing-key",
		SessionTTL:    time.Hour,
	}, slog.Default())
	s.Require().NoError(err)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *AdminServiceSuite) TestNewService() {
	s.Run("missing credentials return error", func() {
		_, err := NewService(config.AdminConfig{JWTSigningKey: "key"}, slog.Default())
		s.Error(err)
	})

	s.Run("missing signing key returns error", func() {
		_, err := NewService(config.AdminConfig{
			Email:        "admin@example.org",
			PasswordHash: "hash",
		}, slog.Default())
		s.Error(err)
	})
}

// =============================================================================
// Login Tests
// =============================================================================

func (s *AdminServiceSuite) TestLogin() {
	ctx := context.Background()

	s.Run("valid credentials yield a verifiable token", func() {
		token, err := s.service.Login(ctx, "admin@example.org", "correct horse")
		s.Require().NoError(err)
		s.NotEmpty(token)

		adminID, err := s.service.VerifySessionToken(token)
		s.NoError(err)
		s.False(adminID.IsNil())
	})

	s.Run("wrong password is rejected", func() {
		_, err := s.service.Login(ctx, "admin@example.org", "battery staple")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("wrong email is rejected with the same error", func() {
		_, wrongEmail := s.service.Login(ctx, "other@example.org", "correct horse")
		_, wrongPassword := s.service.Login(ctx, "admin@example.org", "battery staple")

		s.Require().Error(wrongEmail)
		s.Require().Error(wrongPassword)
		s.Equal(wrongPassword.Error(), wrongEmail.Error())
	})
}

// =============================================================================
// Token Tests
// =============================================================================

func (s *AdminServiceSuite) TestVerifySessionToken() {
	s.Run("garbage token is rejected", func() {
		_, err := s.service.VerifySessionToken("not-a-jwt")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("expired token is rejected", func() {
		tokens := NewTokenService("test-signing-key", -time.Minute)
		token, err := tokens.Generate(s.service.adminID, "admin@example.org")
		s.Require().NoError(err)

		_, err = s.service.VerifySessionToken(token)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("token signed with another key is rejected", func() {
		tokens := NewTokenService("some-other-key", time.Hour)
		token, err := tokens.Generate(s.service.adminID, "admin@example.org")
		s.Require().NoError(err)

		_, err = s.service.VerifySessionToken(token)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

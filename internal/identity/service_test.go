package identity

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
)

// =============================================================================
// Identity Service Test Suite
// =============================================================================
// Justification for unit tests: check precedence (unknown document before
// ineligible before already-voted before face mismatch) is a contract that a
// scripted comparator and history fake can pin down exactly.

type fakeRegistry struct {
	records map[string]Registrant
	photos  map[string][]byte
}

func (f *fakeRegistry) Lookup(_ context.Context, docType id.DocumentType, docNumber id.DocumentNumber) (Registrant, error) {
	r, ok := f.records[fmt.Sprintf("%s:%s", docType, docNumber)]
	if !ok {
		return Registrant{}, sentinel.ErrNotFound
	}
	return r, nil
}

func (f *fakeRegistry) ReferencePhoto(_ context.Context, registrant Registrant) ([]byte, error) {
	photo, ok := f.photos[registrant.Key()]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return photo, nil
}

type scriptedComparator struct {
	score float64
	err   error
}

func (c *scriptedComparator) Compare(_ context.Context, _, _ []byte) (float64, error) {
	return c.score, c.err
}

type fakeHistory struct {
	voted map[string]bool
}

func (f *fakeHistory) HasVoted(_ context.Context, registrantKey string) (bool, error) {
	return f.voted[registrantKey], nil
}

type IdentityServiceSuite struct {
	suite.Suite
	registry   *fakeRegistry
	comparator *scriptedComparator
	history    *fakeHistory
	service    *Service
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

// SetupSubTest resets the fixtures before every s.Run, since subtests
// mutate shared state (comparator score, vote history).
func (s *IdentityServiceSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *IdentityServiceSuite) SetupTest() {
	eligible := Registrant{
		DocumentType:   id.DocumentTypePrimary,
		DocumentNumber: "AB123456",
		FullName:       "Alice Novak",
		PhotoRef:       "alice.png",
		Status:         StatusVerified,
	}
	ineligible := Registrant{
		DocumentType:   id.DocumentTypePrimary,
		DocumentNumber: "CD654321",
		FullName:       "Carl Voss",
		Status:         StatusNotVerified,
	}

	s.registry = &fakeRegistry{
		records: map[string]Registrant{
			eligible.Key():   eligible,
			ineligible.Key(): ineligible,
		},
		photos: map[string][]byte{
			eligible.Key(): []byte("reference-bytes"),
		},
	}
	s.comparator = &scriptedComparator{score: 0.95}
	s.history = &fakeHistory{voted: map[string]bool{}}

	var err error
	s.service, err = NewService(s.registry, s.comparator, s.history, slog.Default())
	s.Require().NoError(err)
}

func (s *IdentityServiceSuite) verify(docNumber string) (Outcome, error) {
	return s.service.Verify(context.Background(), VerifyParams{
		DocumentType:   id.DocumentTypePrimary,
		DocumentNumber: id.DocumentNumber(docNumber),
		ProofImage:     []byte("proof-bytes"),
	})
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func (s *IdentityServiceSuite) TestNewService() {
	s.Run("nil registry returns error", func() {
		_, err := NewService(nil, s.comparator, s.history, slog.Default())
		s.Error(err)
		s.Contains(err.Error(), "registry is required")
	})

	s.Run("nil comparator returns error", func() {
		_, err := NewService(s.registry, nil, s.history, slog.Default())
		s.Error(err)
	})
}

// =============================================================================
// Verify Tests (Check Precedence)
// =============================================================================

func (s *IdentityServiceSuite) TestVerify() {
	s.Run("eligible registrant above threshold passes", func() {
		outcome, err := s.verify("AB123456")
		s.NoError(err)
		s.Equal("Alice Novak", outcome.Registrant.FullName)
		s.InDelta(0.95, outcome.FaceScore, 1e-9)
	})

	s.Run("unknown document returns not found and persists nothing", func() {
		_, err := s.verify("ZZ000000")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("ineligible status wins over face mismatch", func() {
		s.comparator.score = 0.1
		_, err := s.verify("CD654321")
		s.True(dErrors.HasCode(err, dErrors.CodeNotEligible))
	})

	s.Run("prior vote wins over face mismatch", func() {
		s.comparator.score = 0.1
		s.history.voted["primary-id:AB123456"] = true

		_, err := s.verify("AB123456")
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyVoted))
	})

	s.Run("score below threshold is a face mismatch", func() {
		s.comparator.score = 0.79
		_, err := s.verify("AB123456")
		s.True(dErrors.HasCode(err, dErrors.CodeFaceMismatch))
	})

	s.Run("score exactly at threshold passes", func() {
		s.comparator.score = 0.80
		_, err := s.verify("AB123456")
		s.NoError(err)
	})

	s.Run("empty proof image is invalid input", func() {
		_, err := s.service.Verify(context.Background(), VerifyParams{
			DocumentType:   id.DocumentTypePrimary,
			DocumentNumber: "AB123456",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("custom threshold is honored", func() {
		svc, err := NewService(s.registry, s.comparator, s.history, slog.Default(), WithThreshold(0.5))
		s.Require().NoError(err)

		s.comparator.score = 0.6
		_, err = svc.Verify(context.Background(), VerifyParams{
			DocumentType:   id.DocumentTypePrimary,
			DocumentNumber: "AB123456",
			ProofImage:     []byte("proof-bytes"),
		})
		s.NoError(err)
	})
}

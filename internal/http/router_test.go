package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	adminHandler "votegate/internal/admin/handler"
	"votegate/internal/audit"
	auditHandler "votegate/internal/audit/handler"
	"votegate/internal/ballot"
	ballotHandler "votegate/internal/ballot/handler"
	"votegate/internal/election"
	electionHandler "votegate/internal/election/handler"
	"votegate/internal/identity"
	identityHandler "votegate/internal/identity/handler"
	"votegate/internal/platform/metrics"
	"votegate/internal/registration"
	registrationHandler "votegate/internal/registration/handler"
	"votegate/internal/tally"
	tallyHandler "votegate/internal/tally/handler"
	id "votegate/pkg/domain"
	"votegate/pkg/testutil"
)

// The stubs below satisfy the handler ports with inert responses; these tests
// exercise routing and the admin session boundary, not handler behavior.

type stubElectionService struct{}

func (stubElectionService) Create(context.Context, id.AdminID, election.CreateParams) (election.Election, error) {
	return election.Election{ID: id.NewElectionID()}, nil
}
func (stubElectionService) Get(context.Context, id.ElectionID) (election.Election, error) {
	return election.Election{}, nil
}
func (stubElectionService) List(context.Context) ([]election.Election, error) { return nil, nil }
func (stubElectionService) Update(context.Context, id.ElectionID, election.UpdateParams) (election.Election, error) {
	return election.Election{}, nil
}
func (stubElectionService) Activate(context.Context, id.ElectionID) (election.Election, error) {
	return election.Election{}, nil
}
func (stubElectionService) Delete(context.Context, id.ElectionID) error { return nil }

type stubIdentityService struct{}

func (stubIdentityService) Verify(context.Context, identity.VerifyParams) (identity.Outcome, error) {
	return identity.Outcome{}, nil
}

type stubRegistrationService struct{}

func (stubRegistrationService) Register(context.Context, string, id.ElectionID) (registration.Registration, error) {
	return registration.Registration{}, nil
}

type stubRegistry struct{}

func (stubRegistry) Lookup(context.Context, id.DocumentType, id.DocumentNumber) (identity.Registrant, error) {
	return identity.Registrant{Status: identity.StatusVerified}, nil
}

type stubBallotService struct{}

func (stubBallotService) Cast(context.Context, id.VoterHash, id.ElectionID, id.CandidateID) (ballot.Vote, error) {
	return ballot.Vote{}, nil
}

type stubTallyService struct{}

func (stubTallyService) ComputeResults(context.Context, id.ElectionID) (tally.Result, error) {
	return tally.Result{}, nil
}
func (stubTallyService) Export(context.Context, id.ElectionID) (tally.ExportDocument, error) {
	return tally.ExportDocument{}, nil
}

type stubAdminService struct{}

func (stubAdminService) Login(context.Context, string, string) (string, error) {
	return "session-token", nil
}

type stubAuditSource struct{}

func (stubAuditSource) List(context.Context, int) ([]audit.Event, error) { return nil, nil }

const validSessionToken = "valid-session-token"

type stubVerifier struct{}

func (stubVerifier) VerifySessionToken(token string) (id.AdminID, error) {
	if token != validSessionToken {
		return id.AdminID{}, errors.New("token rejected")
	}
	return id.NewAdminID(), nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handlers := Handlers{
		Admin:        adminHandler.New(stubAdminService{}, logger),
		Election:     electionHandler.New(stubElectionService{}, logger),
		Identity:     identityHandler.New(stubIdentityService{}, logger),
		Registration: registrationHandler.New(stubRegistrationService{}, stubRegistry{}, logger),
		Ballot:       ballotHandler.New(stubBallotService{}, logger),
		Tally:        tallyHandler.New(stubTallyService{}, logger),
		Audit:        auditHandler.New(stubAuditSource{}, logger),
	}

	health := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	return New(handlers, stubVerifier{}, metrics.New(), logger, health)
}

func TestRouter(t *testing.T) {
	router := newTestRouter(t)

	testutil.Given(t, "the composed HTTP router", func(t *testing.T) {
		testutil.When(t, "probing operational endpoints", func(t *testing.T) {
			testutil.Then(t, "healthz responds OK", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
				testutil.AssertStatusOK(t, rr)
			})

			testutil.Then(t, "metrics responds OK", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
				testutil.AssertStatusOK(t, rr)
			})
		})

		testutil.When(t, "calling public routes without credentials", func(t *testing.T) {
			testutil.Then(t, "the election list is reachable", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/elections"))
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONHasKey(t, rr, "elections")
			})

			testutil.Then(t, "unknown routes report not found", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/nope"))
				testutil.AssertStatus(t, rr, http.StatusNotFound)
			})
		})

		testutil.When(t, "calling admin routes without a bearer token", func(t *testing.T) {
			adminPaths := []struct {
				method string
				path   string
			}{
				{http.MethodPost, "/elections"},
				{http.MethodDelete, "/elections/" + id.NewElectionID().String()},
				{http.MethodGet, "/elections/" + id.NewElectionID().String() + "/export"},
				{http.MethodGet, "/audit/events"},
			}
			for _, route := range adminPaths {
				testutil.Then(t, route.method+" "+route.path+" is refused", func(t *testing.T) {
					rr := testutil.DoRequest(router, testutil.NewRequest(t, route.method, route.path))
					testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
				})
			}
		})

		testutil.When(t, "calling admin routes with a rejected token", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/audit/events")
			req.Header.Set("Authorization", "Bearer forged-token")

			testutil.Then(t, "the request is refused", func(t *testing.T) {
				rr := testutil.DoRequest(router, req)
				testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
			})
		})

		testutil.When(t, "calling admin routes with a valid session", func(t *testing.T) {
			testutil.Then(t, "the middleware admits the request", func(t *testing.T) {
				req := testutil.NewRequest(t, http.MethodDelete, "/elections/"+id.NewElectionID().String())
				req.Header.Set("Authorization", "Bearer "+validSessionToken)

				rr := testutil.DoRequest(router, req)
				testutil.AssertStatus(t, rr, http.StatusNoContent)
			})

			testutil.Then(t, "the audit trail is readable", func(t *testing.T) {
				req := testutil.NewRequest(t, http.MethodGet, "/audit/events")
				req.Header.Set("Authorization", "Bearer "+validSessionToken)

				rr := testutil.DoRequest(router, req)
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONHasKey(t, rr, "events")
			})
		})
	})
}

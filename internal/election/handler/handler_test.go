package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votegate/internal/election"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/testutil"
)

type fakeElectionService struct {
	created election.Election
	err     error

	gotAdminID id.AdminID
	gotParams  election.CreateParams
	deletedID  id.ElectionID
}

func (f *fakeElectionService) Create(_ context.Context, createdBy id.AdminID, params election.CreateParams) (election.Election, error) {
	f.gotAdminID = createdBy
	f.gotParams = params
	return f.created, f.err
}

func (f *fakeElectionService) Get(context.Context, id.ElectionID) (election.Election, error) {
	return f.created, f.err
}

func (f *fakeElectionService) List(context.Context) ([]election.Election, error) {
	return nil, f.err
}

func (f *fakeElectionService) Update(context.Context, id.ElectionID, election.UpdateParams) (election.Election, error) {
	return f.created, f.err
}

func (f *fakeElectionService) Activate(context.Context, id.ElectionID) (election.Election, error) {
	return f.created, f.err
}

func (f *fakeElectionService) Delete(_ context.Context, electionID id.ElectionID) error {
	f.deletedID = electionID
	return f.err
}

// newTestRouter mounts both route sets without the session middleware, so
// the admin-context requirement inside the handlers is visible.
func newTestRouter(service *fakeElectionService) http.Handler {
	h := New(service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.RegisterPublic(r)
	h.RegisterAdmin(r)
	return r
}

func createBody(t *testing.T) *http.Request {
	t.Helper()
	return testutil.NewJSONRequest(t, http.MethodPost, "/elections", map[string]any{
		"title": "General Election 2026",
		"candidates": []map[string]string{
			{"id": "candidate-1", "name": "Alice"},
			{"id": "candidate-2", "name": "Bob"},
		},
		"start_time":      time.Date(2026, 11, 3, 8, 0, 0, 0, time.UTC),
		"end_time":        time.Date(2026, 11, 3, 20, 0, 0, 0, time.UTC),
		"expected_voters": 1000,
	})
}

func TestHandleCreate(t *testing.T) {
	t.Run("requires an admin identity in context", func(t *testing.T) {
		router := newTestRouter(&fakeElectionService{})

		rr := testutil.DoRequest(router, createBody(t))

		testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
	})

	t.Run("creates with the acting admin attributed", func(t *testing.T) {
		adminID := id.NewAdminID()
		service := &fakeElectionService{created: election.Election{
			ID:        id.NewElectionID(),
			Title:     "General Election 2026",
			Status:    election.StatusDraft,
			CreatedBy: adminID,
		}}
		router := newTestRouter(service)

		req := testutil.WithAdminID(createBody(t), adminID)
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		testutil.AssertJSONContains(t, rr, "title", "General Election 2026")
		testutil.AssertJSONContains(t, rr, "status", "draft")

		require.Equal(t, adminID, service.gotAdminID)
		assert.Equal(t, "General Election 2026", service.gotParams.Title)
		assert.Len(t, service.gotParams.Candidates, 2)
	})

	t.Run("passes service validation errors through", func(t *testing.T) {
		service := &fakeElectionService{err: dErrors.New(dErrors.CodeInvalidInput, "an election needs at least two candidates")}
		router := newTestRouter(service)

		req := testutil.WithAdminID(createBody(t), id.NewAdminID())
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})
}

func TestHandleGet(t *testing.T) {
	t.Run("rejects a malformed election id", func(t *testing.T) {
		router := newTestRouter(&fakeElectionService{})

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/elections/not-a-uuid"))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("unknown election maps to not found", func(t *testing.T) {
		service := &fakeElectionService{err: dErrors.New(dErrors.CodeNotFound, "election not found")}
		router := newTestRouter(service)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/elections/"+id.NewElectionID().String()))

		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestHandleActivate(t *testing.T) {
	t.Run("double activation surfaces the conflict", func(t *testing.T) {
		service := &fakeElectionService{err: dErrors.New(dErrors.CodeConflict, "only draft elections can be activated")}
		router := newTestRouter(service)

		req := testutil.NewRequest(t, http.MethodPost, "/elections/"+id.NewElectionID().String()+"/activate")
		rr := testutil.DoRequest(router, testutil.WithAdminID(req, id.NewAdminID()))

		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})
}

func TestHandleDelete(t *testing.T) {
	service := &fakeElectionService{}
	router := newTestRouter(service)
	electionID := id.NewElectionID()

	req := testutil.NewRequest(t, http.MethodDelete, "/elections/"+electionID.String())
	rr := testutil.DoRequest(router, testutil.WithAdminID(req, id.NewAdminID()))

	testutil.AssertStatus(t, rr, http.StatusNoContent)
	assert.Equal(t, electionID, service.deletedID)
}

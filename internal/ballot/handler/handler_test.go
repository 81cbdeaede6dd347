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

	"votegate/internal/ballot"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/testutil"
)

type fakeCastService struct {
	vote ballot.Vote
	err  error

	gotVoterHash   id.VoterHash
	gotElectionID  id.ElectionID
	gotCandidateID id.CandidateID
}

func (f *fakeCastService) Cast(_ context.Context, voterHash id.VoterHash, electionID id.ElectionID, candidateID id.CandidateID) (ballot.Vote, error) {
	f.gotVoterHash = voterHash
	f.gotElectionID = electionID
	f.gotCandidateID = candidateID
	return f.vote, f.err
}

func newTestHandler(service *fakeCastService) http.Handler {
	h := New(service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestHandleCast(t *testing.T) {
	electionID := id.NewElectionID()
	castAt := time.Date(2026, 11, 3, 9, 30, 0, 0, time.UTC)

	t.Run("accepted vote returns the sealed receipt", func(t *testing.T) {
		service := &fakeCastService{vote: ballot.Vote{
			ID:           id.NewVoteID(),
			ElectionID:   electionID,
			CandidateID:  "candidate-1",
			VoterHash:    "voter-hash-a",
			IntegrityTag: "feedface",
			CastAt:       castAt,
		}}
		router := newTestHandler(service)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/votes", map[string]string{
			"election_id":  electionID.String(),
			"voter_hash":   "voter-hash-a",
			"candidate_id": "candidate-1",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[struct {
			VoteID       string    `json:"vote_id"`
			ElectionID   string    `json:"election_id"`
			IntegrityTag string    `json:"integrity_tag"`
			CastAt       time.Time `json:"cast_at"`
		}](t, rr)

		assert.Equal(t, service.vote.ID.String(), resp.VoteID)
		assert.Equal(t, electionID.String(), resp.ElectionID)
		assert.Equal(t, "feedface", resp.IntegrityTag)
		assert.True(t, resp.CastAt.Equal(castAt))

		require.Equal(t, id.VoterHash("voter-hash-a"), service.gotVoterHash)
		require.Equal(t, id.CandidateID("candidate-1"), service.gotCandidateID)
	})

	t.Run("the receipt never echoes the candidate choice", func(t *testing.T) {
		service := &fakeCastService{vote: ballot.Vote{
			ID:          id.NewVoteID(),
			ElectionID:  electionID,
			CandidateID: "candidate-1",
			CastAt:      castAt,
		}}
		router := newTestHandler(service)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/votes", map[string]string{
			"election_id":  electionID.String(),
			"voter_hash":   "voter-hash-a",
			"candidate_id": "candidate-1",
		})
		rr := testutil.DoRequest(router, req)

		assert.NotContains(t, string(testutil.ReadBody(t, rr)), "candidate")
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestHandler(&fakeCastService{})

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/votes", "{not json")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("invalid election id", func(t *testing.T) {
		router := newTestHandler(&fakeCastService{})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/votes", map[string]string{
			"election_id":  "not-a-uuid",
			"voter_hash":   "voter-hash-a",
			"candidate_id": "candidate-1",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("missing candidate id", func(t *testing.T) {
		router := newTestHandler(&fakeCastService{})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/votes", map[string]string{
			"election_id": electionID.String(),
			"voter_hash":  "voter-hash-a",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("service rejections map to their status", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"duplicate vote", dErrors.New(dErrors.CodeDuplicateVote, "a vote for this election is already recorded"), http.StatusConflict, "duplicate_vote"},
			{"window closed", dErrors.New(dErrors.CodeWindowClosed, "voting has ended"), http.StatusUnprocessableEntity, "window_closed"},
			{"unknown election", dErrors.New(dErrors.CodeNotFound, "election not found"), http.StatusNotFound, "not_found"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router := newTestHandler(&fakeCastService{err: tt.err})

				req := testutil.NewJSONRequest(t, http.MethodPost, "/votes", map[string]string{
					"election_id":  electionID.String(),
					"voter_hash":   "voter-hash-a",
					"candidate_id": "candidate-1",
				})
				rr := testutil.DoRequest(router, req)

				testutil.AssertStatusAndError(t, rr, tt.wantStatus, tt.wantCode)
			})
		}
	})
}

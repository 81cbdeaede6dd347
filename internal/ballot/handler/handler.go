package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"votegate/internal/ballot"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	"votegate/pkg/requestcontext"
)

// Service defines the cast operation the handler needs.
type Service interface {
	Cast(ctx context.Context, voterHash id.VoterHash, electionID id.ElectionID, candidateID id.CandidateID) (ballot.Vote, error)
}

// Handler exposes the vote casting endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a ballot Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the vote route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/votes", h.handleCast)
}

type castRequest struct {
	ElectionID  string `json:"election_id"`
	VoterHash   string `json:"voter_hash"`
	CandidateID string `json:"candidate_id"`
}

type castResponse struct {
	VoteID       string    `json:"vote_id"`
	ElectionID   string    `json:"election_id"`
	IntegrityTag string    `json:"integrity_tag"`
	CastAt       time.Time `json:"cast_at"`
}

func (h *Handler) handleCast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[castRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	electionID, err := id.ParseElectionID(req.ElectionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.CandidateID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "candidate id is required"))
		return
	}

	vote, err := h.service.Cast(ctx, id.VoterHash(req.VoterHash), electionID, id.CandidateID(req.CandidateID))
	if err != nil {
		h.logger.InfoContext(ctx, "cast request rejected",
			"request_id", requestID,
			"election_id", electionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	// The response commits to the sealed ballot, never the choice itself.
	httputil.WriteJSON(w, http.StatusCreated, castResponse{
		VoteID:       vote.ID.String(),
		ElectionID:   vote.ElectionID.String(),
		IntegrityTag: vote.IntegrityTag,
		CastAt:       vote.CastAt,
	})
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"votegate/internal/election"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	"votegate/pkg/requestcontext"
)

// Service defines the election directory operations the handler needs.
type Service interface {
	Create(ctx context.Context, createdBy id.AdminID, params election.CreateParams) (election.Election, error)
	Get(ctx context.Context, electionID id.ElectionID) (election.Election, error)
	List(ctx context.Context) ([]election.Election, error)
	Update(ctx context.Context, electionID id.ElectionID, params election.UpdateParams) (election.Election, error)
	Activate(ctx context.Context, electionID id.ElectionID) (election.Election, error)
	Delete(ctx context.Context, electionID id.ElectionID) error
}

// Handler exposes election management endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates an election Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the read-only election routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/elections", h.handleList)
	r.Get("/elections/{electionID}", h.handleGet)
}

// RegisterAdmin mounts the mutating election routes. The caller wraps these
// in admin session middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/elections", h.handleCreate)
	r.Patch("/elections/{electionID}", h.handleUpdate)
	r.Post("/elections/{electionID}/activate", h.handleActivate)
	r.Delete("/elections/{electionID}", h.handleDelete)
}

type candidatePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type createElectionRequest struct {
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Candidates     []candidatePayload `json:"candidates"`
	StartTime      time.Time          `json:"start_time"`
	EndTime        time.Time          `json:"end_time"`
	ExpectedVoters int                `json:"expected_voters"`
}

type updateElectionRequest struct {
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	Candidates     []candidatePayload `json:"candidates"`
	StartTime      *time.Time         `json:"start_time"`
	EndTime        *time.Time         `json:"end_time"`
	ExpectedVoters *int               `json:"expected_voters"`
}

type electionResponse struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description,omitempty"`
	Candidates     []candidatePayload `json:"candidates"`
	StartTime      time.Time          `json:"start_time"`
	EndTime        time.Time          `json:"end_time"`
	ExpectedVoters int                `json:"expected_voters"`
	Status         string             `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}

func toResponse(e election.Election) electionResponse {
	candidates := make([]candidatePayload, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		candidates = append(candidates, candidatePayload{ID: string(c.ID), Name: c.Name})
	}
	return electionResponse{
		ID:             e.ID.String(),
		Title:          e.Title,
		Description:    e.Description,
		Candidates:     candidates,
		StartTime:      e.StartTime,
		EndTime:        e.EndTime,
		ExpectedVoters: e.ExpectedVoters,
		Status:         string(e.Status),
		CreatedAt:      e.CreatedAt,
	}
}

func toCandidates(payload []candidatePayload) []election.Candidate {
	if payload == nil {
		return nil
	}
	candidates := make([]election.Candidate, 0, len(payload))
	for _, c := range payload {
		candidates = append(candidates, election.Candidate{ID: id.CandidateID(c.ID), Name: c.Name})
	}
	return candidates
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	adminID := requestcontext.AdminID(ctx)
	if adminID.IsNil() {
		h.logger.ErrorContext(ctx, "admin ID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[createElectionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	e, err := h.service.Create(ctx, adminID, election.CreateParams{
		Title:          req.Title,
		Description:    req.Description,
		Candidates:     toCandidates(req.Candidates),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		ExpectedVoters: req.ExpectedVoters,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "election creation failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := h.service.Get(ctx, electionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	elections, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list elections",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	responses := make([]electionResponse, 0, len(elections))
	for _, e := range elections {
		responses = append(responses, toResponse(e))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"elections": responses})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[updateElectionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	e, err := h.service.Update(ctx, electionID, election.UpdateParams{
		Title:          req.Title,
		Description:    req.Description,
		Candidates:     toCandidates(req.Candidates),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		ExpectedVoters: req.ExpectedVoters,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "election update failed",
			"request_id", requestID,
			"election_id", electionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := h.service.Activate(ctx, electionID)
	if err != nil {
		h.logger.WarnContext(ctx, "election activation failed",
			"request_id", requestcontext.RequestID(ctx),
			"election_id", electionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, electionID); err != nil {
		h.logger.WarnContext(ctx, "election deletion failed",
			"request_id", requestcontext.RequestID(ctx),
			"election_id", electionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

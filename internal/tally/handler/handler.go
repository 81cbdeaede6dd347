package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"votegate/internal/tally"
	id "votegate/pkg/domain"
	"votegate/pkg/platform/httputil"
	"votegate/pkg/requestcontext"
)

// Service defines the tally operations the handler needs.
type Service interface {
	ComputeResults(ctx context.Context, electionID id.ElectionID) (tally.Result, error)
	Export(ctx context.Context, electionID id.ElectionID) (tally.ExportDocument, error)
}

// Handler exposes result and export endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a tally Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the public results route.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/elections/{electionID}/results", h.handleResults)
}

// RegisterAdmin mounts the export route. The caller wraps it in admin
// session middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/elections/{electionID}/export", h.handleExport)
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.ComputeResults(ctx, electionID)
	if err != nil {
		h.logger.InfoContext(ctx, "results request rejected",
			"request_id", requestcontext.RequestID(ctx),
			"election_id", electionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.Export(ctx, electionID)
	if err != nil {
		h.logger.InfoContext(ctx, "export request rejected",
			"request_id", requestcontext.RequestID(ctx),
			"election_id", electionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "election-"+electionID.String()+".json"))
	httputil.WriteJSON(w, http.StatusOK, doc)
}

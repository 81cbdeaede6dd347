package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"votegate/internal/audit"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	"votegate/pkg/requestcontext"
)

// Source lists recorded audit events.
type Source interface {
	List(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler exposes the audit trail to administrators.
type Handler struct {
	source Source
	logger *slog.Logger
}

// New creates an audit Handler.
func New(source Source, logger *slog.Logger) *Handler {
	return &Handler{source: source, logger: logger}
}

// Register mounts the audit route. The caller wraps it in admin session
// middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/events", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	events, err := h.source.List(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list audit events"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"votegate/internal/identity"
	"votegate/internal/registration"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// Service defines the registration operation the handler needs.
type Service interface {
	Register(ctx context.Context, registrantKey string, electionID id.ElectionID) (registration.Registration, error)
}

// RegistrantLookup resolves a document to its registry record.
type RegistrantLookup interface {
	Lookup(ctx context.Context, docType id.DocumentType, docNumber id.DocumentNumber) (identity.Registrant, error)
}

// Handler exposes the voter registration endpoint.
type Handler struct {
	service  Service
	registry RegistrantLookup
	logger   *slog.Logger
}

// New creates a registration Handler.
func New(service Service, registry RegistrantLookup, logger *slog.Logger) *Handler {
	return &Handler{service: service, registry: registry, logger: logger}
}

// Register mounts the registration route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/registrations", h.handleRegister)
}

type registerRequest struct {
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	ElectionID     string `json:"election_id"`
}

type registerResponse struct {
	RegistrationID string    `json:"registration_id"`
	ElectionID     string    `json:"election_id"`
	VoterHash      string    `json:"voter_hash"`
	RegisteredAt   time.Time `json:"registered_at"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[registerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	docType := id.DocumentType(req.DocumentType)
	if !docType.IsValid() {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "unknown document type %q", req.DocumentType))
		return
	}
	electionID, err := id.ParseElectionID(req.ElectionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	registrant, err := h.registry.Lookup(ctx, docType, id.DocumentNumber(req.DocumentNumber))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "registrant not found in registry"))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry lookup failed"))
		return
	}
	if registrant.Status != identity.StatusVerified {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotEligible, "registrant is not eligible to vote"))
		return
	}

	reg, err := h.service.Register(ctx, registrant.Key(), electionID)
	if err != nil {
		h.logger.InfoContext(ctx, "registration request rejected",
			"request_id", requestID,
			"election_id", electionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, registerResponse{
		RegistrationID: reg.ID.String(),
		ElectionID:     reg.ElectionID.String(),
		VoterHash:      string(reg.VoterHash),
		RegisteredAt:   reg.RegisteredAt,
	})
}

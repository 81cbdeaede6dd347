package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	"votegate/pkg/requestcontext"
)

// Service defines the login operation the handler needs.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Handler exposes the admin login endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates an admin Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the login route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/login", h.handleLogin)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if !govalidator.IsEmail(req.Email) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "a valid email is required"))
		return
	}
	if req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "password is required"))
		return
	}

	token, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{Token: token})
}

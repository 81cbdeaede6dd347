package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"votegate/internal/capture"
	"votegate/internal/identity"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	"votegate/pkg/requestcontext"
)

// maxProofImageBytes caps the uploaded proof image.
const maxProofImageBytes = 10 << 20

// Service defines the verification operation the handler needs.
type Service interface {
	Verify(ctx context.Context, params identity.VerifyParams) (identity.Outcome, error)
}

// Handler exposes the identity verification endpoint.
type Handler struct {
	service Service
	camera  *capture.Manager
	logger  *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithCaptureManager attaches a live capture source. When the request omits
// the proof_image part, a frame from this source is used instead.
func WithCaptureManager(m *capture.Manager) Option {
	return func(h *Handler) { h.camera = m }
}

// New creates an identity Handler.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the verification route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verify", h.handleVerify)
}

type verifyResponse struct {
	Verified   bool    `json:"verified"`
	FaceScore  float64 `json:"face_score"`
	Registrant struct {
		DocumentType   string `json:"document_type"`
		DocumentNumber string `json:"document_number"`
		FullName       string `json:"full_name"`
	} `json:"registrant"`
}

// handleVerify accepts a multipart form with document_type, document_number
// and a proof_image file part. Without the file part, a configured capture
// device supplies the frame.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if err := r.ParseMultipartForm(maxProofImageBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected multipart form"))
		return
	}

	docType := id.DocumentType(r.FormValue("document_type"))
	docNumber := r.FormValue("document_number")
	if docNumber == "" || !govalidator.IsPrintableASCII(docNumber) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "document number is required"))
		return
	}

	proof, err := h.proofImage(ctx, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.service.Verify(ctx, identity.VerifyParams{
		DocumentType:   docType,
		DocumentNumber: id.DocumentNumber(docNumber),
		ProofImage:     proof,
	})
	if err != nil {
		h.logger.InfoContext(ctx, "verification request rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := verifyResponse{Verified: true, FaceScore: outcome.FaceScore}
	resp.Registrant.DocumentType = string(outcome.Registrant.DocumentType)
	resp.Registrant.DocumentNumber = string(outcome.Registrant.DocumentNumber)
	resp.Registrant.FullName = outcome.Registrant.FullName

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// proofImage returns the uploaded proof_image part, falling back to a live
// capture frame when the part is absent and a camera is configured.
func (h *Handler) proofImage(ctx context.Context, r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("proof_image")
	if err != nil {
		if h.camera == nil {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "proof_image file part is required")
		}
		frame, captureErr := h.camera.CaptureFrame(ctx)
		if captureErr != nil {
			return nil, dErrors.Wrap(captureErr, dErrors.CodeUnavailable, "live capture failed")
		}
		return frame, nil
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxProofImageBytes+1))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "failed to read proof image")
	}
	if len(data) > maxProofImageBytes {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "proof image exceeds size limit")
	}
	return data, nil
}

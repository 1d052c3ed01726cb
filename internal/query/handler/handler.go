package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medcommons/contracts/fhe"
	"medcommons/internal/transport/http/shared"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/requestcontext"
)

// Service defines the coordinator operations the handler needs.
type Service interface {
	SubmitQuery(ctx context.Context, requester id.ActorID, ciphertext fhe.Ciphertext) error
	RequestComputation(ctx context.Context, requester id.ActorID) (string, error)
	OnComputationResult(ctx context.Context, requestID string, result []byte, proof []byte) error
	Result(ctx context.Context, requester id.ActorID) (fhe.Ciphertext, error)
	RequestDecryption(ctx context.Context, requester id.ActorID) (string, error)
	OnDecryptionResult(ctx context.Context, requestID string, cleartext []byte, proof []byte) error
	DecryptedResult(ctx context.Context, requester id.ActorID) ([]byte, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the researcher-facing routes. These sit behind the auth
// middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/queries", h.handleSubmit)
	r.Post("/queries/computation", h.handleRequestComputation)
	r.Get("/queries/result", h.handleResult)
	r.Post("/queries/decryption", h.handleRequestDecryption)
	r.Get("/queries/decrypted", h.handleDecryptedResult)
}

// RegisterCallbacks mounts the gateway callback routes. They carry no
// bearer token; a callback is trusted only through its proof and the
// pending-request binding.
func (h *Handler) RegisterCallbacks(r chi.Router) {
	r.Post("/fhe/callbacks/computation", h.handleComputationCallback)
	r.Post("/fhe/callbacks/decryption", h.handleDecryptionCallback)
}

type submitRequest struct {
	Tag  uint8  `json:"tag"`
	Data string `json:"data"` // base64
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "ciphertext payload is not valid base64"))
		return
	}

	err = h.service.SubmitQuery(ctx, requestcontext.ActorID(ctx), fhe.Ciphertext{Tag: fhe.TypeTag(req.Tag), Data: data})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to submit query",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleRequestComputation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID, err := h.service.RequestComputation(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodeUnavailable) {
			h.logger.ErrorContext(ctx, "failed to request computation",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusAccepted, map[string]string{"fhe_request_id": requestID})
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.Result(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"tag":  uint8(result.Tag),
		"data": base64.StdEncoding.EncodeToString(result.Data),
	})
}

func (h *Handler) handleRequestDecryption(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID, err := h.service.RequestDecryption(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodeUnavailable) {
			h.logger.ErrorContext(ctx, "failed to request decryption",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusAccepted, map[string]string{"fhe_request_id": requestID})
}

func (h *Handler) handleDecryptedResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cleartext, err := h.service.DecryptedResult(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"cleartext": base64.StdEncoding.EncodeToString(cleartext),
	})
}

func (h *Handler) handleComputationCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload fhe.ComputationResult
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid callback body"))
		return
	}

	if err := h.service.OnComputationResult(ctx, payload.RequestID, payload.Result, payload.Proof); err != nil {
		h.logger.WarnContext(ctx, "computation callback rejected",
			"request_id", requestcontext.RequestID(ctx),
			"fhe_request_id", payload.RequestID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDecryptionCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload fhe.DecryptionResult
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid callback body"))
		return
	}

	if err := h.service.OnDecryptionResult(ctx, payload.RequestID, payload.Cleartext, payload.Proof); err != nil {
		h.logger.WarnContext(ctx, "decryption callback rejected",
			"request_id", requestcontext.RequestID(ctx),
			"fhe_request_id", payload.RequestID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

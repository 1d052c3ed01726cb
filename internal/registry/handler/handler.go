package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medcommons/internal/registry"
	"medcommons/internal/transport/http/shared"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/requestcontext"
)

// Service defines the registry operations the handler needs.
type Service interface {
	Register(ctx context.Context, actor id.ActorID, role registry.Role) error
	RoleOf(ctx context.Context, actor id.ActorID) (registry.Role, error)
}

// Handler exposes participant registration over HTTP.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the registry routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/participants/register", h.handleRegister)
	r.Get("/participants/me", h.handleMe)
}

type registerRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	role, err := registry.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.service.Register(ctx, actor, role); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeAlreadyRegistered) {
			h.logger.ErrorContext(ctx, "failed to register participant",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]string{
		"actor": actor.String(),
		"role":  string(role),
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.ActorID(ctx)

	role, err := h.service.RoleOf(ctx, actor)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to look up role",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"actor": actor.String(),
		"role":  string(role),
	})
}

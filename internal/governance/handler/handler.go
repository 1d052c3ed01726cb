package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"medcommons/internal/governance"
	"medcommons/internal/transport/http/shared"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/requestcontext"
)

// Service defines the governance operations the handler needs.
type Service interface {
	CreateProposal(ctx context.Context, creator id.ActorID, description string, subject id.ActorID, votingPeriod time.Duration) (id.ProposalID, error)
	Vote(ctx context.Context, voter id.ActorID, proposalID id.ProposalID, support bool) error
	ExecuteProposal(ctx context.Context, actor id.ActorID, proposalID id.ProposalID) error
	Proposal(ctx context.Context, proposalID id.ProposalID) (governance.Proposal, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/proposals", h.handleCreate)
	r.Get("/proposals/{proposalID}", h.handleGet)
	r.Post("/proposals/{proposalID}/votes", h.handleVote)
	r.Post("/proposals/{proposalID}/execute", h.handleExecute)
}

type createRequest struct {
	Description         string `json:"description"`
	Subject             string `json:"subject,omitempty"`
	VotingPeriodSeconds int64  `json:"voting_period_seconds"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	var subject id.ActorID
	if req.Subject != "" {
		parsed, err := id.ParseActorID(req.Subject)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		subject = parsed
	}

	proposalID, err := h.service.CreateProposal(ctx,
		requestcontext.ActorID(ctx),
		req.Description,
		subject,
		time.Duration(req.VotingPeriodSeconds)*time.Second,
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to create proposal",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"proposal_id": int64(proposalID),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	proposal, err := h.service.Proposal(r.Context(), proposalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	payload := map[string]any{
		"proposal_id":     int64(proposal.ID),
		"description":     proposal.Description,
		"vote_count":      proposal.VoteCount,
		"voting_deadline": proposal.VotingDeadline,
		"executed":        proposal.Executed,
		"creator":         proposal.Creator.String(),
		"created_at":      proposal.CreatedAt,
	}
	if !proposal.Subject.IsNil() {
		payload["subject"] = proposal.Subject.String()
	}
	shared.WriteJSON(w, http.StatusOK, payload)
}

type voteRequest struct {
	Support bool `json:"support"`
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.service.Vote(ctx, requestcontext.ActorID(ctx), proposalID, req.Support); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}

	if err := h.service.ExecuteProposal(ctx, requestcontext.ActorID(ctx), proposalID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseProposalID(w http.ResponseWriter, r *http.Request) (id.ProposalID, bool) {
	raw := chi.URLParam(r, "proposalID")
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || !id.ProposalID(parsed).IsValid() {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "proposal id must be a positive integer"))
		return 0, false
	}
	return id.ProposalID(parsed), true
}

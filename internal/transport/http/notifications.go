package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medcommons/internal/transport/http/shared"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/platform/events"
	platformstrings "medcommons/pkg/platform/strings"
	"medcommons/pkg/requestcontext"
)

// EventReader is the read side of the notification log.
type EventReader interface {
	ListByActorAndTypes(ctx context.Context, actor string, types []events.Type) ([]events.Event, error)
}

// NotificationsHandler lets an actor list the notifications emitted about
// them, optionally filtered by type.
type NotificationsHandler struct {
	logger *slog.Logger
	reader EventReader
}

func NewNotificationsHandler(reader EventReader, logger *slog.Logger) *NotificationsHandler {
	return &NotificationsHandler{logger: logger, reader: reader}
}

func (h *NotificationsHandler) Register(r chi.Router) {
	r.Get("/notifications", h.handleList)
}

func (h *NotificationsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.ActorID(ctx)

	var types []events.Type
	for _, raw := range platformstrings.DedupeAndTrim(r.URL.Query()["type"]) {
		types = append(types, events.Type(raw))
	}

	list, err := h.reader.ListByActorAndTypes(ctx, actor.String(), types)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list notifications",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications"))
		return
	}
	if list == nil {
		list = []events.Event{}
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

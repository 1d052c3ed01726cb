package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"medcommons/contracts/fhe"
	"medcommons/internal/ledger"
	"medcommons/internal/transport/http/shared"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/requestcontext"
)

// Service defines the ledger operations the handler needs.
type Service interface {
	SubmitRecord(ctx context.Context, submitter id.ActorID, fields ledger.Fields) (id.RecordID, error)
	Record(ctx context.Context, recordID id.RecordID) (ledger.Record, error)
	RecordCount(ctx context.Context) (int, error)
}

// Handler exposes the encrypted record ledger over HTTP. Bodies carry
// base64 ciphertext payloads; the core never sees plaintext.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/records", h.handleSubmit)
	r.Get("/records/count", h.handleCount)
	r.Get("/records/{recordID}", h.handleGet)
}

type ciphertextPayload struct {
	Tag  uint8  `json:"tag"`
	Data string `json:"data"` // base64
}

func (p ciphertextPayload) decode() (fhe.Ciphertext, error) {
	raw, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return fhe.Ciphertext{}, err
	}
	return fhe.Ciphertext{Tag: fhe.TypeTag(p.Tag), Data: raw}, nil
}

func encodePayload(ct fhe.Ciphertext) ciphertextPayload {
	return ciphertextPayload{Tag: uint8(ct.Tag), Data: base64.StdEncoding.EncodeToString(ct.Data)}
}

type submitRequest struct {
	Patient   ciphertextPayload `json:"patient"`
	Diagnosis ciphertextPayload `json:"diagnosis"`
	Treatment ciphertextPayload `json:"treatment"`
	Outcome   ciphertextPayload `json:"outcome"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submitter := requestcontext.ActorID(ctx)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	fields := ledger.Fields{}
	for _, col := range []struct {
		payload ciphertextPayload
		dst     *fhe.Ciphertext
	}{
		{req.Patient, &fields.Patient},
		{req.Diagnosis, &fields.Diagnosis},
		{req.Treatment, &fields.Treatment},
		{req.Outcome, &fields.Outcome},
	} {
		ct, err := col.payload.decode()
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "ciphertext payload is not valid base64"))
			return
		}
		*col.dst = ct
	}

	recordID, err := h.service.SubmitRecord(ctx, submitter, fields)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to submit record",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"record_id": int64(recordID),
	})
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.RecordCount(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "recordID")
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || !id.RecordID(parsed).IsValid() {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "record id must be a positive integer"))
		return
	}

	record, err := h.service.Record(r.Context(), id.RecordID(parsed))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"record_id":  int64(record.ID),
		"patient":    encodePayload(record.Fields.Patient),
		"diagnosis":  encodePayload(record.Fields.Diagnosis),
		"treatment":  encodePayload(record.Fields.Treatment),
		"outcome":    encodePayload(record.Fields.Outcome),
		"created_at": record.CreatedAt,
		"submitter":  record.Submitter.String(),
	})
}

package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"medcommons/internal/registry"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/testutil"
)

func newTestRouter() *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := registry.NewService(registry.NewInMemoryStore())
	r := chi.NewRouter()
	New(service, logger).Register(r)
	return r
}

func TestRegisterParticipant(t *testing.T) {
	router := newTestRouter()
	actor := id.ActorID(uuid.New())

	req := testutil.AsActor(testutil.NewJSONRequest(t, http.MethodPost, "/participants/register",
		map[string]string{"role": "patient"}), actor)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertJSONContains(t, rr, "role", "patient")
	testutil.AssertJSONContains(t, rr, "actor", actor.String())
}

func TestRegisterTwiceConflicts(t *testing.T) {
	router := newTestRouter()
	actor := id.ActorID(uuid.New())

	first := testutil.AsActor(testutil.NewJSONRequest(t, http.MethodPost, "/participants/register",
		map[string]string{"role": "hospital"}), actor)
	testutil.AssertStatus(t, testutil.DoRequest(router, first), http.StatusCreated)

	second := testutil.AsActor(testutil.NewJSONRequest(t, http.MethodPost, "/participants/register",
		map[string]string{"role": "researcher"}), actor)
	rr := testutil.DoRequest(router, second)

	testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeAlreadyRegistered))

	// The original role survives the rejected attempt.
	me := testutil.AsActor(testutil.NewRequest(t, http.MethodGet, "/participants/me"), actor)
	rr = testutil.DoRequest(router, me)
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "role", "hospital")
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	router := newTestRouter()

	req := testutil.AsActor(testutil.NewJSONRequest(t, http.MethodPost, "/participants/register",
		map[string]string{"role": "auditor"}), id.ActorID(uuid.New()))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestMeForUnregisteredActor(t *testing.T) {
	router := newTestRouter()

	req := testutil.AsActor(testutil.NewRequest(t, http.MethodGet, "/participants/me"), id.ActorID(uuid.New()))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "role", "unset")
	assert.NotEmpty(t, rr.Body)
}

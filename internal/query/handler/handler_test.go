package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"medcommons/contracts/fhe"
	"medcommons/internal/query/handler/mocks"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/query-mocks.go -package=mocks Service
type QueryHandlerSuite struct {
	suite.Suite
	requester id.ActorID
}

func (s *QueryHandlerSuite) SetupSuite() {
	s.requester = id.ActorID(uuid.New())
}

func TestQueryHandlerSuite(t *testing.T) {
	suite.Run(t, new(QueryHandlerSuite))
}

func newTestHandler(t *testing.T) (*chi.Mux, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(mockService, logger)
	r := chi.NewRouter()
	handler.Register(r)
	handler.RegisterCallbacks(r)
	return r, mockService
}

func (s *QueryHandlerSuite) asRequester(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), s.requester))
}

func (s *QueryHandlerSuite) TestSubmitQuery() {
	router, mockService := newTestHandler(s.T())

	ciphertext := fhe.Ciphertext{Tag: fhe.TagUint64, Data: []byte{1, 2, 3}}
	mockService.EXPECT().
		SubmitQuery(gomock.Any(), s.requester, ciphertext).
		Return(nil)

	body, err := json.Marshal(map[string]any{
		"tag":  uint8(ciphertext.Tag),
		"data": base64.StdEncoding.EncodeToString(ciphertext.Data),
	})
	require.NoError(s.T(), err)

	req := s.asRequester(httptest.NewRequest(http.MethodPost, "/queries", bytes.NewReader(body)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusAccepted, w.Code)
}

func (s *QueryHandlerSuite) TestSubmitQueryRejectsBadBase64() {
	router, _ := newTestHandler(s.T())

	req := s.asRequester(httptest.NewRequest(http.MethodPost, "/queries",
		bytes.NewReader([]byte(`{"tag":5,"data":"not-base64!!"}`))))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *QueryHandlerSuite) TestRequestComputation() {
	router, mockService := newTestHandler(s.T())

	mockService.EXPECT().
		RequestComputation(gomock.Any(), s.requester).
		Return("req-123", nil)

	req := s.asRequester(httptest.NewRequest(http.MethodPost, "/queries/computation", nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusAccepted, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "req-123", resp["fhe_request_id"])
}

func (s *QueryHandlerSuite) TestRequestComputationNotApproved() {
	router, mockService := newTestHandler(s.T())

	mockService.EXPECT().
		RequestComputation(gomock.Any(), s.requester).
		Return("", dErrors.New(dErrors.CodeNotApproved, "no executed governance approval for requester"))

	req := s.asRequester(httptest.NewRequest(http.MethodPost, "/queries/computation", nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), string(dErrors.CodeNotApproved), resp["error"])
}

func (s *QueryHandlerSuite) TestResult() {
	router, mockService := newTestHandler(s.T())

	mockService.EXPECT().
		Result(gomock.Any(), s.requester).
		Return(fhe.Ciphertext{Tag: fhe.TagUint64, Data: []byte{9, 9}}, nil)

	req := s.asRequester(httptest.NewRequest(http.MethodGet, "/queries/result", nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), base64.StdEncoding.EncodeToString([]byte{9, 9}), resp["data"])
}

func (s *QueryHandlerSuite) TestComputationCallback() {
	router, mockService := newTestHandler(s.T())

	result := []byte{5, 42}
	proof := bytes.Repeat([]byte{7}, 64)
	mockService.EXPECT().
		OnComputationResult(gomock.Any(), "req-123", result, proof).
		Return(nil)

	body, err := json.Marshal(fhe.ComputationResult{RequestID: "req-123", Result: result, Proof: proof})
	require.NoError(s.T(), err)

	// Callbacks carry no bearer token.
	req := httptest.NewRequest(http.MethodPost, "/fhe/callbacks/computation", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusNoContent, w.Code)
}

func (s *QueryHandlerSuite) TestComputationCallbackUnknownRequest() {
	router, mockService := newTestHandler(s.T())

	mockService.EXPECT().
		OnComputationResult(gomock.Any(), "ghost", gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeUnknownRequest, "no pending request for this id"))

	body, err := json.Marshal(fhe.ComputationResult{RequestID: "ghost", Result: []byte{1}, Proof: []byte{2}})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/fhe/callbacks/computation", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *QueryHandlerSuite) TestDecryptionCallback() {
	router, mockService := newTestHandler(s.T())

	cleartext := []byte("aggregate: 1729")
	proof := bytes.Repeat([]byte{7}, 64)
	mockService.EXPECT().
		OnDecryptionResult(gomock.Any(), "req-456", cleartext, proof).
		Return(nil)

	body, err := json.Marshal(fhe.DecryptionResult{RequestID: "req-456", Cleartext: cleartext, Proof: proof})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/fhe/callbacks/decryption", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusNoContent, w.Code)
}

func (s *QueryHandlerSuite) TestDecryptedResult() {
	router, mockService := newTestHandler(s.T())

	mockService.EXPECT().
		DecryptedResult(gomock.Any(), s.requester).
		Return([]byte("aggregate: 1729"), nil)

	req := s.asRequester(httptest.NewRequest(http.MethodGet, "/queries/decrypted", nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), base64.StdEncoding.EncodeToString([]byte("aggregate: 1729")), resp["cleartext"])
}

package compute

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcommons/contracts/fhe"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/platform/circuit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestComputationPostsBatch(t *testing.T) {
	var got fhe.ComputationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/compute", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := New(server.URL, "https://medcommons.example", WithLogger(testLogger()))

	batch := []fhe.Ciphertext{
		{Tag: fhe.TagUint64, Data: []byte{1}},
		{Tag: fhe.TagUint32, Data: []byte{2}},
	}
	require.NoError(t, client.RequestComputation(context.Background(), "req-1", batch))

	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, batch, got.Batch)
	assert.Equal(t, "https://medcommons.example/fhe/callbacks/computation", got.CallbackURL)
}

func TestRequestDecryptionPostsCiphertext(t *testing.T) {
	var got fhe.DecryptionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/decrypt", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := New(server.URL, "https://medcommons.example/", WithLogger(testLogger()))

	ct := fhe.Ciphertext{Tag: fhe.TagUint64, Data: []byte{7}}
	require.NoError(t, client.RequestDecryption(context.Background(), "req-2", ct))

	assert.Equal(t, "req-2", got.RequestID)
	require.Len(t, got.Ciphertexts, 1)
	assert.Equal(t, ct, got.Ciphertexts[0])
	assert.Equal(t, "https://medcommons.example/fhe/callbacks/decryption", got.CallbackURL)
}

func TestGatewayErrorsTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	breaker := circuit.New("fhe-gateway", circuit.WithFailureThreshold(2))
	client := New(server.URL, "https://medcommons.example",
		WithLogger(testLogger()), WithBreaker(breaker))

	ct := fhe.Ciphertext{Tag: fhe.TagUint64, Data: []byte{1}}
	for i := 0; i < 2; i++ {
		err := client.RequestDecryption(context.Background(), "req", ct)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	}
	require.True(t, breaker.IsOpen())

	// Once open, requests fail fast without reaching the gateway.
	err := client.RequestDecryption(context.Background(), "req", ct)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestGatewayRecoversAfterCooldown(t *testing.T) {
	var calls atomic.Int64
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	breaker := circuit.New("fhe-gateway",
		circuit.WithFailureThreshold(2), circuit.WithCooldown(10*time.Millisecond))
	client := New(server.URL, "https://medcommons.example",
		WithLogger(testLogger()), WithBreaker(breaker))

	ct := fhe.Ciphertext{Tag: fhe.TagUint64, Data: []byte{1}}
	for i := 0; i < 2; i++ {
		require.Error(t, client.RequestDecryption(context.Background(), "req", ct))
	}
	require.True(t, breaker.IsOpen())
	require.Error(t, client.RequestDecryption(context.Background(), "req", ct))
	assert.EqualValues(t, 2, calls.Load(), "open breaker must not reach the gateway")

	// The gateway heals; once the cooldown elapses a probe call goes
	// through and closes the breaker again.
	healthy.Store(true)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, client.RequestDecryption(context.Background(), "req", ct))
	assert.False(t, breaker.IsOpen())
	assert.EqualValues(t, 3, calls.Load())

	require.NoError(t, client.RequestDecryption(context.Background(), "req", ct))
	assert.EqualValues(t, 4, calls.Load())
}

// Package compute is the HTTP adapter for the external FHE gateway. It
// implements the coordinator's ComputationService and DecryptionService
// ports and trips a circuit breaker when the gateway misbehaves.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"medcommons/contracts/fhe"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/platform/circuit"
)

const (
	computePath = "/compute"
	decryptPath = "/decrypt"

	computationCallbackPath = "/fhe/callbacks/computation"
	decryptionCallbackPath  = "/fhe/callbacks/decryption"
)

type Client struct {
	httpClient  *http.Client
	gatewayURL  string
	callbackURL string
	breaker     *circuit.Breaker
	logger      *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) { cl.logger = logger }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) { cl.breaker = b }
}

// New creates a gateway client. callbackBaseURL is this service's externally
// reachable address; the gateway posts results back under it.
func New(gatewayURL, callbackBaseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		gatewayURL:  strings.TrimRight(gatewayURL, "/"),
		callbackURL: strings.TrimRight(callbackBaseURL, "/"),
		breaker:     circuit.New("fhe-gateway"),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) RequestComputation(ctx context.Context, requestID string, batch []fhe.Ciphertext) error {
	return c.post(ctx, computePath, fhe.ComputationRequest{
		RequestID:   requestID,
		Batch:       batch,
		CallbackURL: c.callbackURL + computationCallbackPath,
	})
}

func (c *Client) RequestDecryption(ctx context.Context, requestID string, ciphertext fhe.Ciphertext) error {
	return c.post(ctx, decryptPath, fhe.DecryptionRequest{
		RequestID:   requestID,
		Ciphertexts: []fhe.Ciphertext{ciphertext},
		CallbackURL: c.callbackURL + decryptionCallbackPath,
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	if !c.breaker.Allow() {
		return dErrors.New(dErrors.CodeUnavailable, "computation gateway is unavailable")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode gateway request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+path, bytes.NewReader(body))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build gateway request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(ctx, path, err)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "computation gateway request failed")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("gateway returned %d", resp.StatusCode)
		c.recordFailure(ctx, path, err)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "computation gateway rejected request")
	}

	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "gateway circuit closed", "breaker", c.breaker.Name())
	}
	return nil
}

func (c *Client) recordFailure(ctx context.Context, path string, err error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.ErrorContext(ctx, "gateway circuit opened",
			"breaker", c.breaker.Name(),
			"path", path,
			"error", err.Error(),
		)
	}
}

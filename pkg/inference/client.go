package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
)

const (
	defaultTimeout              = 30 * time.Second
	responseBodyReadLimit int64 = 1024
)

var errBaseURLRequired = errors.New("inference base url is required")

// Client talks to the embedding model server over its TF-Serving style REST API.
// The model itself is opaque: a preprocessed image tensor goes in, a fixed-length
// embedding vector comes out.
type Client struct {
	httpClient *http.Client
	baseURL    string
	modelName  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the embedding model client from configuration.
func NewClient(cfg config.InferenceConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		modelName:  strings.TrimSpace(cfg.ModelName),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Infer runs the model over one preprocessed image tensor (shape [1][H][W][3])
// and returns its embedding vector. Safe for concurrent use.
func (c *Client) Infer(ctx context.Context, tensor [][][][]float32) ([]float32, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inference client not configured")
	}
	if len(tensor) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tensor is empty")
	}

	payload, err := json.Marshal(map[string]any{"instances": tensor})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal predict request")
	}

	url := fmt.Sprintf("%s/v1/models/%s:predict", c.baseURL, c.modelName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build predict request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute predict request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "predict request failed")
	}

	var apiResp struct {
		Predictions [][]float32 `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode predict response")
	}
	if len(apiResp.Predictions) == 0 || len(apiResp.Predictions[0]) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "model returned no embedding")
	}

	return apiResp.Predictions[0], nil
}

// Ping checks that the model is loaded and serving. Used by the readiness probe:
// a model that never loaded is an infrastructure problem, not a per-request one.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "inference client not configured")
	}

	url := fmt.Sprintf("%s/v1/models/%s", c.baseURL, c.modelName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build model status request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute model status request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("model not ready: status %d", resp.StatusCode))
	}
	return nil
}

// Package sentiment implements the text-classification client behind the
// sentiment microservice. Inference is delegated to a hosted
// text-classification endpoint; the service never loads a model itself.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// MaxBatchSize caps one batch-analyze request.
const MaxBatchSize = 100

// ErrBatchTooLarge rejects batches over MaxBatchSize.
var ErrBatchTooLarge = fmt.Errorf("maximum %d texts allowed per batch", MaxBatchSize)

// Result is the winning label for one input text.
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Config struct {
	Endpoint    string
	Model       string
	APIToken    string
	HTTPTimeout time.Duration
}

// Client calls a Hugging Face style text-classification inference API.
type Client struct {
	endpoint string
	model    string
	token    string
	client   *http.Client
	warmed   atomic.Bool
}

func NewClient(cfg Config) *Client {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	endpoint := strings.TrimSuffix(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = "https://api-inference.huggingface.co"
	}

	return &Client{
		endpoint: endpoint,
		model:    cfg.Model,
		token:    cfg.APIToken,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) ModelName() string {
	return c.model
}

// Ready reports whether at least one classification round-trip has
// succeeded since startup.
func (c *Client) Ready() bool {
	return c.warmed.Load()
}

// Warmup primes the remote model so the first real request does not pay the
// cold-start cost. Failure is not fatal; the service stays up and retries
// implicitly on the next request.
func (c *Client) Warmup(ctx context.Context) error {
	_, err := c.Analyze(ctx, "warmup")
	return err
}

// Analyze classifies a single text.
func (c *Client) Analyze(ctx context.Context, text string) (Result, error) {
	results, err := c.classify(ctx, []string{text})
	if err != nil {
		return Result{}, err
	}

	return results[0], nil
}

// AnalyzeBatch classifies up to MaxBatchSize texts in one call, preserving
// input order in the results.
func (c *Client) AnalyzeBatch(ctx context.Context, texts []string) ([]Result, error) {
	if len(texts) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	if len(texts) == 0 {
		return []Result{}, nil
	}

	return c.classify(ctx, texts)
}

func (c *Client) classify(ctx context.Context, texts []string) ([]Result, error) {
	endpointURL := c.endpoint + "/models/" + c.model

	body, err := json.Marshal(map[string]any{"inputs": texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(httpResp.Body)

		if len(bodyBytes) > 0 {
			return nil, fmt.Errorf("classifier error: %s: %s", httpResp.Status, strings.TrimSpace(string(bodyBytes)))
		}

		return nil, fmt.Errorf("classifier error: %s", httpResp.Status)
	}

	// The API returns one list of label candidates per input text.
	var payload [][]Result
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(payload) != len(texts) {
		return nil, errors.New("classifier returned wrong number of results")
	}

	results := make([]Result, 0, len(payload))
	for _, candidates := range payload {
		if len(candidates) == 0 {
			return nil, errors.New("classifier returned empty candidate list")
		}

		best := candidates[0]
		for _, candidate := range candidates[1:] {
			if candidate.Score > best.Score {
				best = candidate
			}
		}

		results = append(results, best)
	}

	c.warmed.Store(true)

	return results, nil
}

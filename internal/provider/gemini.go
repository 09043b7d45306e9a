// Package provider implements clients for the external inference APIs the
// services delegate to.
package provider

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

	"github.com/perodin/parley/internal/core"
)

// Generator produces one assistant reply for an ordered transcript. The call
// is the single suspension point in a chat turn; its timeout is fixed at
// construction time.
type Generator interface {
	Generate(ctx context.Context, messages []core.Message) (string, error)
	ModelName() string
}

type GeminiConfig struct {
	Endpoint    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	HTTPTimeout time.Duration
}

// GeminiProvider calls the Gemini generateContent REST API. Sampling
// parameters are fixed at construction and shared by every turn.
type GeminiProvider struct {
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	maxTokens   int
	client      *http.Client
}

func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	endpoint := strings.TrimSuffix(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = "https://generativelanguage.googleapis.com"
	}

	return &GeminiProvider{
		endpoint:    endpoint,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: timeout},
	}
}

func (p *GeminiProvider) ModelName() string {
	return p.model
}

func (p *GeminiProvider) Generate(ctx context.Context, messages []core.Message) (string, error) {
	endpointURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.endpoint, p.model)

	contents := make([]map[string]any, 0, len(messages))
	var systemText string

	for _, message := range messages {
		switch message.Role {
		case core.RoleSystem:
			// Gemini takes the directive out of band, not as a turn.
			systemText = message.Content
		case core.RoleAssistant:
			contents = append(contents, map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": message.Content}},
			})
		default:
			contents = append(contents, map[string]any{
				"role":  "user",
				"parts": []map[string]any{{"text": message.Content}},
			})
		}
	}

	payload := map[string]any{
		"contents": contents,
		"generationConfig": map[string]any{
			"temperature":     p.temperature,
			"maxOutputTokens": p.maxTokens,
		},
	}

	if systemText != "" {
		payload["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": systemText}},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("x-goog-api-key", p.apiKey)

	httpResp, err := p.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(httpResp.Body)

		if len(bodyBytes) > 0 {
			return "", fmt.Errorf("model error: %s: %s", httpResp.Status, strings.TrimSpace(string(bodyBytes)))
		}

		return "", fmt.Errorf("model error: %s", httpResp.Status)
	}

	var responsePayload map[string]any
	if err := json.NewDecoder(httpResp.Body).Decode(&responsePayload); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return parseReply(responsePayload)
}

func parseReply(payload map[string]any) (string, error) {
	candidates, ok := payload["candidates"].([]any)
	if !ok || len(candidates) == 0 {
		return "", errors.New("no candidates in response")
	}

	candidate, ok := candidates[0].(map[string]any)
	if !ok {
		return "", errors.New("malformed candidate in response")
	}

	content, ok := candidate["content"].(map[string]any)
	if !ok {
		return "", errors.New("malformed content in response")
	}

	parts, ok := content["parts"].([]any)
	if !ok || len(parts) == 0 {
		return "", errors.New("no parts in response")
	}

	var reply strings.Builder
	for _, rawPart := range parts {
		part, ok := rawPart.(map[string]any)
		if !ok {
			continue
		}

		if text, ok := part["text"].(string); ok {
			reply.WriteString(text)
		}
	}

	if reply.Len() == 0 {
		return "", errors.New("empty reply in response")
	}

	return reply.String(), nil
}

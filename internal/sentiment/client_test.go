package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func classifierResponse(labels ...[]Result) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(labels)
	}
}

func TestAnalyze(t *testing.T) {
	var capturedPath, capturedAuth string
	var capturedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&capturedBody)

		classifierResponse([]Result{
			{Label: "NEGATIVE", Score: 0.01},
			{Label: "POSITIVE", Score: 0.99},
		})(w, r)
	}))
	defer server.Close()

	client := NewClient(Config{
		Endpoint: server.URL,
		Model:    "distilbert-base-uncased-finetuned-sst-2-english",
		APIToken: "hf-token",
	})

	result, err := client.Analyze(context.Background(), "I love this")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Label != "POSITIVE" {
		t.Errorf("Label = %q, want POSITIVE (best score wins)", result.Label)
	}
	if result.Score != 0.99 {
		t.Errorf("Score = %f, want 0.99", result.Score)
	}
	if capturedPath != "/models/distilbert-base-uncased-finetuned-sst-2-english" {
		t.Errorf("path = %q", capturedPath)
	}
	if capturedAuth != "Bearer hf-token" {
		t.Errorf("auth header = %q", capturedAuth)
	}

	inputs, _ := capturedBody["inputs"].([]any)
	if len(inputs) != 1 || inputs[0] != "I love this" {
		t.Errorf("inputs = %v", capturedBody["inputs"])
	}

	if !client.Ready() {
		t.Error("client not marked ready after successful round trip")
	}
}

func TestAnalyzeBatchPreservesOrder(t *testing.T) {
	server := httptest.NewServer(classifierResponse(
		[]Result{{Label: "POSITIVE", Score: 0.9}},
		[]Result{{Label: "NEGATIVE", Score: 0.8}},
	))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Model: "m"})

	results, err := client.AnalyzeBatch(context.Background(), []string{"good", "bad"})
	if err != nil {
		t.Fatalf("AnalyzeBatch failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("results length = %d, want 2", len(results))
	}
	if results[0].Label != "POSITIVE" || results[1].Label != "NEGATIVE" {
		t.Errorf("results out of order: %+v", results)
	}
}

func TestAnalyzeBatchCap(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://unused", Model: "m"})

	texts := make([]string, MaxBatchSize+1)
	for i := range texts {
		texts[i] = "text"
	}

	_, err := client.AnalyzeBatch(context.Background(), texts)
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("error = %v, want ErrBatchTooLarge", err)
	}
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://unused", Model: "m"})

	results, err := client.AnalyzeBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("AnalyzeBatch failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
}

func TestAnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "model loading"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Model: "m"})

	if _, err := client.Analyze(context.Background(), "text"); err == nil {
		t.Fatal("expected error for 503 response")
	}
	if client.Ready() {
		t.Error("client marked ready after failure")
	}
}

func TestAnalyzeResultCountMismatch(t *testing.T) {
	server := httptest.NewServer(classifierResponse(
		[]Result{{Label: "POSITIVE", Score: 0.9}},
		[]Result{{Label: "NEGATIVE", Score: 0.8}},
	))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Model: "m"})

	if _, err := client.Analyze(context.Background(), "just one"); err == nil {
		t.Fatal("expected error for mismatched result count")
	}
}

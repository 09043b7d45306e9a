// Package chat implements the conversation orchestrator behind POST /chat:
// it resolves the conversation id, builds the transcript for the turn,
// drives the workflow graph, and records usage metrics on success.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/perodin/parley/internal/conversation"
	"github.com/perodin/parley/internal/core"
	"github.com/perodin/parley/internal/metrics"
	"github.com/perodin/parley/internal/provider"
	"github.com/perodin/parley/internal/workflow"
)

// Request is one incoming chat turn. History is the caller-owned prior
// transcript; the service holds no conversation state between requests.
type Request struct {
	Message        string
	ConversationID string
	History        []core.Message
}

// Result is the response envelope for a successful turn.
type Result struct {
	Reply          string
	ConversationID string
	CompletedAt    time.Time
	ElapsedSeconds float64
}

// Service orchestrates chat turns. It holds no per-call mutable state, so
// concurrent calls are isolated except for the shared metrics aggregator.
type Service struct {
	generator provider.Generator
	graph     *workflow.Graph
	metrics   *metrics.Aggregator
	directive string
	log       zerolog.Logger
}

// NewService wires the orchestrator. A nil generator is a valid, declared
// state: the service starts, but HandleChat reports ErrUnavailable until an
// operator configures the model credential and restarts.
func NewService(generator provider.Generator, aggregator *metrics.Aggregator, directive string, log zerolog.Logger) *Service {
	service := &Service{
		generator: generator,
		metrics:   aggregator,
		directive: directive,
		log:       log.With().Str("component", "chat").Logger(),
	}

	if generator != nil {
		service.graph = workflow.New(workflow.GenerateStage(generator))
	}

	return service
}

// ModelLoaded reports whether a generator is configured.
func (s *Service) ModelLoaded() bool {
	return s.generator != nil
}

// GraphReady reports whether the turn workflow is compiled and runnable.
func (s *Service) GraphReady() bool {
	return s.graph.Ready()
}

// ModelName returns the configured model identifier, or "" when unconfigured.
func (s *Service) ModelName() string {
	if s.generator == nil {
		return ""
	}

	return s.generator.ModelName()
}

// HandleChat executes one turn. Metrics are updated exactly once per
// successful call and never on failure.
func (s *Service) HandleChat(ctx context.Context, req Request) (Result, error) {
	if !s.ModelLoaded() || !s.GraphReady() {
		return Result{}, ErrUnavailable
	}

	if strings.TrimSpace(req.Message) == "" {
		return Result{}, ErrEmptyMessage
	}

	start := time.Now()

	conversationID := req.ConversationID
	newConversation := conversationID == ""
	if newConversation {
		conversationID = string(core.NewConversationID())
	}

	// The directive belongs to the first turn only; later turns arrive with
	// the full prior history and must not see it injected twice.
	firstTurn := len(req.History) == 0
	transcript := conversation.BuildTranscript(req.History, req.Message, s.directive, firstTurn)

	updated, err := s.graph.Run(ctx, transcript)
	if err != nil {
		s.log.Error().
			Err(err).
			Str("conversation_id", conversationID).
			Int("history_messages", len(req.History)).
			Int("input_length", len(req.Message)).
			Dur("elapsed", time.Since(start)).
			Msg("chat turn failed")

		return Result{}, &ProcessingError{ConversationID: conversationID, Cause: err}
	}

	reply := updated[len(updated)-1].Content
	elapsed := time.Since(start)

	s.metrics.RecordTurn(elapsed.Seconds(), newConversation)

	s.log.Debug().
		Str("conversation_id", conversationID).
		Int("history_messages", len(req.History)).
		Dur("elapsed", elapsed).
		Msg("chat turn completed")

	return Result{
		Reply:          reply,
		ConversationID: conversationID,
		CompletedAt:    time.Now().UTC(),
		ElapsedSeconds: elapsed.Seconds(),
	}, nil
}

// Package workflow runs a chat turn as a small ordered graph of stages.
// Today the graph has a single generation stage; keeping the graph shape
// means a moderation or tool-call stage can be inserted later without
// changing the Run contract.
package workflow

import (
	"context"
	"errors"

	"github.com/perodin/parley/internal/core"
	"github.com/perodin/parley/internal/provider"
)

// Stage transforms a transcript. A stage either returns the updated
// transcript or an error that terminates the run.
type Stage struct {
	Name string
	Run  func(ctx context.Context, transcript []core.Message) ([]core.Message, error)
}

// Graph executes its stages in order over a transcript. It performs no
// retries and enforces no timeout of its own; cancellation and deadlines
// travel in the context.
type Graph struct {
	stages []Stage
}

func New(stages ...Stage) *Graph {
	return &Graph{stages: stages}
}

// Ready reports whether the graph has at least one stage to run.
func (g *Graph) Ready() bool {
	return g != nil && len(g.stages) > 0
}

// Run executes one turn. The input transcript must not be empty: it carries
// at least the new user message. Stage errors propagate unmodified.
func (g *Graph) Run(ctx context.Context, transcript []core.Message) ([]core.Message, error) {
	if !g.Ready() {
		return nil, errors.New("workflow has no stages")
	}

	if len(transcript) == 0 {
		return nil, errors.New("transcript is empty")
	}

	var err error
	for _, stage := range g.stages {
		transcript, err = stage.Run(ctx, transcript)
		if err != nil {
			return nil, err
		}
	}

	return transcript, nil
}

// GenerateStage invokes the generator once and appends its reply as the
// final assistant message.
func GenerateStage(generator provider.Generator) Stage {
	return Stage{
		Name: "generate",
		Run: func(ctx context.Context, transcript []core.Message) ([]core.Message, error) {
			reply, err := generator.Generate(ctx, transcript)
			if err != nil {
				return nil, err
			}

			return append(transcript, core.Message{Role: core.RoleAssistant, Content: reply}), nil
		},
	}
}

package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/perodin/parley/internal/core"
)

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) Generate(_ context.Context, _ []core.Message) (string, error) {
	return s.reply, s.err
}

func (s *stubGenerator) ModelName() string {
	return "stub-model"
}

func TestRunAppendsReply(t *testing.T) {
	graph := New(GenerateStage(&stubGenerator{reply: "hi there"}))

	transcript := []core.Message{
		{Role: core.RoleUser, Content: "hello"},
	}

	updated, err := graph.Run(context.Background(), transcript)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(updated) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(updated))
	}

	last := updated[len(updated)-1]
	if last.Role != core.RoleAssistant || last.Content != "hi there" {
		t.Errorf("last message = %s %q, want assistant %q", last.Role, last.Content, "hi there")
	}
}

func TestRunPropagatesErrorUnmodified(t *testing.T) {
	wantErr := errors.New("model exploded")
	graph := New(GenerateStage(&stubGenerator{err: wantErr}))

	_, err := graph.Run(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: "hello"},
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v unmodified", err, wantErr)
	}
}

func TestRunEmptyTranscript(t *testing.T) {
	graph := New(GenerateStage(&stubGenerator{reply: "hi"}))

	if _, err := graph.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty transcript")
	}
}

func TestRunMultipleStages(t *testing.T) {
	tag := func(name string) Stage {
		return Stage{
			Name: name,
			Run: func(_ context.Context, transcript []core.Message) ([]core.Message, error) {
				return append(transcript, core.Message{Role: core.RoleAssistant, Content: name}), nil
			},
		}
	}

	graph := New(tag("first"), tag("second"))

	updated, err := graph.Run(context.Background(), []core.Message{
		{Role: core.RoleUser, Content: "go"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(updated) != 3 {
		t.Fatalf("transcript length = %d, want 3", len(updated))
	}
	if updated[1].Content != "first" || updated[2].Content != "second" {
		t.Error("stages did not run in order")
	}
}

func TestReady(t *testing.T) {
	var nilGraph *Graph
	if nilGraph.Ready() {
		t.Error("nil graph reported ready")
	}

	if New().Ready() {
		t.Error("empty graph reported ready")
	}

	if !New(GenerateStage(&stubGenerator{})).Ready() {
		t.Error("single-stage graph reported not ready")
	}
}

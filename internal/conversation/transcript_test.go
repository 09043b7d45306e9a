package conversation

import (
	"testing"

	"github.com/perodin/parley/internal/core"
)

func TestBuildTranscript(t *testing.T) {
	tests := []struct {
		name            string
		history         []core.Message
		userText        string
		directive       string
		injectDirective bool
		want            []core.Message
	}{
		{
			name:            "first turn with directive",
			history:         nil,
			userText:        "hello",
			directive:       "be nice",
			injectDirective: true,
			want: []core.Message{
				{Role: core.RoleSystem, Content: "be nice"},
				{Role: core.RoleUser, Content: "hello"},
			},
		},
		{
			name: "later turn does not re-inject directive",
			history: []core.Message{
				{Role: core.RoleUser, Content: "hi"},
				{Role: core.RoleAssistant, Content: "hey"},
			},
			userText:        "more",
			directive:       "be nice",
			injectDirective: false,
			want: []core.Message{
				{Role: core.RoleUser, Content: "hi"},
				{Role: core.RoleAssistant, Content: "hey"},
				{Role: core.RoleUser, Content: "more"},
			},
		},
		{
			name:            "inject flag without directive is a no-op",
			history:         nil,
			userText:        "hello",
			directive:       "",
			injectDirective: true,
			want: []core.Message{
				{Role: core.RoleUser, Content: "hello"},
			},
		},
		{
			name:            "directive present but flag off",
			history:         nil,
			userText:        "hello",
			directive:       "be nice",
			injectDirective: false,
			want: []core.Message{
				{Role: core.RoleUser, Content: "hello"},
			},
		},
		{
			name: "malformed history passes through unchanged",
			history: []core.Message{
				{Role: core.RoleSystem, Content: "first"},
				{Role: core.RoleSystem, Content: "second"},
			},
			userText:        "hello",
			directive:       "",
			injectDirective: false,
			want: []core.Message{
				{Role: core.RoleSystem, Content: "first"},
				{Role: core.RoleSystem, Content: "second"},
				{Role: core.RoleUser, Content: "hello"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildTranscript(tt.history, tt.userText, tt.directive, tt.injectDirective)

			if len(got) != len(tt.want) {
				t.Fatalf("transcript length = %d, want %d", len(got), len(tt.want))
			}

			for i := range got {
				if got[i].Role != tt.want[i].Role || got[i].Content != tt.want[i].Content {
					t.Errorf("message %d = %s %q, want %s %q",
						i, got[i].Role, got[i].Content, tt.want[i].Role, tt.want[i].Content)
				}
			}
		})
	}
}

func TestBuildTranscriptDoesNotMutateHistory(t *testing.T) {
	history := []core.Message{
		{Role: core.RoleUser, Content: "hi"},
	}

	_ = BuildTranscript(history, "more", "be nice", false)

	if len(history) != 1 || history[0].Content != "hi" {
		t.Fatal("caller-owned history was mutated")
	}
}

// Package conversation builds the transcript sent to the language model on
// each turn. History is caller-owned: the full prior transcript arrives with
// every request and the service keeps nothing between turns.
package conversation

import "github.com/perodin/parley/internal/core"

// BuildTranscript assembles the context window for one turn. When
// injectDirective is set and the directive is non-empty, the directive is
// prepended as the sole system message. The new user message is always
// appended last.
//
// History is passed through unchanged; a malformed sequence (say, a stray
// system message mid-conversation) is the caller's to own.
func BuildTranscript(history []core.Message, userText string, directive string, injectDirective bool) []core.Message {
	transcript := make([]core.Message, 0, len(history)+2)

	if injectDirective && directive != "" {
		transcript = append(transcript, core.Message{Role: core.RoleSystem, Content: directive})
	}

	transcript = append(transcript, history...)
	transcript = append(transcript, core.Message{Role: core.RoleUser, Content: userText})

	return transcript
}

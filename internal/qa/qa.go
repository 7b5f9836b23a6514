// Package qa runs the follow-up question loop over a generated document.
package qa

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/yourorg/specgen/internal/generator"
	"github.com/yourorg/specgen/pkg/types"
)

// doneMarker ends the loop when submitted in any letter casing.
const doneMarker = "done"

// AskFunc obtains the next user question. Any returned error ends the loop
// cleanly, the same as an explicit done marker.
type AskFunc func() (string, error)

// Session holds one conversation over a generated document. The history
// starts with a fixed system message and grows by one user and one
// assistant entry per completed turn; it is never trimmed or reordered.
type Session struct {
	client  *generator.Client
	out     io.Writer
	history []types.Message
}

// New seeds a session with the source context and the document the
// generation step produced.
func New(client *generator.Client, contextBlob, document string, out io.Writer) *Session {
	return &Session{
		client: client,
		out:    out,
		history: []types.Message{
			{Role: "system", Content: generator.BuildQAPrompt(contextBlob, document)},
		},
	}
}

// Run asks for questions until ask fails, returns empty input, or returns
// the done marker. Turns are strictly sequential: each request completes
// before the next question is read. A failed turn is reported inline and
// the loop continues, with the unanswered question left in history.
func (s *Session) Run(ask AskFunc) error {
	for {
		question, err := ask()
		if err != nil {
			return nil
		}

		question = strings.TrimSpace(question)
		if question == "" || strings.EqualFold(question, doneMarker) {
			return nil
		}

		s.history = append(s.history, types.Message{Role: "user", Content: question})

		answer, _, err := s.client.Chat(s.history)
		if err != nil {
			fmt.Fprintln(s.out, color.RedString("answer failed: %s", generator.ExplainError(err)))
			continue
		}

		s.history = append(s.history, types.Message{Role: "assistant", Content: answer})
		fmt.Fprintf(s.out, "\n%s\n\n", answer)
	}
}

// History returns the conversation accumulated so far.
func (s *Session) History() []types.Message {
	return s.history
}

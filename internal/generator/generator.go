package generator

import (
	"errors"
	"fmt"
	"os"

	"github.com/yourorg/specgen/pkg/types"
)

// ProgressFunc reports generation progress.
type ProgressFunc func(stage string)

// Request carries the resolved inputs of one generation run. BaseURL is the
// server URL recorded in the document, not the completion endpoint.
type Request struct {
	BaseURL    string
	Context    string
	OutputPath string
}

// Result is what a completed run produced.
type Result struct {
	Document string
	Usage    types.Usage
	Cost     float64
}

// Generate issues the single completion request, strips any code-fence
// wrapping from the response, and writes the document verbatim to
// req.OutputPath, overwriting an existing file. There is no retry: the one
// request either completes or the run fails.
func Generate(client *Client, req Request, onProgress ProgressFunc) (*Result, error) {
	if client == nil {
		return nil, errors.New("client is nil")
	}
	if req.Context == "" {
		return nil, errors.New("empty context")
	}

	report(onProgress, "calling model")
	messages := []types.Message{
		{Role: "system", Content: BuildSystemPrompt()},
		{Role: "user", Content: BuildUserPrompt(req.BaseURL, req.Context)},
	}
	content, usage, err := client.Chat(messages)
	if err != nil {
		return nil, err
	}

	report(onProgress, "writing document")
	doc := stripCodeFence(content)
	if err := os.WriteFile(req.OutputPath, []byte(doc), 0o644); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	return &Result{Document: doc, Usage: usage, Cost: EstimateCost(client.Model, usage)}, nil
}

func report(fn ProgressFunc, msg string) {
	if fn != nil {
		fn(msg)
	}
}

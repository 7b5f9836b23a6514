package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/specgen/pkg/types"
)

// Client is an OpenAI-compatible chat completions client. Requests are
// issued exactly once: failures surface immediately and retrying is left to
// the user. No timeout is imposed beyond the transport's own behavior.
type Client struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Chat sends the full ordered message list and returns the first choice's
// content along with the reported token usage.
func (c *Client) Chat(messages []types.Message) (string, types.Usage, error) {
	var usage types.Usage

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	endpoint := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	payload := map[string]interface{}{
		"model":       c.Model,
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
		"messages":    messages,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", usage, err
	}
	if c.Logger != nil {
		c.Logger.Debug("llm request", "url", endpoint, "model", c.Model, "messages", len(messages))
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", usage, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", usage, err
	}
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return "", usage, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", usage, fmt.Errorf("llm error status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage types.Usage `json:"usage"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", usage, err
	}
	if len(out.Choices) == 0 {
		return "", usage, errors.New("llm response has no choices")
	}
	content := out.Choices[0].Message.Content
	if c.Logger != nil {
		c.Logger.Debug("llm response", "content", content, "total_tokens", out.Usage.TotalTokens)
	}
	return content, out.Usage, nil
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.Index(trimmed, "\n"); idx != -1 {
			trimmed = trimmed[idx+1:]
		}
		if end := strings.LastIndex(trimmed, "```"); end != -1 {
			trimmed = trimmed[:end]
		}
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}

// ExplainError maps a completion failure onto a short user-facing message.
// Classification is by substring only and never changes control flow.
func ExplainError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "invalid api key"),
		strings.Contains(msg, "invalid_api_key"),
		strings.Contains(msg, "incorrect api key"):
		return "invalid API credential: check --api-key or OPENAI_API_KEY"
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "rate_limit"):
		return "rate limited by the completion endpoint; wait a moment before trying again"
	default:
		return err.Error()
	}
}

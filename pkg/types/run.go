package types

import "time"

// RunRecord is one generation run as kept in the history store.
type RunRecord struct {
	ID               string    `json:"id"`
	Target           string    `json:"target"`
	OutputPath       string    `json:"output_path"`
	BaseURL          string    `json:"base_url"`
	Model            string    `json:"model"`
	FileCount        int       `json:"file_count"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	Cost             float64   `json:"cost"`
	Status           string    `json:"status"`
	ErrorMsg         string    `json:"error_msg,omitempty"`
	Document         string    `json:"document,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

package types

// SourceFile is one collected source file: the path presented to the model
// and the verbatim file content.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Message is one turn in an OpenAI-compatible conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption for one completion request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

package generator

import "testing"

func TestEstimateTokens(t *testing.T) {
	text := "你好hello"
	got := EstimateTokens(text)
	if got != 3 {
		t.Fatalf("expected 3 tokens, got %d", got)
	}
	if EstimateTokens("") != 0 {
		t.Fatalf("expected 0 for empty text")
	}
}

func TestCountTokensPositive(t *testing.T) {
	// Exact counts depend on the encoding data; the count only has to be
	// plausible and non-zero.
	if got := CountTokens("gpt-4o-mini", "def users(): pass"); got <= 0 {
		t.Fatalf("expected positive count, got %d", got)
	}
}

func TestCountTokensUnknownModel(t *testing.T) {
	if got := CountTokens("not-a-real-model", "hello world"); got <= 0 {
		t.Fatalf("expected positive count, got %d", got)
	}
}

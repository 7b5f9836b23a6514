package generator

import (
	"strings"
	"testing"
)

func TestBuildSystemPromptContainsRules(t *testing.T) {
	sys := BuildSystemPrompt()
	if !strings.Contains(sys, "OpenAPI 3.0") {
		t.Fatalf("expected system prompt to pin the document format")
	}
	if !strings.Contains(sys, "ONLY the YAML document body") {
		t.Fatalf("expected system prompt to demand bare YAML output")
	}
}

func TestBuildUserPromptIncludesBaseURLAndContext(t *testing.T) {
	prompt := BuildUserPrompt("http://localhost:3000", "### app.py\n```\nx = 1\n```")
	if !strings.Contains(prompt, "http://localhost:3000") {
		t.Fatalf("expected prompt to include the base URL")
	}
	if !strings.Contains(prompt, "### app.py") {
		t.Fatalf("expected prompt to include the context blob")
	}
}

func TestBuildQAPromptEmbedsMaterial(t *testing.T) {
	prompt := BuildQAPrompt("### app.py\n```\nx = 1\n```", "openapi: 3.0.3")
	if !strings.Contains(prompt, "### app.py") {
		t.Fatalf("expected QA prompt to include the source context")
	}
	if !strings.Contains(prompt, "openapi: 3.0.3") {
		t.Fatalf("expected QA prompt to include the generated document")
	}
}

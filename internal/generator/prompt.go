package generator

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert API engineer. You will receive the source code of a web service, one file per fenced block.

Your task:
1. Identify every HTTP endpoint the code exposes: path, method, parameters, request body and responses.
2. Produce a complete and valid OpenAPI 3.0 document in YAML that describes all of them.
3. Use the server base URL given by the user for the servers section.
4. Infer realistic schemas from the code and give each operation a meaningful summary.

Output rules:
- Return ONLY the YAML document body.
- No surrounding prose and no markdown code fences.`

const qaSystemPrompt = `You are an assistant answering questions about a web service. You have the service's source code and the OpenAPI specification generated from it. Ground every answer in that material and say so when something cannot be determined from it.`

// BuildSystemPrompt returns the static system prompt for one-shot generation.
func BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt combines the server base URL with the assembled source
// context.
func BuildUserPrompt(baseURL, contextBlob string) string {
	return fmt.Sprintf("## Server base URL\n%s\n\n## Source files\n\n%s", baseURL, contextBlob)
}

// BuildQAPrompt seeds a follow-up session with the material the generation
// request used plus the document it produced.
func BuildQAPrompt(contextBlob, document string) string {
	var b strings.Builder
	b.WriteString(qaSystemPrompt)
	b.WriteString("\n\n## Source files\n\n")
	b.WriteString(contextBlob)
	b.WriteString("\n\n## Generated OpenAPI specification\n\n")
	b.WriteString(document)
	return b.String()
}

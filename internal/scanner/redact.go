package scanner

import (
	"regexp"

	"github.com/yourorg/specgen/pkg/types"
)

// Redactor masks values assigned to credential-looking keys in collected
// source text before it is sent anywhere.
type Redactor struct {
	patterns    []*regexp.Regexp
	replacement string
}

// NewRedactor compiles one pattern per key. A key matches assignments of the
// form `key = value`, `key: value` or `"key": "value"` regardless of case;
// keys match as whole words only, and only the value side is replaced.
func NewRedactor(keys []string, replacement string) *Redactor {
	r := &Redactor{replacement: replacement}
	for _, k := range keys {
		if k == "" {
			continue
		}
		p := regexp.MustCompile(`(?i)\b(["']?` + regexp.QuoteMeta(k) + `["']?\s*[:=]\s*["']?)[^"'\s,;}\)]+`)
		r.patterns = append(r.patterns, p)
	}
	return r
}

// Apply returns a copy of files with matched values replaced. Inputs are not
// mutated.
func (r *Redactor) Apply(files []types.SourceFile) []types.SourceFile {
	out := make([]types.SourceFile, len(files))
	for i, f := range files {
		out[i] = f
		out[i].Content = r.redact(f.Content)
	}
	return out
}

func (r *Redactor) redact(content string) string {
	for _, p := range r.patterns {
		content = p.ReplaceAllString(content, "${1}"+r.replacement)
	}
	return content
}

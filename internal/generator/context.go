package generator

import (
	"fmt"
	"strings"

	"github.com/yourorg/specgen/pkg/types"
)

// BuildContext renders collected files into one delimited blob: a header line
// with the relative path, then the content in a fenced block, with a blank
// line between files. The output is a pure function of the input order.
// Fence markers inside file content are passed through unescaped.
func BuildContext(files []types.SourceFile) string {
	blocks := make([]string, 0, len(files))
	for _, f := range files {
		blocks = append(blocks, fmt.Sprintf("### %s\n```\n%s\n```", f.Path, f.Content))
	}
	return strings.Join(blocks, "\n\n")
}

package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/yourorg/specgen/pkg/types"
)

// DefaultMaxFileBytes is the exclusive per-file size cap.
const DefaultMaxFileBytes = 100000

// supportedExtensions lists the source extensions of the backend languages
// the generator can work from.
var supportedExtensions = map[string]struct{}{
	".js":    {},
	".jsx":   {},
	".ts":    {},
	".tsx":   {},
	".mjs":   {},
	".cjs":   {},
	".py":    {},
	".go":    {},
	".rb":    {},
	".php":   {},
	".java":  {},
	".kt":    {},
	".cs":    {},
	".rs":    {},
	".scala": {},
}

// ignoredNames are dependency, build-output and cache directories that are
// never worth scanning. Version-control directories are caught by the hidden
// entry rule.
var ignoredNames = map[string]struct{}{
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	"out":          {},
	"target":       {},
	"__pycache__":  {},
	"venv":         {},
	"coverage":     {},
}

// Options tune directory collection. The zero value applies the default size
// cap with no gitignore handling and no exclude patterns.
type Options struct {
	MaxFileBytes     int64
	RespectGitignore bool
	Exclude          []string
}

// Collect gathers the source files under target. A file target is returned
// verbatim as the sole result: naming a file directly overrides every filter,
// and its path is reduced to the base name. Directory targets are walked
// depth-first in native entry order; the returned paths are slash-separated
// and relative to the target.
func Collect(target string, opts Options) ([]types.SourceFile, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("stat target: %w", err)
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = DefaultMaxFileBytes
	}

	if !info.IsDir() {
		content, err := os.ReadFile(target)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", target, err)
		}
		return []types.SourceFile{{Path: filepath.Base(target), Content: string(content)}}, nil
	}

	matcher := gitignoreMatcher(target, opts.RespectGitignore)

	var files []types.SourceFile
	walkErr := filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == target {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || isIgnoredName(name) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(target, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if matcher != nil && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		if isExcluded(rel, opts.Exclude) {
			return nil
		}
		if _, ok := supportedExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if fi.Size() >= opts.MaxFileBytes {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, types.SourceFile{Path: rel, Content: string(content)})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return files, nil
}

func gitignoreMatcher(root string, enabled bool) *ignore.GitIgnore {
	if !enabled {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

func isIgnoredName(name string) bool {
	_, ok := ignoredNames[name]
	return ok
}

func isExcluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

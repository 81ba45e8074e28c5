package watch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignorer matches paths against .gitignore files and extra patterns.
type ignorer struct {
	base    string
	matcher gitignore.Matcher
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// newIgnorer reads every .gitignore under the repository containing root
// (or under root itself outside a repository) when useGitignore is set.
// Extra patterns use gitignore syntax and always apply.
func newIgnorer(root string, useGitignore bool, extra []string) *ignorer {
	base := root
	if gitRoot := findGitRoot(root); gitRoot != "" {
		base = gitRoot
	}

	var patterns []gitignore.Pattern
	for _, p := range extra {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	if useGitignore {
		if gitPatterns, err := gitignore.ReadPatterns(osfs.New(base), nil); err == nil {
			patterns = append(patterns, gitPatterns...)
		}
	}
	if len(patterns) == 0 {
		return &ignorer{base: base}
	}
	return &ignorer{base: base, matcher: gitignore.NewMatcher(patterns)}
}

// Ignored reports whether the absolute path is excluded.
func (i *ignorer) Ignored(path string, isDir bool) bool {
	if i.matcher == nil {
		return false
	}
	rel, err := filepath.Rel(i.base, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return i.matcher.Match(strings.Split(rel, string(filepath.Separator)), isDir)
}

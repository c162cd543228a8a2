// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"
)

// Matcher decides whether a path is excluded from the recipe bundle.
type Matcher interface {
	// Match reports whether path should be skipped. isDir distinguishes
	// directory patterns (trailing slash in gitignore syntax).
	Match(path string, isDir bool) bool
}

// MatcherFunc adapts a plain function to the Matcher interface.
type MatcherFunc func(path string, isDir bool) bool

// Match calls f.
func (f MatcherFunc) Match(path string, isDir bool) bool {
	return f(path, isDir)
}

// MatchNothing excludes no paths. Used when the project carries no
// ignore file.
var MatchNothing = MatcherFunc(func(string, bool) bool { return false })

// NewGitignoreMatcher builds a Matcher from root/.gitignore. A missing
// or unreadable ignore file matches nothing.
func NewGitignoreMatcher(root string) Matcher {
	matcher, err := gitignore.NewGitIgnore(filepath.Join(root, ".gitignore"), root)
	if err != nil {
		return MatchNothing
	}
	return matcher
}

/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package resolve implements the Module Path Resolver: turning an
// import specifier plus the importing namespace's absolute path into
// either a user module's canonical filesystem path or an opaque
// built-in module id.
package resolve

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agext/levenshtein"
	gitignore "github.com/sabhiram/go-gitignore"

	"jsrepl.dev/engine/internal/platform"
)

// Kind distinguishes a resolution that landed on a real file from one
// that fell through to the host's own module loader.
type Kind int

const (
	KindUser Kind = iota
	KindBuiltIn
)

// Resolved is the result of resolving one specifier.
type Resolved struct {
	Kind Kind
	Path string // absolute canonical path, valid only when Kind == KindUser
	ID   string // specifier as given, valid only when Kind == KindBuiltIn
}

// ResolveError is raised when a specifier looks like it should resolve
// to a file (relative or absolute) but no candidate exists on disk.
type ResolveError struct {
	Specifier  string
	From       string
	Suggestion string
}

func (e *ResolveError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("cannot resolve %q from %q (did you mean %q?)", e.Specifier, e.From, e.Suggestion)
	}
	return fmt.Sprintf("cannot resolve %q from %q", e.Specifier, e.From)
}

// extensions tried, in order, for an extensionless specifier — spec.md
// §4.A's "extension inference" generalized the way a CommonJS loader
// (and Node's ESM loader for TS-aware tooling) does it.
var extensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// Resolver resolves specifiers against a real filesystem, honoring
// .gitignore the same way the teacher's workspace scanner does so a
// node_modules walk never wanders into ignored build output.
type Resolver struct {
	fs          platform.FileSystem
	ignoreCache map[string]*IgnoreMatcher
}

// New returns a Resolver backed by fs.
func New(fs platform.FileSystem) *Resolver {
	return &Resolver{fs: fs, ignoreCache: map[string]*IgnoreMatcher{}}
}

// ignoreMatcherFor returns dir's IgnoreMatcher, loading and caching it
// on first use — each directory walked by resolvePackage is visited at
// most once per Resolver lifetime regardless of how many specifiers
// are resolved through it.
func (r *Resolver) ignoreMatcherFor(dir string) *IgnoreMatcher {
	if m, ok := r.ignoreCache[dir]; ok {
		return m
	}
	m, err := LoadIgnoreMatcher(r.fs, dir)
	if err != nil {
		m = &IgnoreMatcher{}
	}
	r.ignoreCache[dir] = m
	return m
}

// Resolve implements spec.md §4.A: relative/absolute specifiers are
// tried as files (with extension inference and index-file fallback);
// anything else is tried as a node_modules package before finally
// being treated as a built-in.
func (r *Resolver) Resolve(importingNamespace, specifier string) (Resolved, error) {
	if isRelativeOrAbsolute(specifier) {
		base := specifier
		if !filepath.IsAbs(base) {
			base = filepath.Join(filepath.Dir(importingNamespace), specifier)
		}
		if path, ok := r.findFile(base); ok {
			return Resolved{Kind: KindUser, Path: path}, nil
		}
		return Resolved{}, r.resolveError(specifier, importingNamespace, filepath.Dir(base))
	}

	if path, ok := r.resolvePackage(importingNamespace, specifier); ok {
		return Resolved{Kind: KindUser, Path: path}, nil
	}

	return Resolved{Kind: KindBuiltIn, ID: specifier}, nil
}

func isRelativeOrAbsolute(specifier string) bool {
	return strings.HasPrefix(specifier, "./") ||
		strings.HasPrefix(specifier, "../") ||
		filepath.IsAbs(specifier)
}

// findFile tries base literally, then with each known extension, then
// as a directory with an index.{ext} file.
func (r *Resolver) findFile(base string) (string, bool) {
	if path, ok := r.tryFileOrIndex(base); ok {
		return path, true
	}
	for _, ext := range extensions {
		if path, ok := r.tryFileOrIndex(base + ext); ok {
			return path, true
		}
	}
	for _, ext := range extensions {
		if path, ok := r.tryFileOrIndex(filepath.Join(base, "index"+ext)); ok {
			return path, true
		}
	}
	return "", false
}

// tryFileOrIndex reports whether path names a regular file, returning
// it cleaned. It does not make path OS-absolute; the result keeps
// whatever form the importing namespace was given in. Keeping this
// layer path-form-agnostic is what lets it run unmodified against
// both a real filesystem and an in-memory one in tests.
func (r *Resolver) tryFileOrIndex(path string) (string, bool) {
	info, err := r.fs.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return filepath.Clean(path), true
}

// resolvePackage walks node_modules upward from the importing file,
// per spec.md §12.2 (package.json exports/main/module fields). At each
// level it honors that directory's own .gitignore, skipping a
// candidate the project has explicitly excluded (e.g. a vendored or
// generated node_modules entry) the same way the teacher's workspace
// scanner skips ignored files during its own upward/downward walk.
func (r *Resolver) resolvePackage(importingNamespace, specifier string) (string, bool) {
	dir := filepath.Dir(importingNamespace)
	for {
		rel := filepath.Join("node_modules", specifier)
		if r.ignoreMatcherFor(dir).Ignored(rel) {
			parent := filepath.Dir(dir)
			if parent == dir {
				return "", false
			}
			dir = parent
			continue
		}
		candidate := filepath.Join(dir, "node_modules", specifier)
		if pkgPath, ok := r.resolvePackageJSON(candidate); ok {
			return pkgPath, true
		}
		if path, ok := r.findFile(candidate); ok {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type packageJSON struct {
	Main    string      `json:"main"`
	Module  string      `json:"module"`
	Exports interface{} `json:"exports"`
}

func (r *Resolver) resolvePackageJSON(packageDir string) (string, bool) {
	pkgPath := filepath.Join(packageDir, "package.json")
	raw, err := r.fs.ReadFile(pkgPath)
	if err != nil {
		return "", false
	}
	var pkg packageJSON
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return "", false
	}
	entry := pkg.Module
	if entry == "" {
		entry = mainFromExports(pkg.Exports)
	}
	if entry == "" {
		entry = pkg.Main
	}
	if entry == "" {
		entry = "index.js"
	}
	return r.findFile(filepath.Join(packageDir, entry))
}

// mainFromExports extracts a root "." entry from package.json's
// exports field, supporting the common shapes: a bare string, or an
// object with a "." key (itself a string or a conditions object
// preferring "import" then "default").
func mainFromExports(exports interface{}) string {
	switch v := exports.(type) {
	case string:
		return v
	case map[string]interface{}:
		root, ok := v["."]
		if !ok {
			return ""
		}
		switch r := root.(type) {
		case string:
			return r
		case map[string]interface{}:
			for _, cond := range []string{"import", "default", "require"} {
				if s, ok := r[cond].(string); ok {
					return s
				}
			}
		}
	}
	return ""
}

// resolveError builds a ResolveError, suggesting the closest sibling
// filename by Levenshtein distance when the directory exists.
func (r *Resolver) resolveError(specifier, from, dir string) error {
	suggestion := r.suggest(specifier, dir)
	return &ResolveError{Specifier: specifier, From: from, Suggestion: suggestion}
}

func (r *Resolver) suggest(specifier, dir string) string {
	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		return ""
	}
	want := filepath.Base(specifier)
	best := ""
	bestDist := -1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		dist := levenshtein.Distance(want, entry.Name(), nil)
		if bestDist == -1 || dist < bestDist {
			bestDist = dist
			best = entry.Name()
		}
	}
	if best == "" || bestDist > len(want) {
		return ""
	}
	return "./" + best
}

// IgnoreMatcher wraps go-gitignore so the graph scanner and the
// node_modules walk never descend into ignored paths.
type IgnoreMatcher struct {
	ignore *gitignore.GitIgnore
}

// LoadIgnoreMatcher reads root's .gitignore through fs (so it works
// unmodified against both a real filesystem and an in-memory one in
// tests, matching the rest of this package). A missing file yields a
// matcher that ignores nothing.
func LoadIgnoreMatcher(fs platform.FileSystem, root string) (*IgnoreMatcher, error) {
	raw, err := fs.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return &IgnoreMatcher{}, nil
	}
	lines := strings.Split(string(raw), "\n")
	return &IgnoreMatcher{ignore: gitignore.CompileIgnoreLines(lines...)}, nil
}

// Ignored reports whether relPath should be skipped.
func (m *IgnoreMatcher) Ignored(relPath string) bool {
	if m == nil || m.ignore == nil {
		return false
	}
	return m.ignore.MatchesPath(relPath)
}

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

// Package graph is a read-only, non-executing companion to the
// engine (SPEC_FULL.md §12.4): for a set of modules, list each one's
// declared imports and exports without ever calling eval.Evaluate on
// them. It backs `cmd graph`, which answers "what can I
// import from here" before a user writes the import — this never
// touches the Namespace Store.
//
// It is deliberately a separate static pass from rewrite, which needs
// a mutable, execution-ready AST from goja/esbuild: tree-sitter's
// concrete syntax tree is read-only, a poor fit for the AST mutation
// the Source Rewriter performs, so it is confined to this advisory
// listing feature instead, grounded in modulegraph.DefaultExportParser's
// query-matcher pattern.
package graph

import (
	"embed"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"jsrepl.dev/engine/internal/platform"
)

//go:embed queries/*.scm
var queryFS embed.FS

var (
	tsLanguage      = ts.NewLanguage(tsTypescript.LanguageTypescript())
	tsxLanguage     = ts.NewLanguage(tsTypescript.LanguageTSX())
	importExportSrc string
	loadQueryOnce   sync.Once
)

func loadQuerySource() {
	data, err := queryFS.ReadFile("queries/imports_exports.scm")
	if err != nil {
		panic(fmt.Sprintf("graph: embedded query missing: %v", err))
	}
	importExportSrc = string(data)
}

// ModuleInfo is everything the scanner can tell you about one module
// without running it.
type ModuleInfo struct {
	Path    string
	Imports []ImportInfo
	Exports []string // "default" for a default export
}

// ImportInfo is one `import ... from '<specifier>'` statement found
// in a module.
type ImportInfo struct {
	Specifier string
	Names     []string // "*" for a namespace import, "default" for a default import
}

// Scanner holds a pooled tree-sitter parser per language. Create one
// with New; the zero value has no filesystem to read from.
type Scanner struct {
	fs platform.FileSystem

	mu         sync.Mutex
	tsParser   *ts.Parser
	tsxParser  *ts.Parser
	importExpt *ts.Query
}

// New returns a Scanner reading source files from fs.
func New(fs platform.FileSystem) *Scanner {
	return &Scanner{fs: fs}
}

func (s *Scanner) parserFor(path string) (*ts.Parser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.EqualFold(filepath.Ext(path), ".tsx") || strings.EqualFold(filepath.Ext(path), ".jsx") {
		if s.tsxParser == nil {
			s.tsxParser = ts.NewParser()
			if err := s.tsxParser.SetLanguage(tsxLanguage); err != nil {
				return nil, err
			}
		}
		return s.tsxParser, nil
	}
	if s.tsParser == nil {
		s.tsParser = ts.NewParser()
		if err := s.tsParser.SetLanguage(tsLanguage); err != nil {
			return nil, err
		}
	}
	return s.tsParser, nil
}

func (s *Scanner) query() (*ts.Query, error) {
	loadQueryOnce.Do(loadQuerySource)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.importExpt == nil {
		q, err := ts.NewQuery(tsLanguage, importExportSrc)
		if err != nil {
			return nil, fmt.Errorf("graph: compiling query: %w", err)
		}
		s.importExpt = q
	}
	return s.importExpt, nil
}

// Scan reads and parses path, returning its declared imports/exports.
func (s *Scanner) Scan(path string) (ModuleInfo, error) {
	content, err := s.fs.ReadFile(path)
	if err != nil {
		return ModuleInfo{}, fmt.Errorf("graph: reading %s: %w", path, err)
	}

	parser, err := s.parserFor(path)
	if err != nil {
		return ModuleInfo{}, err
	}
	s.mu.Lock()
	tree := parser.Parse(content, nil)
	s.mu.Unlock()
	if tree == nil {
		return ModuleInfo{}, fmt.Errorf("graph: failed to parse %s", path)
	}
	defer tree.Close()

	query, err := s.query()
	if err != nil {
		return ModuleInfo{}, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := query.CaptureNames()
	info := ModuleInfo{Path: path}

	matches := cursor.Matches(query, tree.RootNode(), content)
	for {
		m := matches.Next()
		if m == nil {
			break
		}
		for _, cap := range m.Captures {
			text := cap.Node.Utf8Text(content)
			switch names[cap.Index] {
			case "import.stmt":
				if imp, ok := parseImportStatement(text); ok {
					info.Imports = append(info.Imports, imp)
				}
			case "export.stmt":
				info.Exports = append(info.Exports, parseExportStatement(text)...)
			}
		}
	}
	return info, nil
}

var (
	reImportSpecifier = regexp.MustCompile(`(?s)from\s*['"]([^'"]*)['"]`)
	reImportBareSpec  = regexp.MustCompile(`(?s)^import\s*['"]([^'"]*)['"]`)
	reImportDefault   = regexp.MustCompile(`^import\s+([A-Za-z_$][\w$]*)\s*(?:,|from)`)
	reImportNamespace = regexp.MustCompile(`\*\s*as\s+([A-Za-z_$][\w$]*)`)
	reImportNamedList = regexp.MustCompile(`(?s)\{([^}]*)\}`)

	reExportDefault     = regexp.MustCompile(`^export\s+default\b`)
	reExportNamedList   = regexp.MustCompile(`(?s)^export\s*\{([^}]*)\}`)
	reExportDeclaration = regexp.MustCompile(`^export\s+(?:async\s+)?(?:function\*?|class|const|let|var)\s+([A-Za-z_$][\w$]*)`)
)

func parseImportStatement(text string) (ImportInfo, bool) {
	text = strings.TrimSpace(text)
	var specifier string
	if m := reImportSpecifier.FindStringSubmatch(text); m != nil {
		specifier = m[1]
	} else if m := reImportBareSpec.FindStringSubmatch(text); m != nil {
		return ImportInfo{Specifier: m[1]}, true
	} else {
		return ImportInfo{}, false
	}

	info := ImportInfo{Specifier: specifier}
	if reImportNamespace.MatchString(text) {
		info.Names = append(info.Names, "*")
	}
	if reImportDefault.MatchString(text) {
		info.Names = append(info.Names, "default")
	}
	if m := reImportNamedList.FindStringSubmatch(text); m != nil {
		for _, item := range strings.Split(m[1], ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			// "x as y" binds local name y; the exported name on the
			// source module is what a caller of this scanner wants.
			if parts := strings.Fields(item); len(parts) > 0 {
				info.Names = append(info.Names, parts[0])
			}
		}
	}
	return info, true
}

func parseExportStatement(text string) []string {
	text = strings.TrimSpace(text)
	if reExportDefault.MatchString(text) {
		return []string{"default"}
	}
	if m := reExportDeclaration.FindStringSubmatch(text); m != nil {
		return []string{m[1]}
	}
	if m := reExportNamedList.FindStringSubmatch(text); m != nil {
		var names []string
		for _, item := range strings.Split(m[1], ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			fields := strings.Fields(item)
			// "x as y" exports under y.
			if len(fields) == 3 && fields[1] == "as" {
				names = append(names, fields[2])
			} else {
				names = append(names, fields[0])
			}
		}
		return names
	}
	return nil
}

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

package rewrite

import "strings"

// kind classifies one top-level statement for the purposes of the
// rewrite passes in engine.go. It is deliberately coarse: only the
// distinctions the rewriter acts on.
type kind int

const (
	kindOther kind = iota
	kindImport
	kindExportNamed
	kindExportDecl
	kindExportDefault
)

// stmt is one top-level statement of an esbuild-stripped source file:
// its byte range in that source (end exclusive) and its Text.
type stmt struct {
	kind       kind
	start, end int
	text       string
}

// declBodyPrefixes are the statement-start keyword sequences whose
// trailing `{...}` is a declaration body rather than an expression —
// their end is the matching closing brace, not the next semicolon.
var declBodyPrefixes = []string{
	"export default function", "export default class",
	"export function", "export class",
	"export async function",
	"async function", "function", "class",
}

// splitTopLevel walks src (already TypeScript-stripped, plain
// ES-module-syntax JavaScript) and returns its top-level statements in
// source order.
//
// This is a hand-written scanner rather than a full parser: it only
// needs to find statement *boundaries* reliably (tracking bracket
// depth and skipping over strings/templates/comments/regex literals),
// because every other piece of rewriting classifies and extracts from
// the already-isolated statement text with simple prefix checks and
// regexes (see engine.go). That keeps the rewriter's correctness
// independent of any particular AST library's exact node shapes.
//
// Known simplification: a statement that is not a function/class
// declaration is assumed to be semicolon-terminated; the one
// un-terminated statement allowed is the final one in the file (the
// common case for a REPL's trailing expression, e.g. "1 + 2" with no
// trailing semicolon).
func splitTopLevel(src string) []stmt {
	var stmts []stmt
	i := 0
	n := len(src)
	for {
		i = skipTrivia(src, i)
		if i >= n {
			break
		}
		start := i
		if declBody, kw := matchesDeclBody(src[i:]); declBody {
			i = scanDeclBody(src, i+len(kw))
		} else {
			i = scanUntilTopLevelSemicolon(src, i)
		}
		if i <= start {
			i = n // safety net against a zero-width match
		}
		text := src[start:i]
		if strings.TrimSpace(text) == "" {
			continue
		}
		stmts = append(stmts, stmt{kind: classify(text), start: start, end: i, text: text})
	}
	return stmts
}

func matchesDeclBody(rest string) (bool, string) {
	for _, kw := range declBodyPrefixes {
		if strings.HasPrefix(rest, kw) && (len(rest) == len(kw) || isBoundaryByte(rest[len(kw)])) {
			return true, kw
		}
	}
	return false, ""
}

func isBoundaryByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '(' || b == '*' || b == '{'
}

// scanDeclBody advances past a function/class declaration's body: its
// name, parameter list / heritage clause, and the `{...}` block at
// whatever depth it starts, stopping right after the matching `}`.
func scanDeclBody(src string, i int) int {
	n := len(src)
	for i < n && src[i] != '{' {
		i = advanceTrivial(src, i)
	}
	if i >= n {
		return n
	}
	depth := 0
	for i < n {
		switch src[i] {
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
			if depth == 0 {
				return i
			}
		default:
			i = advanceTrivial(src, i)
		}
	}
	return n
}

// scanUntilTopLevelSemicolon advances to (and including) the next `;`
// encountered at bracket depth 0, or to end of source if none exists.
func scanUntilTopLevelSemicolon(src string, i int) int {
	n := len(src)
	depth := 0
	for i < n {
		switch src[i] {
		case '{', '(', '[':
			depth++
			i++
		case '}', ')', ']':
			depth--
			i++
		case ';':
			if depth <= 0 {
				return i + 1
			}
			i++
		default:
			i = advanceTrivial(src, i)
		}
	}
	return n
}

// advanceTrivial moves one "token" forward from i: past a single
// non-special byte, or past an entire string/template literal,
// comment, or regex literal so their contents never perturb bracket
// depth or semicolon detection.
func advanceTrivial(src string, i int) int {
	n := len(src)
	switch src[i] {
	case '\'', '"':
		return skipQuoted(src, i, src[i])
	case '`':
		return skipTemplate(src, i)
	case '/':
		if i+1 < n && src[i+1] == '/' {
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				return n
			}
			return i + j
		}
		if i+1 < n && src[i+1] == '*' {
			j := strings.Index(src[i+2:], "*/")
			if j < 0 {
				return n
			}
			return i + 2 + j + 2
		}
		if looksLikeRegexStart(src, i) {
			return skipRegex(src, i)
		}
		return i + 1
	default:
		return i + 1
	}
}

func skipQuoted(src string, i int, quote byte) int {
	n := len(src)
	i++
	for i < n {
		if src[i] == '\\' {
			i += 2
			continue
		}
		if src[i] == quote {
			return i + 1
		}
		i++
	}
	return n
}

// skipTemplate skips a template literal, recursing into `${...}`
// interpolations (which may themselves contain nested templates).
func skipTemplate(src string, i int) int {
	n := len(src)
	i++
	for i < n {
		switch {
		case src[i] == '\\':
			i += 2
		case src[i] == '`':
			return i + 1
		case src[i] == '$' && i+1 < n && src[i+1] == '{':
			i += 2
			depth := 1
			for i < n && depth > 0 {
				switch src[i] {
				case '{':
					depth++
					i++
				case '}':
					depth--
					i++
				default:
					i = advanceTrivial(src, i)
				}
			}
		default:
			i++
		}
	}
	return n
}

// looksLikeRegexStart applies the standard heuristic: a `/` begins a
// regex literal unless the previous significant token was an
// identifier, number, or a closing `)`/`]`, in which case it is
// division.
func looksLikeRegexStart(src string, i int) bool {
	j := i - 1
	for j >= 0 && (src[j] == ' ' || src[j] == '\t') {
		j--
	}
	if j < 0 {
		return true
	}
	switch src[j] {
	case ')', ']':
		return false
	}
	if isIdentByte(src[j]) {
		return false
	}
	return true
}

func skipRegex(src string, i int) int {
	n := len(src)
	i++
	inClass := false
	for i < n {
		switch {
		case src[i] == '\\':
			i += 2
		case src[i] == '[':
			inClass = true
			i++
		case src[i] == ']':
			inClass = false
			i++
		case src[i] == '/' && !inClass:
			i++
			for i < n && isIdentByte(src[i]) {
				i++
			}
			return i
		default:
			i++
		}
	}
	return n
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// skipTrivia advances past whitespace and comments only (no bracket
// tracking needed between statements).
func skipTrivia(src string, i int) int {
	n := len(src)
	for i < n {
		switch {
		case src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r' || src[i] == ';':
			i++
		case src[i] == '/' && i+1 < n && src[i+1] == '/':
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				return n
			}
			i += j
		case src[i] == '/' && i+1 < n && src[i+1] == '*':
			j := strings.Index(src[i+2:], "*/")
			if j < 0 {
				return n
			}
			i += 2 + j + 2
		default:
			return i
		}
	}
	return n
}

func classify(text string) kind {
	t := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(t, "import "), strings.HasPrefix(t, "import("), strings.HasPrefix(t, "import\t"):
		if strings.HasPrefix(t, "import(") {
			return kindOther
		}
		return kindImport
	case strings.HasPrefix(t, "export default"):
		return kindExportDefault
	case strings.HasPrefix(t, "export {") || strings.HasPrefix(t, "export{"):
		return kindExportNamed
	case strings.HasPrefix(t, "export "):
		return kindExportDecl
	default:
		return kindOther
	}
}

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

import (
	"regexp"
	"strings"
)

var reDeclKeyword = regexp.MustCompile(`^(const|let|var|async\s+function|function|class)\b`)

// reNonExpressionKeyword matches statement forms that are not
// expression statements (control flow, other declarations) — the
// trailing-expression rule (spec.md §4.C.2) applies only when none of
// these match.
var reNonExpressionKeyword = regexp.MustCompile(`^(if|for|while|switch|try|do|throw|return|debugger|with|break|continue|label)\b`)

// emitOther implements spec.md §4.C.1 (top-level binding
// registration) and §4.C.2 (trailing expression → return) for a
// statement that is neither an import nor an export.
func emitOther(body *strings.Builder, text string, declared map[string]bool, isTrailing bool) {
	trimmed := strings.TrimSpace(text)
	kw := reDeclKeyword.FindStringSubmatch(trimmed)

	if kw == nil {
		if isTrailing && !reNonExpressionKeyword.MatchString(trimmed) {
			body.WriteString("return (" + trimSemicolon(trimmed) + ");\n")
			return
		}
		body.WriteString(trimmed)
		body.WriteString("\n")
		return
	}

	body.WriteString(trimmed)
	body.WriteString("\n")

	var names []string
	switch kw[1] {
	case "const", "let", "var":
		declList := trimSemicolon(strings.TrimSpace(strings.TrimPrefix(trimmed, kw[1])))
		names = declaredNames(declList)
	default:
		if name, ok := declarationName(trimmed); ok {
			names = []string{name}
		}
	}
	for _, name := range names {
		if !declared[name] {
			body.WriteString(putBindingCall(name))
			declared[name] = true
		}
	}
}

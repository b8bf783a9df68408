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

var reExportNamed = regexp.MustCompile(`(?s)^export\s*\{(.*)\}\s*(from\s+.*)?;?\s*$`)

// emitExportNamed implements spec.md §4.C.3's first bullet:
// `export { x, y as y1 }` becomes one putExport call per specifier,
// and the export statement itself contributes nothing to the body.
func emitExportNamed(body *strings.Builder, text string) error {
	m := reExportNamed.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return &UnsupportedError{Construct: "export statement: " + text}
	}
	if strings.TrimSpace(m[2]) != "" {
		return &UnsupportedError{Construct: "re-export with 'from': " + text}
	}
	for _, item := range splitTopLevelCommas(m[1]) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		sub := reNamedItem.FindStringSubmatch(item)
		if sub == nil {
			return &UnsupportedError{Construct: "export specifier: " + item}
		}
		local, exportedName := sub[1], sub[1]
		if sub[2] != "" {
			exportedName = sub[2]
		}
		body.WriteString(putExportCall(local, exportedName))
	}
	return nil
}

var reExportDeclKeyword = regexp.MustCompile(`^export\s+(const|let|var|async\s+function|function|class)\b`)

// emitExportDecl implements spec.md §4.C.3's second bullet: strip the
// leading "export ", emit the bare declaration, then register a
// binding (if not already registered by this call) and a same-name
// export for every name it introduces.
func emitExportDecl(body *strings.Builder, text string, declared, exportedKeys map[string]bool) error {
	trimmed := strings.TrimSpace(text)
	kw := reExportDeclKeyword.FindStringSubmatch(trimmed)
	if kw == nil {
		return &UnsupportedError{Construct: "export declaration: " + text}
	}
	bare := strings.TrimSpace(strings.TrimPrefix(trimmed, "export"))
	body.WriteString(bare)
	body.WriteString("\n")

	var names []string
	switch kw[1] {
	case "const", "let", "var":
		declList := strings.TrimSpace(trimSemicolon(strings.TrimSpace(strings.TrimPrefix(bare, kw[1]))))
		names = declaredNames(declList)
	default: // function, async function, class
		if name, ok := declarationName(bare); ok {
			names = []string{name}
		}
	}

	for _, name := range names {
		if !declared[name] {
			body.WriteString(putBindingCall(name))
			declared[name] = true
		}
		key := "named:" + name
		if !exportedKeys[key] {
			body.WriteString(putExportCall(name, name))
			exportedKeys[key] = true
		}
	}
	return nil
}

var (
	reExportDefaultFunc  = regexp.MustCompile(`(?s)^export\s+default\s+((?:async\s+)?function\*?\s*[A-Za-z_$][\w$]*?\s*\()`)
	reExportDefaultClass = regexp.MustCompile(`(?s)^export\s+default\s+(class\s+[A-Za-z_$][\w$]*)`)
	reExportDefaultIdent = regexp.MustCompile(`^export\s+default\s+([A-Za-z_$][\w$]*)\s*;?\s*$`)
)

// emitExportDefault implements spec.md §4.C.4.
func emitExportDefault(body *strings.Builder, text string, declared map[string]bool, allowComplex bool) error {
	trimmed := strings.TrimSpace(text)
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "export default"))

	if name, ok := declarationName(rest); ok && (strings.HasPrefix(rest, "function") || strings.HasPrefix(rest, "async function") || strings.HasPrefix(rest, "class")) {
		body.WriteString(rest)
		body.WriteString("\n")
		body.WriteString(putBindingCall(name))
		declared[name] = true
		body.WriteString(putDefaultExportCall(name))
		return nil
	}

	if isAnonymousFunctionOrClass(rest) {
		id := nextSynthetic("defaultExport")
		named := nameAnonymousDeclaration(rest, id)
		body.WriteString(named)
		body.WriteString("\n")
		body.WriteString(putBindingCall(id))
		declared[id] = true
		body.WriteString(putDefaultExportCall(id))
		return nil
	}

	if m := reExportDefaultIdent.FindStringSubmatch(trimmed); m != nil {
		body.WriteString(putDefaultExportCall(m[1]))
		return nil
	}

	// export default <otherExpression>
	if !allowComplex {
		return &UnsupportedError{Construct: "export default <expression>: " + text}
	}
	id := nextSynthetic("defaultExport")
	expr := trimSemicolon(rest)
	body.WriteString("const " + id + " = " + expr + ";\n")
	declared[id] = true
	body.WriteString(putBindingCall(id))
	body.WriteString(putDefaultExportCall(id))
	return nil
}

var (
	reAnonFunctionExpr = regexp.MustCompile(`^(?:async\s+)?function\*?\s*\(`)
	reAnonClassExpr    = regexp.MustCompile(`^class\s*(?:\{|extends\b)`)
)

func isAnonymousFunctionOrClass(rest string) bool {
	return reAnonFunctionExpr.MatchString(rest) || reAnonClassExpr.MatchString(rest)
}

var reAnonFunctionHead = regexp.MustCompile(`^(?:async\s+)?function\*?`)
var reAnonClassHead = regexp.MustCompile(`^class`)

// nameAnonymousDeclaration splices " id" immediately after the
// "function"/"function*"/"class" keyword (before any parameter list,
// heritage clause, or body), turning an anonymous declaration into a
// named one so it can be referenced by a putBinding call.
func nameAnonymousDeclaration(rest, id string) string {
	if loc := reAnonFunctionHead.FindStringIndex(rest); loc != nil {
		return rest[:loc[1]] + " " + id + rest[loc[1]:]
	}
	if loc := reAnonClassHead.FindStringIndex(rest); loc != nil {
		return rest[:loc[1]] + " " + id + rest[loc[1]:]
	}
	return rest
}

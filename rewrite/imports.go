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

	"jsrepl.dev/engine/namespace"
)

var (
	reNamespaceClause = regexp.MustCompile(`^\*\s*as\s+([A-Za-z_$][\w$]*)$`)
	reNamedClause     = regexp.MustCompile(`(?s)^\{(.*)\}$`)
	reNamedItem       = regexp.MustCompile(`^([A-Za-z_$][\w$]*)(?:\s+as\s+([A-Za-z_$][\w$]*))?$`)
	reBareIdent       = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
)

// rewriteImport implements spec.md §4.C.5: parse one `import ...`
// statement and invoke hook synchronously for each binding it
// introduces, before any subsequent statement's registration call is
// emitted.
func rewriteImport(text string, hook ImportHook) error {
	text = strings.TrimSpace(text)

	if m := matchImportFrom(text); m != nil {
		clause, specifier := m[1], m[2]
		return bindImportClause(clause, specifier, hook)
	}
	if matchImportSideEffect(text) != nil {
		return nil // no bindings introduced
	}
	return &UnsupportedError{Construct: "import statement: " + text}
}

// matchImportFrom/matchImportSideEffect use a hand-rolled terminal
// quote match (rather than relying on the regex backreference syntax
// Go's RE2 engine does not support) by trying both quote characters.
func matchImportFrom(text string) []string {
	for _, q := range []byte{'\'', '"'} {
		re := regexp.MustCompile(`(?s)^import\s+(.*?)\s+from\s+` + regexp.QuoteMeta(string(q)) + `(.*?)` + regexp.QuoteMeta(string(q)) + `\s*;?\s*$`)
		if m := re.FindStringSubmatch(text); m != nil {
			return []string{m[0], m[1], m[2]}
		}
	}
	return nil
}

func matchImportSideEffect(text string) []string {
	for _, q := range []byte{'\'', '"'} {
		re := regexp.MustCompile(`(?s)^import\s+` + regexp.QuoteMeta(string(q)) + `(.*?)` + regexp.QuoteMeta(string(q)) + `\s*;?\s*$`)
		if m := re.FindStringSubmatch(text); m != nil {
			return m
		}
	}
	return nil
}

func bindImportClause(clause, specifier string, hook ImportHook) error {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil
	}

	parts := splitTopLevelCommas(clause)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch {
		case reNamespaceClause.MatchString(part):
			m := reNamespaceClause.FindStringSubmatch(part)
			if err := hook(m[1], namespace.NamespaceImport(), specifier); err != nil {
				return err
			}
		case reNamedClause.MatchString(part):
			inner := reNamedClause.FindStringSubmatch(part)[1]
			for _, item := range splitTopLevelCommas(inner) {
				item = strings.TrimSpace(item)
				if item == "" {
					continue
				}
				m := reNamedItem.FindStringSubmatch(item)
				if m == nil {
					return &UnsupportedError{Construct: "import specifier: " + item}
				}
				local := m[1]
				if m[2] != "" {
					local = m[2]
				}
				if err := hook(local, namespace.Named(m[1]), specifier); err != nil {
					return err
				}
			}
		case reBareIdent.MatchString(part):
			if err := hook(part, namespace.DefaultImport(), specifier); err != nil {
				return err
			}
		default:
			return &UnsupportedError{Construct: "import clause: " + part}
		}
	}
	return nil
}

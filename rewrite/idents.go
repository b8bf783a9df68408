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

var reLeadingIdent = regexp.MustCompile(`^\s*([A-Za-z_$][\w$]*)`)

// declaredNames extracts every identifier bound by a var/let/const
// declaration's declarator list (text with the leading keyword already
// stripped, e.g. "x = 1, {a, b: c} = obj, [y, ...z] = arr"), per
// spec.md §4.C.1's "putBinding for every name bound in the program's
// top scope" — including names introduced by object and array
// destructuring, which have no exception in spec.md's Non-goals.
func declaredNames(declaratorList string) []string {
	var names []string
	for _, part := range splitTopLevelCommas(declaratorList) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pattern := part
		if eqIdx, _ := findTopLevelMarks(part); eqIdx >= 0 {
			pattern = part[:eqIdx]
		}
		names = append(names, bindingNamesFromPattern(pattern)...)
	}
	return names
}

// bindingNamesFromPattern dispatches a single binding target — a bare
// identifier, an object pattern "{...}", or an array pattern "[...]"
// — to the matching extractor. Any top-level default ("= expr") must
// already be stripped by the caller, since a default's own contents
// may themselves contain top-level-looking brackets/commas that don't
// belong to this pattern.
func bindingNamesFromPattern(pattern string) []string {
	pattern = strings.TrimSpace(pattern)
	switch {
	case strings.HasPrefix(pattern, "{") && strings.HasSuffix(pattern, "}"):
		return objectPatternNames(pattern[1 : len(pattern)-1])
	case strings.HasPrefix(pattern, "[") && strings.HasSuffix(pattern, "]"):
		return arrayPatternNames(pattern[1 : len(pattern)-1])
	default:
		if m := reLeadingIdent.FindStringSubmatch(pattern); m != nil {
			return []string{m[1]}
		}
		return nil
	}
}

// objectPatternNames extracts the bound names of an object pattern's
// property list (braces already stripped): shorthand ("a", "a = 1"),
// renamed ("key: local", "key: local = 1", including a computed
// "[expr]: local"), nested ("key: {a,b}"), and rest ("...rest").
func objectPatternNames(inner string) []string {
	var names []string
	for _, prop := range splitTopLevelCommas(inner) {
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		if strings.HasPrefix(prop, "...") {
			rest := strings.TrimSpace(strings.TrimPrefix(prop, "..."))
			names = append(names, bindingNamesFromPattern(rest)...)
			continue
		}

		eqIdx, colonIdx := findTopLevelMarks(prop)
		if colonIdx >= 0 && (eqIdx < 0 || colonIdx < eqIdx) {
			value := prop[colonIdx+1:]
			if valEq, _ := findTopLevelMarks(value); valEq >= 0 {
				value = value[:valEq]
			}
			names = append(names, bindingNamesFromPattern(value)...)
			continue
		}

		ident := prop
		if eqIdx >= 0 {
			ident = prop[:eqIdx]
		}
		names = append(names, bindingNamesFromPattern(ident)...)
	}
	return names
}

// arrayPatternNames extracts the bound names of an array pattern's
// element list (brackets already stripped): plain elements, elisions
// ("[a, , c]", silently contributing no name), defaults ("a = 1"),
// nested patterns, and a rest element ("...rest").
func arrayPatternNames(inner string) []string {
	var names []string
	for _, elem := range splitTopLevelCommas(inner) {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		elem = strings.TrimSpace(strings.TrimPrefix(elem, "..."))
		if eqIdx, _ := findTopLevelMarks(elem); eqIdx >= 0 {
			elem = elem[:eqIdx]
		}
		names = append(names, bindingNamesFromPattern(elem)...)
	}
	return names
}

// findTopLevelMarks scans s for its first bracket-depth-0 '=' and ':',
// skipping strings/templates/comments/regexes the same way the
// statement scanner does, so neither a nested destructuring pattern's
// own marks nor one inside a default-value expression is mistaken for
// s's own separator. Either return value is -1 if that mark never
// occurs at depth 0.
func findTopLevelMarks(s string) (eqIdx, colonIdx int) {
	eqIdx, colonIdx = -1, -1
	depth := 0
	i := 0
	n := len(s)
	for i < n {
		switch s[i] {
		case '{', '(', '[':
			depth++
			i++
		case '}', ')', ']':
			depth--
			i++
		case '=':
			if depth == 0 && eqIdx == -1 {
				eqIdx = i
			}
			i++
		case ':':
			if depth == 0 && colonIdx == -1 {
				colonIdx = i
			}
			i++
		default:
			i = advanceTrivial(s, i)
		}
	}
	return eqIdx, colonIdx
}

var reFunctionName = regexp.MustCompile(`^\s*(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`)
var reClassName = regexp.MustCompile(`^\s*class\s+([A-Za-z_$][\w$]*)`)

// declarationName returns the name introduced by a function or class
// declaration's text (no "export"/"export default" prefix), and ok
// false if text anonymous or not such a declaration.
func declarationName(text string) (string, bool) {
	if m := reFunctionName.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := reClassName.FindStringSubmatch(text); m != nil && m[1] != "extends" {
		return m[1], true
	}
	return "", false
}

// splitTopLevelCommas splits s on commas that are not nested inside
// brackets, strings, templates, or comments — reusing the same
// lexical skipping rules as the top-level statement scanner.
func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	i := 0
	n := len(s)
	for i < n {
		switch s[i] {
		case '{', '(', '[':
			depth++
			i++
		case '}', ')', ']':
			depth--
			i++
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				i++
				start = i
				continue
			}
			i++
		default:
			i = advanceTrivial(s, i)
		}
	}
	parts = append(parts, s[start:])
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			trimmed = append(trimmed, p)
		}
	}
	return trimmed
}

func trimSemicolon(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(s, ";")
}

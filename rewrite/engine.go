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

// Package rewrite implements the Source Rewriter: it turns a source
// fragment into an imperative script that, when run, registers every
// top-level binding/export/import into the Namespace Store and yields
// the fragment's trailing expression as its completion value.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"jsrepl.dev/engine/namespace"
)

// Loader selects the esbuild syntax loader for the fragment.
type Loader string

const (
	LoaderTS  Loader = "ts"
	LoaderTSX Loader = "tsx"
	LoaderJS  Loader = "js"
	LoaderJSX Loader = "jsx"
)

// ImportHook is invoked synchronously, at rewrite time, for every
// import specifier encountered — before any of the fragment's body
// executes, matching spec.md §4.C.5's "at enter time" requirement.
// The eval package implements this to register the import in the
// Namespace Store and, when evalImports is enabled, recursively
// evaluate an unmarked target namespace.
type ImportHook func(local string, imported namespace.Imported, specifier string) error

// UnsupportedError is raised for constructs the rewriter does not
// handle, per spec.md §7 (currently: `export default <complex expr>`
// when AllowComplexDefaultExport is false, and re-export specifiers).
type UnsupportedError struct {
	Construct string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported construct: %s", e.Construct)
}

// ParseError wraps an esbuild transform failure.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string { return "parse error: " + e.Detail }

// Options configures one Rewrite call.
type Options struct {
	Loader Loader
	// TsconfigRaw is esbuild's TsconfigRaw JSON, or "" for defaults.
	TsconfigRaw string
	// AllowComplexDefaultExport lifts spec.md §9's open-question
	// restriction: when true, `export default <expr>` for any
	// expression synthesizes an identifier instead of failing with
	// UnsupportedError (see SPEC_FULL.md §13).
	AllowComplexDefaultExport bool
	OnImport                  ImportHook
}

// Result is the rewritten program, ready to execute.
type Result struct {
	// Program is the full script: a single top-level statement, an
	// IIFE call, whose completion value is the fragment's result.
	Program string
}

var genCounter int

func nextSynthetic(prefix string) string {
	genCounter++
	return fmt.Sprintf("__%s_%d", prefix, genCounter)
}

// Rewrite implements spec.md §4.C against fragment, whose namespace is
// filePath, as a statement-level lexical scan rather than a full AST
// walk (see SPEC_FULL.md's implementation note under §1-9).
func Rewrite(filePath, fragment string, opts Options) (Result, error) {
	stripped, err := stripTypes(fragment, filePath, opts)
	if err != nil {
		return Result{}, err
	}

	stmts := splitTopLevel(stripped)

	var body strings.Builder
	declared := map[string]bool{}  // names already putBinding'd, this call
	exported := map[string]bool{}  // exported keys already putExport'd, this call

	lastIdx := lastNonImportIndex(stmts)

	for i, s := range stmts {
		switch s.kind {
		case kindImport:
			if err := rewriteImport(s.text, opts.OnImport); err != nil {
				return Result{}, err
			}
			// Import statements never appear in the emitted body.

		case kindExportNamed:
			if err := emitExportNamed(&body, s.text); err != nil {
				return Result{}, err
			}

		case kindExportDecl:
			if err := emitExportDecl(&body, s.text, declared, exported); err != nil {
				return Result{}, err
			}

		case kindExportDefault:
			if err := emitExportDefault(&body, s.text, declared, opts.AllowComplexDefaultExport); err != nil {
				return Result{}, err
			}

		case kindOther:
			emitOther(&body, s.text, declared, i == lastIdx)
		}
	}

	program := "(function(){\n" + body.String() + "\n})();"
	return Result{Program: program}, nil
}

// stripTypes runs esbuild's syntax-only TS→JS transform, preserving
// import/export syntax (Format: api.FormatESModule), exactly as the
// transform middleware this is grounded on does for served files.
func stripTypes(fragment, filePath string, opts Options) (string, error) {
	loader := api.LoaderTS
	switch opts.Loader {
	case LoaderTSX:
		loader = api.LoaderTSX
	case LoaderJS:
		loader = api.LoaderJS
	case LoaderJSX:
		loader = api.LoaderJSX
	}

	tsconfigRaw := opts.TsconfigRaw
	if tsconfigRaw == "" {
		tsconfigRaw = `{"compilerOptions":{"importHelpers":false}}`
	}

	result := api.Transform(fragment, api.TransformOptions{
		Loader:      loader,
		Target:      api.ESNext,
		Format:      api.FormatESModule,
		Sourcefile:  filePath,
		TsconfigRaw: tsconfigRaw,
	})
	if len(result.Errors) > 0 {
		var msg strings.Builder
		for _, e := range result.Errors {
			msg.WriteString(e.Text)
			msg.WriteString("; ")
		}
		return "", &ParseError{Detail: msg.String()}
	}

	return rewriteDynamicImport(string(result.Code)), nil
}

// rewriteDynamicImport implements spec.md §4.C.6 / SPEC_FULL.md §12.1:
// a conservative textual substitution of `import(` call sites for a
// runtime helper. expr itself is passed through untouched; the
// namespace, evalImports, and debug flags reach the helper via Go-side
// closure rather than injected arguments, since expr's own contents
// (which may contain parens/commas) make locating the matching close
// paren to splice extra arguments into unnecessarily fragile.
var reDynamicImport = regexp.MustCompile(`\bimport\s*\(`)

func rewriteDynamicImport(src string) string {
	return reDynamicImport.ReplaceAllString(src, "__dynamicImport(")
}

// lastNonImportIndex finds the last statement that is not an import
// (imports are always stripped, so they cannot carry the trailing
// expression).
func lastNonImportIndex(stmts []stmt) int {
	for i := len(stmts) - 1; i >= 0; i-- {
		if stmts[i].kind != kindImport {
			return i
		}
	}
	return -1
}

func putBindingCall(local string) string {
	return fmt.Sprintf("__putBinding(%s, %s);\n", jsString(local), local)
}

func putExportCall(local, exportedKey string) string {
	return fmt.Sprintf("__putExport(%s, %s);\n", jsString(local), jsString(exportedKey))
}

func putDefaultExportCall(local string) string {
	return fmt.Sprintf("__putDefaultExport(%s);\n", jsString(local))
}

func jsString(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

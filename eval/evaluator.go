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

// Package eval implements the Evaluator: it drives the Namespace
// Store, Source Rewriter and Scope Synthesizer to a single value,
// orchestrating recursive evaluation of imported user modules with
// cycle detection (spec.md §4.E).
package eval

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/nsf/jsondiff"

	"jsrepl.dev/engine/internal/logging"
	"jsrepl.dev/engine/internal/platform"
	"jsrepl.dev/engine/internal/tsconfig"
	"jsrepl.dev/engine/namespace"
	"jsrepl.dev/engine/resolve"
	"jsrepl.dev/engine/rewrite"
	"jsrepl.dev/engine/scope"
)

// DefaultMaxImportDepth bounds recursive import evaluation
// (SPEC_FULL.md §12.3) well above any realistic import graph while
// still catching a runaway chain the cycle-breaking marker alone
// would not — the marker is set before a file's own imports are
// walked, so pathological self-widening graphs can still recurse
// deeply before any single namespace repeats.
const DefaultMaxImportDepth = 64

// Result is the engine's response to one evaluation request, shaped
// per spec.md §6.
type Result struct {
	Value  interface{}
	Stdout string
	Stderr string
}

// Evaluator holds the process-wide Namespace Store and the
// collaborators the Evaluator drives. The zero value is not usable;
// use New.
type Evaluator struct {
	Store                     *namespace.Store
	Resolver                  *resolve.Resolver
	FS                        platform.FileSystem
	HostModules               scope.HostModules
	MaxImportDepth            int
	AllowComplexDefaultExport bool
}

// New returns an Evaluator backed by fs, with a fresh process-wide
// Namespace Store and the standard-module host loader.
func New(fs platform.FileSystem) *Evaluator {
	return &Evaluator{
		Store:          namespace.New(),
		Resolver:       resolve.New(fs),
		FS:             fs,
		HostModules:    scope.NewStandardModules(fs),
		MaxImportDepth: DefaultMaxImportDepth,
	}
}

// Evaluate implements spec.md §4.E's entry point
// evaluate(namespace, code, evalImports?, debug?). evalImports
// defaults to false and debug to false at the caller's discretion —
// both are plain bool parameters here since Go has no optional
// arguments.
func (e *Evaluator) Evaluate(ns, code string, evalImports, debug bool) (Result, error) {
	return e.evaluate(ns, code, evalImports, debug, 0)
}

func (e *Evaluator) evaluate(ns, code string, evalImports, debug bool, depth int) (Result, error) {
	if depth > e.MaxImportDepth {
		return Result{}, &ImportDepthExceededError{Namespace: ns, MaxDepth: e.MaxImportDepth}
	}

	// Step 1: mark before recursing so cycles terminate (spec.md §4.E.1).
	e.Store.Mark(ns)

	importHook := func(local string, imported namespace.Imported, specifier string) error {
		resolved, err := e.Resolver.Resolve(ns, specifier)
		if err != nil {
			return err
		}
		if resolved.Kind == resolve.KindBuiltIn {
			e.Store.PutImport(ns, local, imported, resolved.ID, true)
			return nil
		}
		e.Store.PutImport(ns, local, imported, resolved.Path, false)
		return nil
	}

	// Step 2+3: rewrite drives recursive import evaluation through
	// importHook's PutImport calls; the actual recursive evaluate()
	// call happens lazily at scope-synthesis time via onEvaluate below,
	// once for every import still unmarked, rather than inline here —
	// this keeps a single recursion entry point (onEvaluate) instead of
	// two (one rewrite-time, one scope-time) for the same operation.
	rewritten, err := rewrite.Rewrite(ns, code, rewrite.Options{
		Loader:                    loaderForPath(ns),
		OnImport:                  importHook,
		AllowComplexDefaultExport: e.AllowComplexDefaultExport,
		TsconfigRaw:               e.tsconfigRawFor(ns),
	})
	if err != nil {
		return Result{}, err
	}

	var beforeJSON []byte
	if debug {
		beforeJSON = snapshotBindingsJSON(e.Store, ns)
	}

	rt := goja.New()
	var stdout, stderr bytes.Buffer

	onEvaluate := func(target string) error {
		src, err := e.FS.ReadFile(target)
		if err != nil {
			return err
		}
		_, err = e.evaluate(target, string(src), evalImports, debug, depth+1)
		return err
	}

	env, err := scope.Synthesize(rt, ns, e.Store, e.Resolver, e.HostModules, evalImports, onEvaluate, &stdout, &stderr)
	if err != nil {
		return Result{}, err
	}

	v, runErr := rt.RunString(rewritten.Program)
	env.Finalize()

	if fatal := env.FatalError(); fatal != nil {
		return Result{}, fatal
	}

	if runErr != nil {
		ure := &UserRuntimeError{Namespace: ns, Cause: runErr}
		logging.GetLogger().Error("%v", ure)
		if debug {
			stderr.WriteString(ure.Error())
			stderr.WriteString("\n")
		}
		return Result{Value: nil, Stdout: stdout.String(), Stderr: stderr.String()}, nil
	}

	if debug {
		logBindingDiff(ns, beforeJSON, snapshotBindingsJSON(e.Store, ns))
	}

	return Result{
		Value:  exportValue(v),
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}, nil
}

// snapshotBindingsJSON renders ns's current bindings as JSON, best
// effort (a binding whose value can't marshal — a function, say — is
// rendered as its string form instead of failing the whole snapshot).
func snapshotBindingsJSON(store *namespace.Store, ns string) []byte {
	snap := store.Snapshot(ns)
	out := make(map[string]interface{}, len(snap.Bindings))
	for name, b := range snap.Bindings {
		exported := exportValue(b.Value)
		if _, err := json.Marshal(exported); err != nil {
			exported = b.Value.String()
		}
		out[name] = exported
	}
	data, err := json.Marshal(out)
	if err != nil {
		return []byte("{}")
	}
	return data
}

// logBindingDiff makes spec.md §5's last-writer-wins ordering
// guarantee observable in debug mode: which bindings a single
// Evaluate call added or overwrote, reusing the teacher's JSON-diff
// dependency for a REPL-appropriate purpose instead of golden-file
// comparison.
func logBindingDiff(ns string, before, after []byte) {
	opts := jsondiff.DefaultConsoleOptions()
	diff, explanation := jsondiff.Compare(before, after, &opts)
	if diff == jsondiff.FullMatch {
		return
	}
	logging.GetLogger().Debug("namespace %q bindings changed: %s", ns, explanation)
}

func exportValue(v goja.Value) interface{} {
	if v == nil || goja.IsUndefined(v) {
		return nil
	}
	return v.Export()
}

// tsconfigRawFor best-effort loads the tsconfig.json sitting next to
// ns, honoring its extends chain (internal/tsconfig.Load), so a
// project's jsx/decorators/target settings reach esbuild's syntax
// transform the same way they would in a real bundler. A missing or
// unreadable tsconfig is not an error here — it just means esbuild
// falls back to its own defaults.
func (e *Evaluator) tsconfigRawFor(ns string) string {
	candidate := filepath.Join(filepath.Dir(ns), "tsconfig.json")
	raw, err := tsconfig.Load(candidate, e.FS)
	if err != nil {
		return ""
	}
	return raw
}

func loaderForPath(path string) rewrite.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return rewrite.LoaderTSX
	case ".jsx":
		return rewrite.LoaderJSX
	case ".ts", ".mts", ".cts":
		return rewrite.LoaderTS
	default:
		return rewrite.LoaderJS
	}
}

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

// Package scope implements the Scope Synthesizer: it materializes the
// four-layer environment a rewritten fragment runs against (spec.md
// §4.D) by setting names directly on a goja.Runtime's global object,
// lowest-precedence layer first, so each later Set naturally
// overrides any name the layer below it also defined.
package scope

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dop251/goja"

	"jsrepl.dev/engine/namespace"
	"jsrepl.dev/engine/resolve"
)

// HostModules resolves a built-in specifier (one that did not resolve
// to a filesystem path) to its value, delegating to the host
// platform's own module loader per spec.md §4.A/§6. See
// SPEC_FULL.md §11 for the Go standard-library-only modules this
// engine stands in with (fs/path/os), since there is no real Node.js
// runtime backing this REPL.
type HostModules interface {
	Load(rt *goja.Runtime, id string) (goja.Value, bool)
}

// RequireResolver is the subset of *resolve.Resolver that scope needs.
type RequireResolver interface {
	Resolve(importingNamespace, specifier string) (resolve.Resolved, error)
}

// EvaluateHook triggers recursive evaluation of a user namespace not
// yet marked in the store (spec.md §4.E.3), invoked by require() and
// dynamic import at scope-execution time rather than rewrite time.
type EvaluateHook func(ns string) error

// Env is the synthesized environment for one evaluate call. Exports
// is the namespace's module.exports stub object, inspected after
// execution by Finalize to decide whether a CJS default export should
// be registered.
type Env struct {
	rt       *goja.Runtime
	ns       string
	store    *namespace.Store
	exports  *goja.Object
	fatalErr *error
}

// FatalError reports a MissingLocalError raised by a __putExport /
// __putDefaultExport registration call during execution (spec.md §7:
// these are fatal, unlike a plain user exception). goja also throws
// this error as a JavaScript exception when it is returned from a
// bound host function, but recovering the concrete Go error back out
// of a goja.Exception's thrown value is not a stable enough surface to
// depend on — this side channel is how the Evaluator tells the two
// apart without needing to.
func (e *Env) FatalError() error {
	if e.fatalErr == nil {
		return nil
	}
	return *e.fatalErr
}

// Synthesize implements spec.md §4.D. Layers are applied from lowest
// to highest precedence (host globals, then bindings, then resolved
// imports, then CJS stubs) by plain repeated Set calls on rt's global
// object — a later Set for the same name simply overwrites the
// earlier one, which is exactly layer §4.D's conflict policy ("layer
// 1 beats 2 beats 3 beats 4").
func Synthesize(
	rt *goja.Runtime,
	ns string,
	store *namespace.Store,
	resolver RequireResolver,
	hostModules HostModules,
	evalImports bool,
	onEvaluate EvaluateHook,
	stdout, stderr io.Writer,
) (*Env, error) {
	snap := store.Snapshot(ns)

	setHostGlobals(rt, stdout, stderr)
	setBindings(rt, snap)
	if err := setResolvedImports(rt, ns, store, snap, resolver, hostModules, evalImports, onEvaluate); err != nil {
		return nil, err
	}

	exportsObj := rt.NewObject()
	moduleObj := rt.NewObject()
	_ = moduleObj.Set("exports", exportsObj)
	_ = rt.Set("module", moduleObj)
	_ = rt.Set("exports", exportsObj)
	_ = rt.Set("__filename", ns)
	_ = rt.Set("__dirname", filepath.Dir(ns))
	_ = rt.Set("require", makeRequire(rt, ns, store, resolver, hostModules, evalImports, onEvaluate))
	_ = rt.Set("__dynamicImport", makeDynamicImport(rt, ns, store, resolver, hostModules, evalImports, onEvaluate))
	var fatalErr error
	_ = rt.Set("__putBinding", func(local string, value goja.Value) {
		store.PutBinding(ns, local, value)
	})
	_ = rt.Set("__putExport", func(local, exported string) error {
		err := store.PutExport(ns, local, namespace.NamedExport(exported))
		if err != nil && fatalErr == nil {
			fatalErr = err
		}
		return err
	})
	_ = rt.Set("__putDefaultExport", func(local string) error {
		err := store.PutDefaultExport(ns, local)
		if err != nil && fatalErr == nil {
			fatalErr = err
		}
		return err
	})

	return &Env{rt: rt, ns: ns, store: store, exports: exportsObj, fatalErr: &fatalErr}, nil
}

// Finalize implements the CJS-interop half of spec.md §4.D.1: if the
// user touched module.exports/exports (reassigned it, or mutated the
// originally-empty object in place), register it as the namespace's
// default export.
func (e *Env) Finalize() {
	moduleObj, ok := e.rt.Get("module").(*goja.Object)
	if !ok {
		return
	}
	current := moduleObj.Get("exports")
	if current == nil {
		return
	}
	touched := !current.SameAs(e.exports) || len(e.exports.Keys()) > 0
	if !touched {
		return
	}
	id := fmt.Sprintf("__moduleExports_%p", e)
	e.store.PutBinding(e.ns, id, current)
	_ = e.store.PutDefaultExport(e.ns, id)
}

func setHostGlobals(rt *goja.Runtime, stdout, stderr io.Writer) {
	console := rt.NewObject()
	_ = console.Set("log", consolePrinter(stdout))
	_ = console.Set("info", consolePrinter(stdout))
	_ = console.Set("warn", consolePrinter(stderr))
	_ = console.Set("error", consolePrinter(stderr))
	_ = rt.Set("console", console)
}

func consolePrinter(w io.Writer) func(args ...goja.Value) {
	return func(args ...goja.Value) {
		for i, a := range args {
			if i > 0 {
				_, _ = fmt.Fprint(w, " ")
			}
			_, _ = fmt.Fprint(w, a.String())
		}
		_, _ = fmt.Fprintln(w)
	}
}

func setBindings(rt *goja.Runtime, snap namespace.Snapshot) {
	for local, b := range snap.Bindings {
		_ = rt.Set(local, b.Value)
	}
}

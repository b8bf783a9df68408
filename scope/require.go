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

package scope

import (
	"fmt"

	"github.com/dop251/goja"

	"jsrepl.dev/engine/namespace"
	"jsrepl.dev/engine/resolve"
)

// setResolvedImports implements spec.md §4.D.2: every import the
// rewriter recorded for ns (via the ImportHook, at rewrite time) is
// given a concrete value here, at scope-synthesis time, once its
// source namespace may actually have been evaluated.
func setResolvedImports(
	rt *goja.Runtime,
	ns string,
	store *namespace.Store,
	snap namespace.Snapshot,
	resolver RequireResolver,
	hostModules HostModules,
	evalImports bool,
	onEvaluate EvaluateHook,
) error {
	for local, imp := range snap.Imports {
		value, err := resolveImportValue(rt, store, imp, hostModules, evalImports, onEvaluate)
		if err != nil {
			return err
		}
		_ = rt.Set(local, value)
	}
	return nil
}

func resolveImportValue(
	rt *goja.Runtime,
	store *namespace.Store,
	imp *namespace.Import,
	hostModules HostModules,
	evalImports bool,
	onEvaluate EvaluateHook,
) (goja.Value, error) {
	if imp.IsBuiltIn {
		mod, ok := hostModules.Load(rt, imp.ImportedNamespace)
		if !ok {
			return goja.Undefined(), nil
		}
		return memberOf(rt, mod, imp.Imported), nil
	}

	target := imp.ImportedNamespace
	if evalImports && !store.HasBeenEvaluated(target) {
		if err := onEvaluate(target); err != nil {
			return nil, err
		}
	}

	switch imp.Imported.Kind {
	case namespace.ImportedNamed:
		if v, ok := store.ResolveExport(target, namespace.NamedExport(imp.Imported.Name)); ok {
			return v, nil
		}
		return goja.Undefined(), nil
	case namespace.ImportedDefault:
		if v, ok := store.ResolveExport(target, namespace.DefaultExport()); ok {
			return v, nil
		}
		return goja.Undefined(), nil
	default: // ImportedNamespace
		return namespaceObject(rt, store, target), nil
	}
}

// memberOf projects a loaded built-in module's value through an
// import clause shape: a namespace/default import gets the module
// value itself, a named import gets one property off it.
func memberOf(rt *goja.Runtime, mod goja.Value, imported namespace.Imported) goja.Value {
	if imported.Kind == namespace.ImportedNamed {
		if obj, ok := mod.(*goja.Object); ok {
			return obj.Get(imported.Name)
		}
		return goja.Undefined()
	}
	return mod
}

// namespaceObject materializes "import * as X" (spec.md §4.A/§4.D.2):
// a fresh object with one property per named export of target, plus
// "default" when target has a default export.
func namespaceObject(rt *goja.Runtime, store *namespace.Store, target string) *goja.Object {
	obj := rt.NewObject()
	snap := store.Snapshot(target)
	for _, exp := range snap.Exports {
		if b, ok := snap.Bindings[exp.Local]; ok {
			if exp.Exported.Kind == namespace.ExportedDefault {
				_ = obj.Set("default", b.Value)
			} else {
				_ = obj.Set(exp.Exported.Name, b.Value)
			}
		}
	}
	return obj
}

// makeRequire implements the CommonJS half of spec.md §4.D.1:
// require(specifier) resolves against ns, evaluating the target
// namespace on demand when evalImports is set, and returns its
// default export (or the loaded built-in module's value).
func makeRequire(
	rt *goja.Runtime,
	ns string,
	store *namespace.Store,
	resolver RequireResolver,
	hostModules HostModules,
	evalImports bool,
	onEvaluate EvaluateHook,
) func(string) (goja.Value, error) {
	return func(specifier string) (goja.Value, error) {
		resolved, err := resolver.Resolve(ns, specifier)
		if err != nil {
			return nil, err
		}
		if resolved.Kind == resolve.KindBuiltIn {
			mod, ok := hostModules.Load(rt, resolved.ID)
			if !ok {
				return nil, fmt.Errorf("require: unknown built-in module %q", resolved.ID)
			}
			return mod, nil
		}
		if evalImports && !store.HasBeenEvaluated(resolved.Path) {
			if err := onEvaluate(resolved.Path); err != nil {
				return nil, err
			}
		}
		if v, ok := store.ResolveExport(resolved.Path, namespace.DefaultExport()); ok {
			return v, nil
		}
		return goja.Undefined(), nil
	}
}

// makeDynamicImport implements spec.md §12.1: import() is rewritten to
// a call to this function, which evaluates synchronously (this engine
// has no event loop) and returns an already-settled Promise wrapping a
// namespace object shaped like "import * as X".
func makeDynamicImport(
	rt *goja.Runtime,
	ns string,
	store *namespace.Store,
	resolver RequireResolver,
	hostModules HostModules,
	evalImports bool,
	onEvaluate EvaluateHook,
) func(string) *goja.Promise {
	return func(specifier string) *goja.Promise {
		promise, resolveFn, rejectFn := rt.NewPromise()

		resolved, err := resolver.Resolve(ns, specifier)
		if err != nil {
			rejectFn(rt.ToValue(err.Error()))
			return promise
		}
		if resolved.Kind == resolve.KindBuiltIn {
			mod, ok := hostModules.Load(rt, resolved.ID)
			if !ok {
				rejectFn(rt.ToValue(fmt.Sprintf("cannot find module %q", resolved.ID)))
				return promise
			}
			resolveFn(mod)
			return promise
		}
		if evalImports && !store.HasBeenEvaluated(resolved.Path) {
			if err := onEvaluate(resolved.Path); err != nil {
				rejectFn(rt.ToValue(err.Error()))
				return promise
			}
		}
		resolveFn(namespaceObject(rt, store, resolved.Path))
		return promise
	}
}

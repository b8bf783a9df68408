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

// Package namespace implements the evaluation engine's single mutable
// store: a process-wide registry mapping an absolute module path (a
// Namespace) to its bindings, exports, and imports.
package namespace

import (
	"fmt"
	"sync"

	O "github.com/IBM/fp-go/option"
	"github.com/dop251/goja"
)

// Namespace is the absolute, canonical filesystem path identifying a
// user-authored module within the session. Built-ins are never
// namespaces.
type Namespace = string

// ImportedKind distinguishes the three shapes an import specifier can
// bind to: a named export, the default export, or the whole exports
// namespace ("import * as X"). It replaces the spec's DEFAULT_EXPORT /
// NAMESPACE_EXPORT sentinel strings with a real sum type, so there is
// no string value that could ever collide with a user-chosen name.
type ImportedKind int

const (
	ImportedNamed ImportedKind = iota
	ImportedDefault
	ImportedNamespace
)

// Imported identifies what an import binds to on the source side.
type Imported struct {
	Kind ImportedKind
	Name string // valid only when Kind == ImportedNamed
}

func Named(name string) Imported    { return Imported{Kind: ImportedNamed, Name: name} }
func DefaultImport() Imported       { return Imported{Kind: ImportedDefault} }
func NamespaceImport() Imported     { return Imported{Kind: ImportedNamespace} }
func (i Imported) String() string {
	switch i.Kind {
	case ImportedDefault:
		return "default"
	case ImportedNamespace:
		return "*"
	default:
		return i.Name
	}
}

// ExportedKind distinguishes a named export from the anonymous default
// export sentinel.
type ExportedKind int

const (
	ExportedNamed ExportedKind = iota
	ExportedDefault
)

// Exported is the outward-facing name of an export: either a named key
// or the DEFAULT_EXPORT sentinel from spec.md §3.
type Exported struct {
	Kind ExportedKind
	Name string // valid only when Kind == ExportedNamed
}

func NamedExport(name string) Exported { return Exported{Kind: ExportedNamed, Name: name} }
func DefaultExport() Exported          { return Exported{Kind: ExportedDefault} }

func (e Exported) key() string {
	if e.Kind == ExportedDefault {
		return "\x00default"
	}
	return "\x01" + e.Name
}

// Binding is a named value defined at the top level of a namespace and
// persisted for the lifetime of the process.
type Binding struct {
	Local string
	Value goja.Value
}

// Export records that an outward name resolves to a local binding
// within the same namespace.
type Export struct {
	Exported Exported
	Local    string
}

// Import records a reference from one namespace into another (or a
// built-in), keyed by the local identifier it introduces.
type Import struct {
	Local             string
	Imported          Imported
	ImportedNamespace string
	IsBuiltIn         bool
}

// MissingLocalError is raised when an export is registered against a
// local binding that does not exist yet in the namespace.
type MissingLocalError struct {
	Namespace Namespace
	Local     string
}

func (e *MissingLocalError) Error() string {
	return fmt.Sprintf("namespace %q: no binding named %q to export", e.Namespace, e.Local)
}

type nsState struct {
	bindings map[string]*Binding
	exports  map[string]*Export
	imports  map[string]*Import
}

func newNsState() *nsState {
	return &nsState{
		bindings: make(map[string]*Binding),
		exports:  make(map[string]*Export),
		imports:  make(map[string]*Import),
	}
}

// Store is the process-wide, single-writer Namespace Store (spec.md
// §4.B). All mutation goes through its methods; the zero value is not
// usable, use New.
type Store struct {
	mu sync.Mutex
	ns map[Namespace]*nsState
}

// New returns an empty Store.
func New() *Store {
	return &Store{ns: make(map[Namespace]*nsState)}
}

func (s *Store) state(ns Namespace) *nsState {
	st, ok := s.ns[ns]
	if !ok {
		st = newNsState()
		s.ns[ns] = st
	}
	return st
}

// Mark creates ns's (possibly empty) entry if absent, without touching
// existing state. Used by the Evaluator to break import cycles: a
// namespace with a present-but-empty entry is treated as "already
// evaluated" by HasBeenEvaluated's caller-side cycle check.
func (s *Store) Mark(ns Namespace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(ns)
}

// PutBinding creates or overwrites the binding named local in ns.
func (s *Store) PutBinding(ns Namespace, local string, value goja.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(ns).bindings[local] = &Binding{Local: local, Value: value}
}

// PutExport registers that exported resolves to local in ns. It fails
// if no binding named local exists yet (spec.md §3 invariant 1 is
// enforced at registration time for the local-existence half of it;
// the other half — that the binding must still exist when the export
// is *consumed* — is enforced by ResolveExport).
func (s *Store) PutExport(ns Namespace, local string, exported Exported) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(ns)
	if _, ok := st.bindings[local]; !ok {
		return &MissingLocalError{Namespace: ns, Local: local}
	}
	st.exports[exported.key()] = &Export{Exported: exported, Local: local}
	return nil
}

// PutDefaultExport registers local as ns's default export.
func (s *Store) PutDefaultExport(ns Namespace, local string) error {
	return s.PutExport(ns, local, DefaultExport())
}

// PutImport registers that local, within ns, refers to imported from
// importedNamespace (a Namespace when isBuiltIn is false, or an opaque
// built-in id otherwise).
func (s *Store) PutImport(ns Namespace, local string, imported Imported, importedNamespace string, isBuiltIn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(ns).imports[local] = &Import{
		Local:             local,
		Imported:          imported,
		ImportedNamespace: importedNamespace,
		IsBuiltIn:         isBuiltIn,
	}
}

// Snapshot is a read-only view of a namespace's state, handed to the
// Scope Synthesizer.
type Snapshot struct {
	Bindings map[string]*Binding
	Exports  map[string]*Export
	Imports  map[string]*Import
}

// Snapshot copies out ns's current bindings, exports, and imports.
func (s *Store) Snapshot(ns Namespace) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(ns)
	out := Snapshot{
		Bindings: make(map[string]*Binding, len(st.bindings)),
		Exports:  make(map[string]*Export, len(st.exports)),
		Imports:  make(map[string]*Import, len(st.imports)),
	}
	for k, v := range st.bindings {
		out.Bindings[k] = v
	}
	for _, v := range st.exports {
		out.Exports[v.Exported.key()] = v
	}
	for k, v := range st.imports {
		out.Imports[k] = v
	}
	return out
}

// HasBeenEvaluated reports whether ns has any entry at all — bindings,
// exports, or imports — which the Evaluator uses as its sole cycle
// marker (spec.md §9: "do not add a parallel in-progress set").
func (s *Store) HasBeenEvaluated(ns Namespace) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ns[ns]
	return ok
}

// Reset clears the entire store. For tests only.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ns = make(map[Namespace]*nsState)
}

// mapOption looks up key in m, expressing "missing at this step" as
// O.None instead of a zero value a caller might mistake for present.
func mapOption[K comparable, V any](m map[K]V, key K) O.Option[V] {
	v, ok := m[key]
	if !ok {
		return O.None[V]()
	}
	return O.Some(v)
}

// ResolveExport walks spec.md §3 invariant 2's chain as an Option
// chain rather than a run of nil-checks: ns's Exports by exported,
// that export's local, then ns's Bindings by that local. A miss at
// any step collapses the whole chain to None — lazy-ES-module
// semantics over a mutable store, never an error.
func (s *Store) ResolveExport(ns Namespace, exported Exported) (value goja.Value, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stateOpt := mapOption(s.ns, ns)
	binding := O.Chain(func(st *nsState) O.Option[*Binding] {
		exp := mapOption(st.exports, exported.key())
		return O.Chain(func(e *Export) O.Option[*Binding] {
			return mapOption(st.bindings, e.Local)
		})(exp)
	})(stateOpt)

	return O.Fold(
		func() (goja.Value, bool) { return nil, false },
		func(b *Binding) (goja.Value, bool) { return b.Value, true },
	)(binding)
}

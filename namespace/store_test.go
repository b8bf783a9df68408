package namespace

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutBindingAndResolveExport(t *testing.T) {
	rt := goja.New()
	s := New()
	const ns Namespace = "/project/a.ts"

	s.PutBinding(ns, "greeting", rt.ToValue("hi"))
	require.NoError(t, s.PutExport(ns, "greeting", NamedExport("greeting")))

	v, ok := s.ResolveExport(ns, NamedExport("greeting"))
	require.True(t, ok)
	assert.Equal(t, "hi", v.Export())
}

func TestPutExportMissingLocal(t *testing.T) {
	s := New()
	err := s.PutExport("/project/a.ts", "nope", NamedExport("nope"))
	require.Error(t, err)
	var missing *MissingLocalError
	assert.ErrorAs(t, err, &missing)
}

func TestResolveExportDefaultSentinelDoesNotCollideWithUserName(t *testing.T) {
	rt := goja.New()
	s := New()
	const ns Namespace = "/project/b.ts"

	s.PutBinding(ns, "userDefault", rt.ToValue("user-value"))
	require.NoError(t, s.PutExport(ns, "userDefault", NamedExport("default")))

	s.PutBinding(ns, "realDefault", rt.ToValue("default-value"))
	require.NoError(t, s.PutDefaultExport(ns, "realDefault"))

	named, ok := s.ResolveExport(ns, NamedExport("default"))
	require.True(t, ok)
	assert.Equal(t, "user-value", named.Export())

	def, ok := s.ResolveExport(ns, DefaultExport())
	require.True(t, ok)
	assert.Equal(t, "default-value", def.Export())
}

func TestHasBeenEvaluatedAndMark(t *testing.T) {
	s := New()
	const ns Namespace = "/project/c.ts"

	assert.False(t, s.HasBeenEvaluated(ns))
	s.Mark(ns)
	assert.True(t, s.HasBeenEvaluated(ns))
}

func TestSnapshotIsACopy(t *testing.T) {
	rt := goja.New()
	s := New()
	const ns Namespace = "/project/d.ts"
	s.PutBinding(ns, "x", rt.ToValue(1))

	snap := s.Snapshot(ns)
	snap.Bindings["x"] = &Binding{Local: "x", Value: rt.ToValue(2)}

	v, ok := s.ResolveExport(ns, NamedExport("x"))
	assert.False(t, ok)
	_ = v
	live := s.Snapshot(ns)
	assert.Equal(t, int64(1), live.Bindings["x"].Value.ToInteger())
}

func TestPutImport(t *testing.T) {
	s := New()
	const ns Namespace = "/project/e.ts"
	s.PutImport(ns, "readFile", NamedExport("readFile").asImported(), "node:fs", true)

	snap := s.Snapshot(ns)
	imp, ok := snap.Imports["readFile"]
	require.True(t, ok)
	assert.True(t, imp.IsBuiltIn)
	assert.Equal(t, "node:fs", imp.ImportedNamespace)
}

// asImported is a tiny test-only bridge so the table above can build an
// Imported value from an Exported without duplicating the Named helper.
func (e Exported) asImported() Imported {
	if e.Kind == ExportedDefault {
		return DefaultImport()
	}
	return Named(e.Name)
}

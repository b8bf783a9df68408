package scope

import (
	"bytes"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsrepl.dev/engine/namespace"
	"jsrepl.dev/engine/resolve"
)

type fakeResolver struct {
	resolved resolve.Resolved
	err      error
}

func (f fakeResolver) Resolve(string, string) (resolve.Resolved, error) {
	return f.resolved, f.err
}

type noHostModules struct{}

func (noHostModules) Load(*goja.Runtime, string) (goja.Value, bool) { return nil, false }

func TestSynthesizeExposesBindings(t *testing.T) {
	rt := goja.New()
	store := namespace.New()
	store.PutBinding("/tmp/a.js", "x", rt.ToValue(42))

	var out bytes.Buffer
	_, err := Synthesize(rt, "/tmp/a.js", store, fakeResolver{}, noHostModules{}, false, nil, &out, &out)
	require.NoError(t, err)

	assert.Equal(t, int64(42), rt.Get("x").ToInteger())
}

func TestSynthesizeCJSStubsBeatBindingsOfTheSameName(t *testing.T) {
	rt := goja.New()
	store := namespace.New()
	store.PutBinding("/tmp/a.js", "module", rt.ToValue("not a module object"))

	var out bytes.Buffer
	_, err := Synthesize(rt, "/tmp/a.js", store, fakeResolver{}, noHostModules{}, false, nil, &out, &out)
	require.NoError(t, err)

	moduleObj, ok := rt.Get("module").(*goja.Object)
	require.True(t, ok, "module binding must be overridden by the CJS stub object")
	assert.NotNil(t, moduleObj.Get("exports"))
}

func TestFinalizeRegistersDefaultExportWhenModuleExportsReassigned(t *testing.T) {
	rt := goja.New()
	store := namespace.New()
	ns := "/tmp/c.js"

	var out bytes.Buffer
	env, err := Synthesize(rt, ns, store, fakeResolver{}, noHostModules{}, false, nil, &out, &out)
	require.NoError(t, err)

	_, err = rt.RunString(`module.exports = 99;`)
	require.NoError(t, err)

	env.Finalize()

	v, ok := store.ResolveExport(ns, namespace.DefaultExport())
	require.True(t, ok)
	assert.Equal(t, int64(99), v.ToInteger())
}

func TestFinalizeSkipsUntouchedExports(t *testing.T) {
	rt := goja.New()
	store := namespace.New()
	ns := "/tmp/d.js"

	var out bytes.Buffer
	env, err := Synthesize(rt, ns, store, fakeResolver{}, noHostModules{}, false, nil, &out, &out)
	require.NoError(t, err)

	_, err = rt.RunString(`1 + 1;`)
	require.NoError(t, err)

	env.Finalize()

	_, ok := store.ResolveExport(ns, namespace.DefaultExport())
	assert.False(t, ok)
}

func TestFinalizeRegistersDefaultExportWhenExportsMutatedInPlace(t *testing.T) {
	rt := goja.New()
	store := namespace.New()
	ns := "/tmp/e.js"

	var out bytes.Buffer
	env, err := Synthesize(rt, ns, store, fakeResolver{}, noHostModules{}, false, nil, &out, &out)
	require.NoError(t, err)

	_, err = rt.RunString(`exports.greet = "hi";`)
	require.NoError(t, err)

	env.Finalize()

	v, ok := store.ResolveExport(ns, namespace.DefaultExport())
	require.True(t, ok)
	obj, ok := v.(*goja.Object)
	require.True(t, ok)
	assert.Equal(t, "hi", obj.Get("greet").String())
}

func TestResolveImportValueNamedExportFromUserNamespace(t *testing.T) {
	rt := goja.New()
	store := namespace.New()
	target := "/tmp/lib.js"
	store.PutBinding(target, "greet", rt.ToValue("hello"))
	require.NoError(t, store.PutExport(target, "greet", namespace.NamedExport("greet")))

	imp := &namespace.Import{Local: "greet", Imported: namespace.Named("greet"), ImportedNamespace: target}
	v, err := resolveImportValue(rt, store, imp, noHostModules{}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.String())
}

func TestResolveImportValueTriggersEvaluateHookWhenNotYetEvaluated(t *testing.T) {
	rt := goja.New()
	store := namespace.New()
	target := "/tmp/lib2.js"
	called := false
	hook := func(ns string) error {
		called = true
		store.PutBinding(ns, "x", rt.ToValue(1))
		return store.PutDefaultExport(ns, "x")
	}

	imp := &namespace.Import{Local: "x", Imported: namespace.DefaultImport(), ImportedNamespace: target}
	v, err := resolveImportValue(rt, store, imp, noHostModules{}, true, hook)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, int64(1), v.ToInteger())
}

func TestNamespaceObjectIncludesNamedAndDefaultExports(t *testing.T) {
	rt := goja.New()
	store := namespace.New()
	target := "/tmp/lib3.js"
	store.PutBinding(target, "a", rt.ToValue(1))
	store.PutBinding(target, "b", rt.ToValue(2))
	require.NoError(t, store.PutExport(target, "a", namespace.NamedExport("a")))
	require.NoError(t, store.PutDefaultExport(target, "b"))

	obj := namespaceObject(rt, store, target)
	assert.Equal(t, int64(1), obj.Get("a").ToInteger())
	assert.Equal(t, int64(2), obj.Get("default").ToInteger())
}

func TestMakeRequireReturnsDefaultExportForUserModule(t *testing.T) {
	rt := goja.New()
	store := namespace.New()
	target := "/tmp/lib4.js"
	store.PutBinding(target, "x", rt.ToValue(7))
	require.NoError(t, store.PutDefaultExport(target, "x"))
	store.Mark(target)

	resolver := fakeResolver{resolved: resolve.Resolved{Kind: resolve.KindUser, Path: target}}
	require_ := makeRequire(rt, "/tmp/app.js", store, resolver, noHostModules{}, false, nil)

	v, err := require_("./lib4")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.ToInteger())
}

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsrepl.dev/engine/internal/platform"
)

func TestResolveRelativeWithExtensionInference(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/app.ts": `import { greet } from './lib'`,
		"project/lib.ts": `export const greet = (n) => 'hi ' + n`,
	})
	r := New(fs)

	got, err := r.Resolve("project/app.ts", "./lib")
	require.NoError(t, err)
	assert.Equal(t, KindUser, got.Kind)
	assert.Equal(t, "project/lib.ts", got.Path)
}

func TestResolveRelativeIndexFallback(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/app.ts":       `import x from './util'`,
		"project/util/index.ts": `export default 1`,
	})
	r := New(fs)

	got, err := r.Resolve("project/app.ts", "./util")
	require.NoError(t, err)
	assert.Equal(t, "project/util/index.ts", got.Path)
}

func TestResolveBareSpecifierFallsBackToBuiltIn(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/app.ts": `import fs from 'fs'`,
	})
	r := New(fs)

	got, err := r.Resolve("project/app.ts", "fs")
	require.NoError(t, err)
	assert.Equal(t, KindBuiltIn, got.Kind)
	assert.Equal(t, "fs", got.ID)
}

func TestResolveMissingRelativeFileIsResolveError(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/app.ts": `import x from './missing'`,
		"project/lib.ts": `export const x = 1`,
	})
	r := New(fs)

	_, err := r.Resolve("project/app.ts", "./missing")
	require.Error(t, err)
	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
}

func TestResolveBareSpecifierFromNodeModules(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/app.ts":                              `import x from 'leftpad'`,
		"project/node_modules/leftpad/package.json":    `{"main": "index.js"}`,
		"project/node_modules/leftpad/index.js":        `module.exports = function(){}`,
	})
	r := New(fs)

	got, err := r.Resolve("project/app.ts", "leftpad")
	require.NoError(t, err)
	assert.Equal(t, KindUser, got.Kind)
	assert.Equal(t, "project/node_modules/leftpad/index.js", got.Path)
}

func TestResolveBareSpecifierHonorsGitignore(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"project/app.ts":                           `import x from 'leftpad'`,
		"project/.gitignore":                       "node_modules/leftpad\n",
		"project/node_modules/leftpad/package.json": `{"main": "index.js"}`,
		"project/node_modules/leftpad/index.js":     `module.exports = function(){}`,
	})
	r := New(fs)

	got, err := r.Resolve("project/app.ts", "leftpad")
	require.NoError(t, err)
	assert.Equal(t, KindBuiltIn, got.Kind, "a gitignored node_modules entry must be skipped, not resolved")
}

func TestMainFromExportsRootString(t *testing.T) {
	assert.Equal(t, "./dist/index.js", mainFromExports("./dist/index.js"))
}

func TestMainFromExportsRootConditions(t *testing.T) {
	exports := map[string]interface{}{
		".": map[string]interface{}{
			"import":  "./dist/index.mjs",
			"default": "./dist/index.js",
		},
	}
	assert.Equal(t, "./dist/index.mjs", mainFromExports(exports))
}

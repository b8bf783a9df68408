package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsrepl.dev/engine/internal/platform"
)

func TestScanReportsNamedImportAndExport(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"a.ts": "import { greet } from './lib';\nexport const hi = greet('x');\n",
	})
	s := New(fs)
	info, err := s.Scan("a.ts")
	require.NoError(t, err)
	require.Len(t, info.Imports, 1)
	assert.Equal(t, "./lib", info.Imports[0].Specifier)
	assert.Contains(t, info.Imports[0].Names, "greet")
	assert.Contains(t, info.Exports, "hi")
}

func TestScanReportsDefaultAndNamespaceImports(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"b.ts": "import Foo, * as ns from './foo';\nexport default function bar() {}\n",
	})
	s := New(fs)
	info, err := s.Scan("b.ts")
	require.NoError(t, err)
	require.Len(t, info.Imports, 1)
	assert.Contains(t, info.Imports[0].Names, "default")
	assert.Contains(t, info.Imports[0].Names, "*")
	assert.Contains(t, info.Exports, "default")
}

func TestScanWorkspaceHonorsGitignoreAndPattern(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		".gitignore":  "dist/\n",
		"a.ts":        "export const a = 1;\n",
		"dist/out.ts": "export const shouldBeSkipped = 1;\n",
		"readme.md":   "not a module",
	})
	s := New(fs)
	infos, err := s.ScanWorkspace(fs, ".", "**/*.ts")
	require.NoError(t, err)
	var paths []string
	for _, info := range infos {
		paths = append(paths, info.Path)
	}
	assert.Contains(t, paths, "a.ts")
	assert.NotContains(t, paths, "dist/out.ts")
}

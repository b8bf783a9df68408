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

// Package tsconfig loads a project's tsconfig.json (tolerating the
// comments and trailing commas real tsconfig files carry, unlike
// plain encoding/json) and reduces it to the handful of
// compilerOptions esbuild's syntax-only transform actually honors,
// handed to rewrite.Options.TsconfigRaw as a JSON string.
package tsconfig

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"jsrepl.dev/engine/internal/platform"
)

const maxExtendsDepth = 5

// fields esbuild's TransformOptions.TsconfigRaw consults when
// stripping/transforming a single fragment (no module resolution
// fields — those belong to a real bundler, not this engine).
var compilerOptionFields = []string{
	"jsx",
	"jsxFactory",
	"jsxFragmentFactory",
	"jsxImportSource",
	"useDefineForClassFields",
	"experimentalDecorators",
	"target",
	"alwaysStrict",
}

// Load reads path (and any tsconfig it "extends", up to maxExtendsDepth,
// mirroring the teacher's transform.ParseTsConfig inheritance walk) and
// returns the merged compilerOptions re-encoded as esbuild's
// TsconfigRaw JSON string. An empty string is a valid result (none of
// the fields esbuild cares about were set) and simply means esbuild
// uses its defaults. A missing or unreadable file is returned as an
// error.
func Load(path string, fs platform.FileSystem) (string, error) {
	merged, err := loadRecursive(path, fs, 0, make(map[string]bool))
	if err != nil {
		return "", err
	}
	if len(merged) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString(`{"compilerOptions":{`)
	first := true
	for _, field := range compilerOptionFields {
		v, ok := merged[field]
		if !ok {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&b, "%q:%s", field, v)
	}
	b.WriteString("}}")
	return b.String(), nil
}

func loadRecursive(path string, fs platform.FileSystem, depth int, visited map[string]bool) (map[string]string, error) {
	if depth > maxExtendsDepth {
		return nil, fmt.Errorf("tsconfig extends depth exceeded (max: %d)", maxExtendsDepth)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if visited[abs] {
		return nil, fmt.Errorf("circular tsconfig extends detected: %s", abs)
	}
	visited[abs] = true

	raw, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tsconfig: %w", err)
	}
	clean := jsonc.ToJSON(raw)

	merged := make(map[string]string)
	if extends := gjson.GetBytes(clean, "extends").String(); extends != "" {
		extendsPath := filepath.Join(filepath.Dir(path), extends)
		if !strings.HasSuffix(extendsPath, ".json") {
			extendsPath += ".json"
		}
		base, err := loadRecursive(extendsPath, fs, depth+1, visited)
		if err != nil {
			return nil, err
		}
		for k, v := range base {
			merged[k] = v
		}
	}

	opts := gjson.GetBytes(clean, "compilerOptions")
	if opts.Exists() {
		for _, field := range compilerOptionFields {
			v := opts.Get(field)
			if v.Exists() {
				merged[field] = v.Raw
			}
		}
	}
	return merged, nil
}

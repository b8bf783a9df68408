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
package tsconfig

import (
	"strings"
	"testing"

	"jsrepl.dev/engine/internal/platform"
)

func TestLoadReturnsErrorWhenMissing(t *testing.T) {
	fs := platform.NewMapFS(nil)
	raw, err := Load("tsconfig.json", fs)
	if err == nil {
		t.Fatalf("expected a read error for a missing file, got raw=%q", raw)
	}
}

func TestLoadExtractsKnownCompilerOptions(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"tsconfig.json": `{
			// trailing comment, tolerated by jsonc
			"compilerOptions": {
				"jsx": "react-jsx",
				"target": "es2022",
				"outDir": "dist"
			}
		}`,
	})
	raw, err := Load("tsconfig.json", fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(raw, `"jsx":"react-jsx"`) {
		t.Errorf("expected jsx in output, got %s", raw)
	}
	if !strings.Contains(raw, `"target":"es2022"`) {
		t.Errorf("expected target in output, got %s", raw)
	}
	if strings.Contains(raw, "outDir") {
		t.Errorf("outDir is not one of esbuild's syntax-transform fields, got %s", raw)
	}
}

func TestLoadFollowsExtendsChain(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"base.json":     `{"compilerOptions": {"target": "es2020", "alwaysStrict": true}}`,
		"tsconfig.json": `{"extends": "./base.json", "compilerOptions": {"jsx": "preserve"}}`,
	})
	raw, err := Load("tsconfig.json", fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(raw, `"target":"es2020"`) || !strings.Contains(raw, `"jsx":"preserve"`) {
		t.Errorf("expected merged base+child options, got %s", raw)
	}
}

func TestLoadDetectsCircularExtends(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"a.json": `{"extends": "./b.json"}`,
		"b.json": `{"extends": "./a.json"}`,
	})
	_, err := Load("a.json", fs)
	if err == nil {
		t.Fatal("expected circular extends to be detected")
	}
}

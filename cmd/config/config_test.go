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
package config

import "testing"

func TestValidate_EmptyConfigValid(t *testing.T) {
	cfg := &ReplConfig{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty config should be valid, got error: %v", err)
	}
}

func TestValidate_NegativeMaxImportDepthRejected(t *testing.T) {
	cfg := &ReplConfig{MaxImportDepth: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected negative maxImportDepth to be rejected")
	}
}

func TestValidate_NilConfigValid(t *testing.T) {
	var cfg *ReplConfig
	if err := cfg.Validate(); err != nil {
		t.Errorf("nil config should be valid, got error: %v", err)
	}
}

func TestClone_PreservesFields(t *testing.T) {
	cfg := &ReplConfig{ProjectDir: "/proj", EvalImports: true, MaxImportDepth: 8}
	clone := cfg.Clone()
	if clone.ProjectDir != cfg.ProjectDir || clone.EvalImports != cfg.EvalImports || clone.MaxImportDepth != cfg.MaxImportDepth {
		t.Errorf("clone %+v does not match original %+v", clone, cfg)
	}
}

func TestIsPackageSpecifier(t *testing.T) {
	cases := map[string]bool{
		"npm:lodash":        true,
		"./local.js":        false,
		"/abs/path.js":      false,
		"npm:@scope/pkg/x":  true,
	}
	for spec, want := range cases {
		if got := IsPackageSpecifier(spec); got != want {
			t.Errorf("IsPackageSpecifier(%q) = %v, want %v", spec, got, want)
		}
	}
}

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

import (
	"fmt"
	"strings"
)

// ReplConfig is the engine's process-wide configuration (SPEC_FULL.md
// §10.3), read from $PROJECT_DIR/.config/jsrepl.yaml and overridable
// by --config, the same way the teacher reads CemConfig from
// .config/cem.yaml via viper.
type ReplConfig struct {
	ProjectDir string `mapstructure:"projectDir" yaml:"projectDir"`
	ConfigFile string `mapstructure:"configFile" yaml:"configFile"`

	// EvalImports recursively evaluates an unmarked imported
	// namespace rather than resolving it to undefined (spec.md §4.E).
	EvalImports bool `mapstructure:"evalImports" yaml:"evalImports"`
	// Debug surfaces caught UserRuntimeErrors and last-writer-wins
	// binding diffs instead of only logging them.
	Debug bool `mapstructure:"debug" yaml:"debug"`
	// Listen holds a bind address such as ":7717". cmd serve does not
	// read it; the server listens on the port given by --port.
	Listen string `mapstructure:"listen" yaml:"listen"`
	// MaxImportDepth bounds recursive import evaluation beyond the
	// cycle-breaking marker alone. Zero means use
	// eval.DefaultMaxImportDepth.
	MaxImportDepth int `mapstructure:"maxImportDepth" yaml:"maxImportDepth"`
	// LiftDefaultExportRestriction resolves spec.md §9's open question
	// by allowing `export default <expr>` for any expression instead
	// of raising UnsupportedError (SPEC_FULL.md §13).
	LiftDefaultExportRestriction bool `mapstructure:"liftDefaultExportRestriction" yaml:"liftDefaultExportRestriction"`
	// Watch configures the file-watching REPL loop (cmd watch).
	Watch WatchConfig `mapstructure:"watch" yaml:"watch"`
	// Verbose logging output.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

// WatchConfig configures cmd/watch.go's re-evaluate-on-change loop.
type WatchConfig struct {
	// Interactive is not consulted by cmd watch, whose keyboard-driven
	// commands (q/r/d) are always active alongside automatic
	// re-evaluation on file change.
	Interactive bool `mapstructure:"interactive" yaml:"interactive"`
}

func (c *ReplConfig) Clone() *ReplConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Validate rejects a configuration the engine cannot act on, the way
// the teacher's CemConfig.Validate rejects an unrecognized demo
// rendering mode.
func (c *ReplConfig) Validate() error {
	if c == nil {
		return nil
	}
	if c.MaxImportDepth < 0 {
		return fmt.Errorf("maxImportDepth must be >= 0, got %d", c.MaxImportDepth)
	}
	return nil
}

// IsPackageSpecifier reports whether spec names an npm package rather
// than a relative or absolute file path, matching the teacher's own
// "npm:" convention for design-token specs, reused here for
// identifying bare-specifier imports a host module might serve.
func IsPackageSpecifier(spec string) bool {
	return strings.HasPrefix(spec, "npm:")
}

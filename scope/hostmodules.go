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
	"os"
	"path"

	"github.com/dop251/goja"

	"jsrepl.dev/engine/internal/platform"
)

// StandardModules is the HostModules implementation this engine ships
// with: a small, explicitly-scoped stand-in for the handful of Node
// built-ins a REPL fragment plausibly reaches for (fs/path/os), backed
// by the same platform.FileSystem the rest of the engine uses rather
// than the real OS directly, so a fragment run against an in-memory
// workspace (tests, or a future sandboxed mode) sees consistent files.
// Any other bare specifier is left unresolved — this engine is not a
// Node.js runtime and does not attempt to vendor npm's module
// ecosystem (spec.md Non-goals).
type StandardModules struct {
	fs platform.FileSystem
}

// NewStandardModules returns a StandardModules backed by fs.
func NewStandardModules(fs platform.FileSystem) *StandardModules {
	return &StandardModules{fs: fs}
}

func (m *StandardModules) Load(rt *goja.Runtime, id string) (goja.Value, bool) {
	switch id {
	case "path":
		return m.pathModule(rt), true
	case "os":
		return m.osModule(rt), true
	case "fs":
		return m.fsModule(rt), true
	default:
		return nil, false
	}
}

func (m *StandardModules) pathModule(rt *goja.Runtime) *goja.Object {
	obj := rt.NewObject()
	_ = obj.Set("join", func(parts ...string) string { return path.Join(parts...) })
	_ = obj.Set("dirname", path.Dir)
	_ = obj.Set("basename", path.Base)
	_ = obj.Set("extname", path.Ext)
	_ = obj.Set("sep", string(os.PathSeparator))
	return obj
}

func (m *StandardModules) osModule(rt *goja.Runtime) *goja.Object {
	obj := rt.NewObject()
	_ = obj.Set("platform", func() string { return "jsrepl" })
	_ = obj.Set("env", func() map[string]string {
		env := map[string]string{}
		for _, kv := range os.Environ() {
			for i := 0; i < len(kv); i++ {
				if kv[i] == '=' {
					env[kv[:i]] = kv[i+1:]
					break
				}
			}
		}
		return env
	})
	return obj
}

func (m *StandardModules) fsModule(rt *goja.Runtime) *goja.Object {
	obj := rt.NewObject()
	_ = obj.Set("readFileSync", func(p string) (string, error) {
		b, err := m.fs.ReadFile(p)
		if err != nil {
			return "", err
		}
		return string(b), nil
	})
	_ = obj.Set("existsSync", m.fs.Exists)
	return obj
}

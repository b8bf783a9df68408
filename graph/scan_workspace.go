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

package graph

import (
	"io/fs"
	"path/filepath"

	DS "github.com/bmatcuk/doublestar/v4"

	"jsrepl.dev/engine/internal/platform"
	"jsrepl.dev/engine/resolve"
)

// ScanWorkspace walks root (via the host filesystem, same
// workspace.Glob convention the teacher uses for its own source-file
// discovery) collecting every file matching pattern (e.g.
// "**/*.{js,ts,jsx,tsx}"), honoring a .gitignore at root — reusing
// resolve.LoadIgnoreMatcher, the same matcher the Module Path
// Resolver's own node_modules walk consults, rather than loading
// .gitignore a second, independent way — and returns a ModuleInfo for
// each.
func (s *Scanner) ScanWorkspace(hostFS platform.FileSystem, root, pattern string) ([]ModuleInfo, error) {
	ignore, _ := resolve.LoadIgnoreMatcher(hostFS, root)

	var infos []ModuleInfo
	entries, err := hostFS.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var walk func(dir string, entries []fs.DirEntry) error
	walk = func(dir string, entries []fs.DirEntry) error {
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			rel, relErr := filepath.Rel(root, full)
			if relErr != nil {
				rel = full
			}
			if ignore.Ignored(rel) {
				continue
			}
			if entry.IsDir() {
				children, err := hostFS.ReadDir(full)
				if err != nil {
					continue
				}
				if err := walk(full, children); err != nil {
					return err
				}
				continue
			}
			matched, err := DS.Match(pattern, filepath.ToSlash(rel))
			if err != nil || !matched {
				continue
			}
			info, err := s.Scan(full)
			if err != nil {
				continue
			}
			infos = append(infos, info)
		}
		return nil
	}
	if err := walk(root, entries); err != nil {
		return nil, err
	}
	return infos, nil
}

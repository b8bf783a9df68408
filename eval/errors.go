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

package eval

import "fmt"

// UserRuntimeError wraps an exception thrown by user code during
// execution. It is never returned from Evaluate — the wrapper catches
// it, logs it, and the call yields an undefined result (spec.md §7) —
// but it is kept as a named type so the diagnostic it produces carries
// structure instead of a bare string.
type UserRuntimeError struct {
	Namespace string
	Cause     error
}

func (e *UserRuntimeError) Error() string {
	return fmt.Sprintf("namespace %q: user code threw: %v", e.Namespace, e.Cause)
}

func (e *UserRuntimeError) Unwrap() error { return e.Cause }

// ImportDepthExceededError guards against a runaway (or, despite cycle
// breaking, unexpectedly deep) chain of recursive import evaluation —
// SPEC_FULL.md §12.3.
type ImportDepthExceededError struct {
	Namespace string
	MaxDepth  int
}

func (e *ImportDepthExceededError) Error() string {
	return fmt.Sprintf("namespace %q: recursive import evaluation exceeded max depth %d", e.Namespace, e.MaxDepth)
}

/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

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

package cache

// ErrorKind classifies a Load failure.
type ErrorKind string

const (
	NotFound        ErrorKind = "CACHE_NOT_FOUND"
	Corrupted       ErrorKind = "CACHE_CORRUPTED"
	VersionMismatch ErrorKind = "CACHE_VERSION_MISMATCH"
	Expired         ErrorKind = "CACHE_EXPIRED"
)

// Error records why Load failed. Orchestrator treats every Kind the same
// way: discard the stale cache and start a fresh one.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Path + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Path
}

func (e *Error) Unwrap() error { return e.Err }

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

package orchestrator

// ErrorKind classifies why a Run failed outright, as opposed to a
// recoverable per-file/per-analyzer error collected into the result.
type ErrorKind string

const (
	ScanFailed     ErrorKind = "SCAN_FAILED"
	NoPackages     ErrorKind = "NO_PACKAGES"
	AnalysisFailed ErrorKind = "ANALYSIS_FAILED"
	InvalidConfig  ErrorKind = "INVALID_CONFIG"
)

// Error records why a Run failed as a Kind and an underlying Err, like
// workspace.ScanError and cache.Error but without a Path.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

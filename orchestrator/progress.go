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

// Phase is one of the four stages a run passes through, strictly in
// sequence per spec.md §5.
type Phase string

const (
	PhaseScanning  Phase = "scanning"
	PhaseParsing   Phase = "parsing"
	PhaseAnalyzing Phase = "analyzing"
	PhaseReporting Phase = "reporting"
)

// ProgressEvent reports progress within one phase. Total is zero when the
// final count isn't known in advance.
type ProgressEvent struct {
	Phase     Phase
	Current   string
	Processed int
	Total     int
}

// ProgressFunc receives ProgressEvents emitted during a Run. May be nil.
type ProgressFunc func(ProgressEvent)

func (f ProgressFunc) emit(e ProgressEvent) {
	if f != nil {
		f(e)
	}
}

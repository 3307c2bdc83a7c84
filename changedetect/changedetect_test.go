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

package changedetect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"driftscan.dev/driftscan/hashing"
	"driftscan.dev/driftscan/internal/mapfs"
)

func TestChangedReportsTrueForUnknownPath(t *testing.T) {
	d := New(mapfs.New(), hashing.New())
	changed, err := d.Changed("/ws/a.ts")
	require.NoError(t, err)
	require.True(t, changed)
}

func TestRecordThenChangedIsFalseUntilContentChanges(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/ws/a.ts", "const a = 1;", 0o644)
	d := New(fsys, hashing.New())

	_, err := d.Record("/ws/a.ts")
	require.NoError(t, err)

	changed, err := d.Changed("/ws/a.ts")
	require.NoError(t, err)
	require.False(t, changed)

	fsys.AddFile("/ws/a.ts", "const a = 2;", 0o644)
	changed, err = d.Changed("/ws/a.ts")
	require.NoError(t, err)
	require.True(t, changed)
}

func TestValidatePartitionsChangedNewAndDeleted(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/ws/a.ts", "const a = 1;", 0o644)
	fsys.AddFile("/ws/b.ts", "const b = 2;", 0o644)
	d := New(fsys, hashing.New())

	_, err := d.Record("/ws/a.ts")
	require.NoError(t, err)
	d.RecordHash("/ws/deleted.ts", "whatever")

	fsys.AddFile("/ws/a.ts", "const a = 99;", 0o644)

	result := d.Validate([]string{"/ws/a.ts", "/ws/b.ts"})
	require.Equal(t, []string{"/ws/a.ts"}, result.Changed)
	require.Equal(t, []string{"/ws/b.ts"}, result.New)
	require.Equal(t, []string{"/ws/deleted.ts"}, result.Deleted)
}

func TestClearAllRemovesEveryRecordedHash(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/ws/a.ts", "const a = 1;", 0o644)
	d := New(fsys, hashing.New())

	_, err := d.Record("/ws/a.ts")
	require.NoError(t, err)
	d.ClearAll()

	_, ok := d.Hash("/ws/a.ts")
	require.False(t, ok)
}

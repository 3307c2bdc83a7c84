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

package issue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, Info < Warning)
	assert.True(t, Warning < Error)
	assert.True(t, Error < Critical)
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Critical)
	require.NoError(t, err)
	assert.Equal(t, `"critical"`, string(data))

	var s Severity
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, Critical, s)
}

func TestSeverityAsMapKeyMarshalsToName(t *testing.T) {
	data, err := json.Marshal(map[Severity]int{Warning: 2, Error: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"warning":2,"error":1}`, string(data))
}

func TestSeverityUnmarshalRejectsUnknownName(t *testing.T) {
	var s Severity
	err := json.Unmarshal([]byte(`"bogus"`), &s)
	assert.Error(t, err)
}

func TestFilterMinSeverity(t *testing.T) {
	issues := []Issue{
		{ID: "a", Severity: Info},
		{ID: "b", Severity: Warning},
		{ID: "c", Severity: Critical},
	}

	filtered := Filter(issues, FilterOptions{MinSeverity: Warning})
	require.Len(t, filtered, 2)
	for _, i := range filtered {
		assert.GreaterOrEqual(t, i.Severity, Warning)
	}
}

func TestFilterCategories(t *testing.T) {
	issues := []Issue{
		{ID: "a", Category: Dependency},
		{ID: "b", Category: Architecture},
	}

	filtered := Filter(issues, FilterOptions{Categories: []Category{Dependency}})
	require.Len(t, filtered, 1)
	assert.Equal(t, "a", filtered[0].ID)
}

func TestSummarize(t *testing.T) {
	issues := []Issue{
		{Severity: Warning, Category: Dependency},
		{Severity: Error, Category: Dependency},
		{Severity: Warning, Category: Architecture},
	}

	s := Summarize(issues, 2, 5, 123)
	assert.Equal(t, 3, s.TotalIssues)
	assert.Equal(t, 2, s.BySeverity[Warning])
	assert.Equal(t, 1, s.BySeverity[Error])
	assert.Equal(t, 2, s.ByCategory[Dependency])
	assert.Equal(t, 2, s.PackagesAnalyzed)
	assert.Equal(t, 5, s.FilesAnalyzed)
	assert.EqualValues(t, 123, s.DurationMs)
}

func TestGroupBySeverityDescending(t *testing.T) {
	issues := []Issue{
		{Severity: Info},
		{Severity: Critical},
		{Severity: Warning},
	}
	groups := GroupIssues(issues, GroupBySeverity)
	require.Len(t, groups, 3)
	assert.Equal(t, "critical", groups[0].Key)
	assert.Equal(t, "warning", groups[1].Key)
	assert.Equal(t, "info", groups[2].Key)
}

func TestGroupByCategoryAlphabetical(t *testing.T) {
	issues := []Issue{
		{Category: Performance},
		{Category: Architecture},
		{Category: Dependency},
	}
	groups := GroupIssues(issues, GroupByCategory)
	require.Len(t, groups, 3)
	assert.Equal(t, string(Architecture), groups[0].Key)
	assert.Equal(t, string(Dependency), groups[1].Key)
	assert.Equal(t, string(Performance), groups[2].Key)
}

func TestGroupByFileCountDescending(t *testing.T) {
	issues := []Issue{
		{Location: Location{FilePath: "a.ts"}},
		{Location: Location{FilePath: "b.ts"}},
		{Location: Location{FilePath: "a.ts"}},
	}
	groups := GroupIssues(issues, GroupByFile)
	require.Len(t, groups, 2)
	assert.Equal(t, "a.ts", groups[0].Key)
	assert.Len(t, groups[0].Issues, 2)
}

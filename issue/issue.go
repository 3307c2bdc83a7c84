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

// Package issue defines the typed issue record every analyzer emits, its
// severity/category lattice, and the filter/group/summarize operations the
// orchestrator and its callers run over the resulting issue stream.
package issue

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Severity is a totally ordered enumeration; higher values are more severe.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Critical
)

// String returns the lowercase name used in configuration and output.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseSeverity parses a severity name, defaulting to Info for an unknown
// value.
func ParseSeverity(name string) Severity {
	switch name {
	case "warning":
		return Warning
	case "error":
		return Error
	case "critical":
		return Critical
	default:
		return Info
	}
}

// MarshalJSON renders the severity as its lowercase name rather than the
// underlying int, so report consumers (console/JSON/HTML serializers) and
// the on-disk analysis cache don't have to know the ordinal encoding.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// MarshalText lets Severity serialize to a readable name when used as a
// JSON object key (e.g. Summary.BySeverity), which encoding/json only
// customizes via encoding.TextMarshaler, not json.Marshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the encoding.TextUnmarshaler counterpart to MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	return s.UnmarshalJSON([]byte(`"` + string(text) + `"`))
}

// UnmarshalJSON accepts the lowercase severity names produced by
// MarshalJSON and by driftscan.yaml's minSeverity field.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("severity: %w", err)
	}
	switch name {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	case "critical":
		*s = Critical
	default:
		return fmt.Errorf("severity: unknown value %q", name)
	}
	return nil
}

// Category classifies the kind of problem an issue reports.
type Category string

const (
	Configuration  Category = "configuration"
	Dependency     Category = "dependency"
	Architecture   Category = "architecture"
	Performance    Category = "performance"
	CircularImport Category = "circular-import"
	UnusedExport   Category = "unused-export"
	TypeSafety     Category = "type-safety"
)

// Location identifies a point or span in a source file. FilePath is the
// only required field; the rest are 1-indexed and optional.
type Location struct {
	FilePath string `json:"filePath"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	EndLine  int    `json:"endLine,omitempty"`
	EndColumn int   `json:"endColumn,omitempty"`
}

// Issue is an immutable record describing one problem found by an analyzer.
type Issue struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Severity         Severity       `json:"severity"`
	Category         Category       `json:"category"`
	Location         Location       `json:"location"`
	RelatedLocations []Location     `json:"relatedLocations,omitempty"`
	Suggestion       string         `json:"suggestion,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// FilterOptions selects a subset of issues by minimum severity and/or
// category membership. A nil or empty Categories means no category filter.
type FilterOptions struct {
	MinSeverity Severity
	Categories  []Category
}

// Filter returns the issues in issues that satisfy opts, preserving order.
func Filter(issues []Issue, opts FilterOptions) []Issue {
	var categorySet map[Category]bool
	if len(opts.Categories) > 0 {
		categorySet = make(map[Category]bool, len(opts.Categories))
		for _, c := range opts.Categories {
			categorySet[c] = true
		}
	}

	out := make([]Issue, 0, len(issues))
	for _, i := range issues {
		if i.Severity < opts.MinSeverity {
			continue
		}
		if categorySet != nil && !categorySet[i.Category] {
			continue
		}
		out = append(out, i)
	}
	return out
}

// Summary aggregates counts over an issue stream.
type Summary struct {
	TotalIssues      int                  `json:"totalIssues"`
	BySeverity       map[Severity]int     `json:"bySeverity"`
	ByCategory       map[Category]int     `json:"byCategory"`
	PackagesAnalyzed int                  `json:"packagesAnalyzed"`
	FilesAnalyzed    int                  `json:"filesAnalyzed"`
	DurationMs       int64                `json:"durationMs"`
}

// Summarize computes a Summary over issues plus the package/file counts and
// elapsed duration the orchestrator tracks separately.
func Summarize(issues []Issue, packagesAnalyzed, filesAnalyzed int, durationMs int64) Summary {
	s := Summary{
		TotalIssues:      len(issues),
		BySeverity:       make(map[Severity]int),
		ByCategory:       make(map[Category]int),
		PackagesAnalyzed: packagesAnalyzed,
		FilesAnalyzed:    filesAnalyzed,
		DurationMs:       durationMs,
	}
	for _, i := range issues {
		s.BySeverity[i.Severity]++
		s.ByCategory[i.Category]++
	}
	return s
}

// GroupBy selects the key an issue is grouped under.
type GroupBy string

const (
	GroupByFile     GroupBy = "file"
	GroupByCategory GroupBy = "category"
	GroupBySeverity GroupBy = "severity"
	GroupByNone     GroupBy = "none"
)

// Group is one named bucket of issues produced by GroupIssues.
type Group struct {
	Key    string
	Issues []Issue
}

// GroupIssues buckets issues by by, sorting buckets per §4.5: severity
// groups in decreasing severity order, category groups alphabetically, file
// (and any other custom key) groups in decreasing count order.
func GroupIssues(issues []Issue, by GroupBy) []Group {
	if by == GroupByNone || by == "" {
		if len(issues) == 0 {
			return nil
		}
		return []Group{{Key: "", Issues: issues}}
	}

	buckets := make(map[string][]Issue)
	var keys []string
	keyOf := func(i Issue) string {
		switch by {
		case GroupByFile:
			return i.Location.FilePath
		case GroupByCategory:
			return string(i.Category)
		case GroupBySeverity:
			return i.Severity.String()
		default:
			return ""
		}
	}
	for _, i := range issues {
		k := keyOf(i)
		if _, seen := buckets[k]; !seen {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], i)
	}

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, Group{Key: k, Issues: buckets[k]})
	}

	switch by {
	case GroupBySeverity:
		sort.Slice(groups, func(a, b int) bool {
			return ParseSeverity(groups[a].Key) > ParseSeverity(groups[b].Key)
		})
	case GroupByCategory:
		sort.Slice(groups, func(a, b int) bool { return groups[a].Key < groups[b].Key })
	default:
		sort.Slice(groups, func(a, b int) bool {
			if len(groups[a].Issues) != len(groups[b].Issues) {
				return len(groups[a].Issues) > len(groups[b].Issues)
			}
			return groups[a].Key < groups[b].Key
		})
	}
	return groups
}

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

// Package analyzers implements the built-in rule suite: configuration,
// dependency, architecture, and performance checks over an
// analyzer.Context, per the rule contracts in spec §4.7.
package analyzers

import (
	"path/filepath"
	"strings"

	"driftscan.dev/driftscan/issue"
	"driftscan.dev/driftscan/workspace"
)

// relPath returns path relative to root, falling back to path unchanged
// when it isn't under root.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// boolOption reads a bool rule option, defaulting when absent or the wrong
// type.
func boolOption(opts map[string]any, key string, def bool) bool {
	if opts == nil {
		return def
	}
	if v, ok := opts[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// intOption reads an int rule option, defaulting when absent or the wrong
// type. JSON/YAML-decoded numbers may arrive as int, int64, or float64.
func intOption(opts map[string]any, key string, def int) int {
	if opts == nil {
		return def
	}
	switch v := opts[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// floatOption reads a float rule option, defaulting when absent or the
// wrong type.
func floatOption(opts map[string]any, key string, def float64) float64 {
	if opts == nil {
		return def
	}
	switch v := opts[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// stringSliceOption reads a []string rule option, defaulting when absent.
func stringSliceOption(opts map[string]any, key string) []string {
	if opts == nil {
		return nil
	}
	raw, ok := opts[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// stringOption reads a string rule option, defaulting when absent or the
// wrong type.
func stringOption(opts map[string]any, key, def string) string {
	if opts == nil {
		return def
	}
	if v, ok := opts[key].(string); ok {
		return v
	}
	return def
}

// severityOption reads a severity-name rule option (e.g. "error",
// "warning"), defaulting when absent or unset.
func severityOption(opts map[string]any, key string, def issue.Severity) issue.Severity {
	v := stringOption(opts, key, "")
	if v == "" {
		return def
	}
	return issue.ParseSeverity(v)
}

// exemptSet builds a lookup set from a rule's "exemptions"/"ignore" style
// string-slice option.
func exemptSet(opts map[string]any, key string) map[string]bool {
	set := make(map[string]bool)
	for _, v := range stringSliceOption(opts, key) {
		set[v] = true
	}
	return set
}

// isTestFilePath reports whether a file path looks like a test file, by
// the same convention the scanner uses to exclude them.
func isTestFilePath(path string) bool {
	base := filepath.Base(path)
	return strings.Contains(base, ".test.") || strings.Contains(base, ".spec.")
}

// packageByFile returns the workspace package that owns filePath, matched
// by path prefix on a directory-separator boundary (so "packages/core-utils"
// never matches as a child of "packages/core"), or nil if none does.
func packageByFile(packages []workspace.Package, filePath string) *workspace.Package {
	var best *workspace.Package
	for i := range packages {
		p := &packages[i]
		if filePath == p.PackagePath || strings.HasPrefix(filePath, p.PackagePath+string(filepath.Separator)) {
			if best == nil || len(p.PackagePath) > len(best.PackagePath) {
				best = p
			}
		}
	}
	return best
}

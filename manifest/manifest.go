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

// Package manifest parses the subset of package.json relevant to workspace
// analysis: identity, dependency maps, and the exports/types surface that
// several analyzer rules cross-check against the files on disk.
package manifest

import (
	"encoding/json"
	"errors"
	"strings"

	"driftscan.dev/driftscan/fs"
)

// workspacesObjectFormat is the object form of the workspaces field used by
// yarn classic with nohoist: {"packages": [...], "nohoist": [...]}.
type workspacesObjectFormat struct {
	Packages []string `json:"packages"`
}

// ErrNotExported is returned when a subpath is not exported by the manifest.
var ErrNotExported = errors.New("manifest: not exported")

// DefaultConditions is the export condition priority used when none is
// supplied.
var DefaultConditions = []string{"browser", "import", "default"}

// ResolveOptions configures conditional exports resolution.
type ResolveOptions struct {
	Conditions []string
}

// Manifest is the subset of package.json the analyzers need.
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Main            string            `json:"main,omitempty"`
	Module          string            `json:"module,omitempty"`
	Type            string            `json:"type,omitempty"`
	Types           string            `json:"types,omitempty"`
	Exports         any               `json:"exports,omitempty"`
	Imports         any               `json:"imports,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	PeerDependencies map[string]string `json:"peerDependencies,omitempty"`
	RawWorkspaces   json.RawMessage   `json:"workspaces,omitempty"`
}

// WorkspacePatterns returns the workspace glob patterns declared by the
// manifest, handling both the array form and the object form.
func (m *Manifest) WorkspacePatterns() []string {
	if len(m.RawWorkspaces) == 0 {
		return nil
	}
	var patterns []string
	if err := json.Unmarshal(m.RawWorkspaces, &patterns); err == nil {
		return patterns
	}
	var obj workspacesObjectFormat
	if err := json.Unmarshal(m.RawWorkspaces, &obj); err == nil {
		return obj.Packages
	}
	return nil
}

// HasWorkspaces reports whether the manifest declares any workspace
// patterns.
func (m *Manifest) HasWorkspaces() bool {
	return len(m.WorkspacePatterns()) > 0
}

// ExportEntry is a single resolved export from a manifest.
type ExportEntry struct {
	Subpath string
	Target  string
}

// WildcardExport is a wildcard export pattern and its target prefix.
type WildcardExport struct {
	Pattern string
	Target  string
}

// Parse parses package.json data.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseFile reads and parses a package.json file through the given
// filesystem.
func ParseFile(filesystem fs.FileSystem, path string) (*Manifest, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// ResolveExport resolves subpath ("." for the main entry, "./sub" for
// subpath exports) to a target file path, falling back to main when there
// is no exports field. Pass nil opts to use DefaultConditions.
func (m *Manifest) ResolveExport(subpath string, opts *ResolveOptions) (string, error) {
	if m.Exports == nil {
		if m.Main != "" {
			if subpath == "." {
				return trimDotSlash(m.Main), nil
			}
			return "", ErrNotExported
		}
		return "", ErrNotExported
	}

	if exportStr, ok := m.Exports.(string); ok {
		if subpath == "." {
			return trimDotSlash(exportStr), nil
		}
		return "", ErrNotExported
	}

	exportsMap, ok := m.Exports.(map[string]any)
	if !ok {
		return "", ErrNotExported
	}

	if !hasSubpathKeys(exportsMap) {
		if subpath == "." {
			return resolveConditions(exportsMap, opts)
		}
		return "", ErrNotExported
	}

	exportValue, ok := exportsMap[subpath]
	if !ok {
		return "", ErrNotExported
	}
	return resolveExportValue(exportValue, opts)
}

// ExportEntries returns every non-wildcard export entry declared by the
// manifest. Pass nil opts to use DefaultConditions.
func (m *Manifest) ExportEntries(opts *ResolveOptions) []ExportEntry {
	var entries []ExportEntry

	if m.Exports == nil {
		if m.Main != "" {
			entries = append(entries, ExportEntry{Subpath: ".", Target: trimDotSlash(m.Main)})
		}
		return entries
	}

	if exportStr, ok := m.Exports.(string); ok {
		entries = append(entries, ExportEntry{Subpath: ".", Target: trimDotSlash(exportStr)})
		return entries
	}

	exportsMap, ok := m.Exports.(map[string]any)
	if !ok {
		return entries
	}

	if !hasSubpathKeys(exportsMap) {
		if resolved, err := resolveConditions(exportsMap, opts); err == nil {
			entries = append(entries, ExportEntry{Subpath: ".", Target: resolved})
		}
		return entries
	}

	for subpath, exportValue := range exportsMap {
		if strings.Contains(subpath, "*") {
			continue
		}
		resolved, err := resolveExportValue(exportValue, opts)
		if err != nil {
			continue
		}
		entries = append(entries, ExportEntry{Subpath: subpath, Target: resolved})
	}
	return entries
}

// WildcardExports returns every wildcard export pattern declared by the
// manifest. Pass nil opts to use DefaultConditions.
func (m *Manifest) WildcardExports(opts *ResolveOptions) []WildcardExport {
	var wildcards []WildcardExport

	exportsMap, ok := m.Exports.(map[string]any)
	if !ok {
		return wildcards
	}

	for pattern, targetValue := range exportsMap {
		if !strings.Contains(pattern, "*") {
			continue
		}
		targetStr := resolveWildcardTarget(targetValue, opts)
		if targetStr == "" || !strings.Contains(targetStr, "*") {
			continue
		}
		target := trimDotSlash(targetStr)
		idx := strings.Index(target, "*")
		wildcards = append(wildcards, WildcardExport{Pattern: pattern, Target: target[:idx]})
	}
	return wildcards
}

func hasSubpathKeys(exportsMap map[string]any) bool {
	for key := range exportsMap {
		if strings.HasPrefix(key, ".") {
			return true
		}
	}
	return false
}

func resolveWildcardTarget(value any, opts *ResolveOptions) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		if result, err := resolveConditions(v, opts); err == nil {
			return result
		}
	case []any:
		for _, item := range v {
			if result := resolveWildcardTarget(item, opts); result != "" {
				return result
			}
		}
	}
	return ""
}

func resolveExportValue(value any, opts *ResolveOptions) (string, error) {
	switch v := value.(type) {
	case string:
		return trimDotSlash(v), nil
	case map[string]any:
		return resolveConditions(v, opts)
	}
	return "", ErrNotExported
}

func resolveConditions(conditions map[string]any, opts *ResolveOptions) (string, error) {
	conditionList := DefaultConditions
	if opts != nil && len(opts.Conditions) > 0 {
		conditionList = opts.Conditions
	}
	for _, cond := range conditionList {
		value, ok := conditions[cond]
		if !ok {
			continue
		}
		if valueMap, ok := value.(map[string]any); ok {
			if result, err := resolveConditions(valueMap, opts); err == nil {
				return result, nil
			}
			continue
		}
		if valueStr, ok := value.(string); ok {
			return trimDotSlash(valueStr), nil
		}
	}
	return "", ErrNotExported
}

func trimDotSlash(path string) string {
	return strings.TrimPrefix(path, "./")
}

// AllDependencyNames returns the union of dependency, devDependency, and
// peerDependency keys, deduplicated.
func (m *Manifest) AllDependencyNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(deps map[string]string) {
		for name := range deps {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	add(m.Dependencies)
	add(m.DevDependencies)
	add(m.PeerDependencies)
	return names
}

// IsWorkspaceProtocol reports whether a dependency version specifier refers
// to another package in the same workspace rather than a registry version
// (e.g. "workspace:*", "workspace:^1.0.0", or a "file:"/"link:" specifier).
func IsWorkspaceProtocol(versionSpecifier string) bool {
	return strings.HasPrefix(versionSpecifier, "workspace:") ||
		strings.HasPrefix(versionSpecifier, "file:") ||
		strings.HasPrefix(versionSpecifier, "link:") ||
		strings.HasPrefix(versionSpecifier, "*")
}

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

package analyzers

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/issue"
)

// ArchitecturalID is the rule id for the architectural-layers analyzer.
const ArchitecturalID = "architectural"

// layerPattern maps one glob pattern to a layer name. First-match wins, in
// declaration order.
type layerPattern struct {
	Pattern string
	Layer   string
}

// layerDef is one named layer and the set of layers it may depend on.
type layerDef struct {
	Name                string
	AllowedDependencies map[string]bool
}

// ArchitecturalAnalyzer flags dependency edges that cross from one
// configured layer into a layer not listed in its allowedDependencies. With
// no "layers" configured the rule is a no-op.
type ArchitecturalAnalyzer struct{}

func (ArchitecturalAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              ArchitecturalID,
		Name:            "Architectural Layers",
		Description:     "Flags dependency edges that violate a configured layer architecture",
		Categories:      []issue.Category{issue.Architecture},
		DefaultSeverity: issue.Error,
	}
}

func parseLayerConfig(arch map[string]any) ([]layerDef, []layerPattern) {
	var layers []layerDef
	var patterns []layerPattern
	if arch == nil {
		return layers, patterns
	}

	rawLayers, _ := arch["layers"].([]any)
	for _, rl := range rawLayers {
		m, ok := rl.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		if name == "" {
			continue
		}
		allowed := map[string]bool{}
		for _, d := range toAnySlice(m["allowedDependencies"]) {
			if s, ok := d.(string); ok {
				allowed[s] = true
			}
		}
		layers = append(layers, layerDef{Name: name, AllowedDependencies: allowed})

		for _, p := range toAnySlice(m["patterns"]) {
			if s, ok := p.(string); ok {
				patterns = append(patterns, layerPattern{Pattern: s, Layer: name})
			}
		}
	}

	for _, p := range toAnySlice(arch["patterns"]) {
		m, ok := p.(map[string]any)
		if !ok {
			continue
		}
		pattern, _ := m["pattern"].(string)
		layer, _ := m["layer"].(string)
		if pattern != "" && layer != "" {
			patterns = append(patterns, layerPattern{Pattern: pattern, Layer: layer})
		}
	}

	return layers, patterns
}

func toAnySlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// layerOf returns the layer of the first pattern to match relPath, or "" if
// none do.
func layerOf(patterns []layerPattern, relPath string) string {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p.Pattern, relPath); ok {
			return p.Layer
		}
	}
	return ""
}

func (a ArchitecturalAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	layers, patterns := parseLayerConfig(actx.Architecture)
	if len(layers) == 0 || actx.Graph == nil {
		return nil, nil
	}
	allowedOf := make(map[string]map[string]bool, len(layers))
	for _, l := range layers {
		allowedOf[l.Name] = l.AllowedDependencies
	}
	exempt := exemptSet(actx.Options, "exemptions")

	var issues []issue.Issue
	for _, edge := range actx.Graph.Edges() {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		fromNode := actx.Graph.Node(edge.From)
		toNode := actx.Graph.Node(edge.To)
		if fromNode == nil || toNode == nil || toNode.IsExternal {
			continue
		}

		fromLayer := layerOf(patterns, relPath(actx.WorkspacePath, fromNode.FilePath))
		toLayer := layerOf(patterns, relPath(actx.WorkspacePath, toNode.FilePath))
		if fromLayer == "" || toLayer == "" || fromLayer == toLayer {
			continue
		}
		if exempt[fromNode.FilePath] {
			continue
		}

		allowed, ok := allowedOf[fromLayer]
		if ok && allowed[toLayer] {
			continue
		}

		issues = append(issues, issue.Issue{
			ID:          ArchitecturalID + "/layer-violation",
			Title:       "Layer violation: " + fromLayer + " -> " + toLayer,
			Description: relPath(actx.WorkspacePath, fromNode.FilePath) + " (layer " + fromLayer + ") imports " + relPath(actx.WorkspacePath, toNode.FilePath) + " (layer " + toLayer + "), which isn't in " + fromLayer + "'s allowedDependencies.",
			Severity:    issue.Error,
			Category:    issue.Architecture,
			Location:    issue.Location{FilePath: fromNode.FilePath},
			RelatedLocations: []issue.Location{
				{FilePath: toNode.FilePath},
			},
			Metadata: map[string]any{"fromLayer": fromLayer, "toLayer": toLayer},
		})
	}
	return issues, nil
}

// BarrelExportID is the rule id for the barrel-export sub-rule.
const BarrelExportID = "barrel-export"

// BarrelExportAnalyzer flags index files that re-export from deep relative
// paths outside their own directory, a common cause of accidental layer
// leakage through a barrel.
type BarrelExportAnalyzer struct{}

func (BarrelExportAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              BarrelExportID,
		Name:            "Barrel Export Restriction",
		Description:     "Flags barrel (index) files re-exporting from outside their own directory",
		Categories:      []issue.Category{issue.Architecture},
		DefaultSeverity: issue.Warning,
	}
}

func (a BarrelExportAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	exempt := exemptSet(actx.Options, "exemptions")
	var issues []issue.Issue
	for path, extracted := range actx.Extracted {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		base := filepath.Base(path)
		if !strings.HasPrefix(base, "index.") || exempt[path] {
			continue
		}
		dir := filepath.Dir(path)
		for _, rel := range extracted.RelativeImports {
			target := filepath.Clean(filepath.Join(dir, rel))
			if strings.HasPrefix(target, "..") || !strings.HasPrefix(target, dir) {
				issues = append(issues, issue.Issue{
					ID:          BarrelExportID + "/outside-directory",
					Title:       "Barrel re-export reaches outside its directory",
					Description: base + " re-exports " + rel + ", which resolves outside its own directory.",
					Severity:    issue.Warning,
					Category:    issue.Architecture,
					Location:    issue.Location{FilePath: path},
					Metadata:    map[string]any{"specifier": rel},
				})
			}
		}
	}
	return issues, nil
}

// PathAliasID is the rule id for the path-alias-consistency sub-rule.
const PathAliasID = "path-alias-consistency"

// PathAliasAnalyzer flags a relative import whose specifier climbs more than
// maxTraversalDepth (default 2) directories via "../" segments. Configured
// path aliases are not read; every import over the depth is flagged.
type PathAliasAnalyzer struct{}

func (PathAliasAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              PathAliasID,
		Name:            "Path Alias Consistency",
		Description:     "Flags deep relative imports that should use a configured alias instead",
		Categories:      []issue.Category{issue.Architecture},
		DefaultSeverity: issue.Info,
	}
}

func (a PathAliasAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	maxDepth := intOption(actx.Options, "maxTraversalDepth", 2)
	exempt := exemptSet(actx.Options, "exemptions")

	var issues []issue.Issue
	for path, extracted := range actx.Extracted {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if exempt[path] {
			continue
		}
		for _, rel := range extracted.RelativeImports {
			depth := strings.Count(rel, "../")
			if depth > maxDepth {
				issues = append(issues, issue.Issue{
					ID:          PathAliasID + "/deep-traversal",
					Title:       "Deep relative import",
					Description: path + " imports " + rel + ", which traverses " + strconv.Itoa(depth) + " directories up, more than the configured maximum of " + strconv.Itoa(maxDepth) + ".",
					Severity:    issue.Info,
					Category:    issue.Architecture,
					Location:    issue.Location{FilePath: path},
					Suggestion:  "Configure a path alias for this target instead of a deep relative import.",
					Metadata:    map[string]any{"specifier": rel, "depth": depth},
				})
			}
		}
	}
	return issues, nil
}

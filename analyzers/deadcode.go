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
	"strconv"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/issue"
)

// DeadExportID is the rule id for the dead-export analyzer.
const DeadExportID = "dead-export"

// DeadExportAnalyzer flags a non-relative, non-entry-point workspace file
// with zero ImportedBy edges: nothing in the graph reaches it, so unless it
// is itself one of the package's declared entry points it is unreachable
// from any declared entry point.
type DeadExportAnalyzer struct{}

func (DeadExportAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              DeadExportID,
		Name:            "Dead Export",
		Description:     "Flags workspace source files unreachable from any declared package entry point",
		Categories:      []issue.Category{issue.UnusedExport},
		DefaultSeverity: issue.Info,
	}
}

func (a DeadExportAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	if actx.Graph == nil {
		return nil, nil
	}
	exempt := exemptSet(actx.Options, "exemptions")

	entryPoints := map[string]bool{}
	for _, pkg := range actx.Packages {
		for _, entry := range pkg.PackageJSON.ExportEntries(nil) {
			entryPoints[relPath(pkg.PackagePath, entry.Target)] = true
		}
		if pkg.PackageJSON.Main != "" {
			entryPoints[pkg.PackageJSON.Main] = true
		}
	}

	var issues []issue.Issue
	for _, node := range actx.Graph.Nodes() {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if node.IsExternal || exempt[node.FilePath] || isTestFilePath(node.FilePath) {
			continue
		}
		if len(node.ImportedBy) > 0 {
			continue
		}
		pkg := packageByFile(actx.Packages, node.FilePath)
		if pkg == nil {
			continue
		}
		rel := relPath(pkg.PackagePath, node.FilePath)
		if entryPoints[rel] || isIndexFile(rel) {
			continue
		}
		issues = append(issues, issue.Issue{
			ID:          DeadExportID + "/unreachable",
			Title:       "Source file unreachable from any entry point",
			Description: relPath(actx.WorkspacePath, node.FilePath) + " is never imported by another file in the workspace.",
			Severity:    issue.Info,
			Category:    issue.UnusedExport,
			Location:    issue.Location{FilePath: node.FilePath},
		})
	}
	return issues, nil
}

func isIndexFile(relPath string) bool {
	base := relPath
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	return len(base) >= 5 && base[:5] == "index"
}

// LargeDependencyID is the rule id for the large-dependency analyzer.
const LargeDependencyID = "large-dependency"

// LargeDependencyAnalyzer flags a declared dependency present in the
// known-large-package table whose approximate size is at least thresholdKB
// (default 100), surfacing its footprint so authors can weigh it against
// alternatives or a dynamic-import split.
type LargeDependencyAnalyzer struct{}

func (LargeDependencyAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              LargeDependencyID,
		Name:            "Large Dependency",
		Description:     "Flags declared dependencies known to have a large bundle footprint",
		Categories:      []issue.Category{issue.Performance},
		DefaultSeverity: issue.Info,
	}
}

func (a LargeDependencyAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	exempt := exemptSet(actx.Options, "exemptions")
	thresholdKB := intOption(actx.Options, "thresholdKB", 100)

	var issues []issue.Issue
	for _, pkg := range actx.Packages {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		for name := range pkg.PackageJSON.Dependencies {
			if exempt[name] {
				continue
			}
			size, ok := LargePackageSizeKB(name)
			if !ok || size < thresholdKB {
				continue
			}
			issues = append(issues, issue.Issue{
				ID:          LargeDependencyID + "/" + name,
				Title:       "Large dependency: " + name,
				Description: pkg.Name + " depends on " + name + ", approximately " + strconv.Itoa(size) + "KB minified+gzipped.",
				Severity:    issue.Info,
				Category:    issue.Performance,
				Location:    issue.Location{FilePath: pkg.PackageJSONPath},
				Metadata:    map[string]any{"dependency": name, "approxSizeKB": size},
			})
		}
	}
	return issues, nil
}

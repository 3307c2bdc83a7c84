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
	"sort"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/issue"
	"driftscan.dev/driftscan/manifest"
)

// UnusedDependencyID is the rule id for the unused-dependency analyzer.
const UnusedDependencyID = "unused-dependency"

// defaultBuildToolAllowList names packages commonly declared as
// dependencies but imported only through build tooling or scripts rather
// than application source, so they're never flagged as unused even with
// no user-supplied exemption.
var defaultBuildToolAllowList = map[string]bool{
	"typescript":  true,
	"eslint":      true,
	"prettier":    true,
	"jest":        true,
	"vitest":      true,
	"rollup":      true,
	"webpack":     true,
	"vite":        true,
	"babel":       true,
	"tsx":         true,
	"tsup":        true,
	"esbuild":     true,
	"husky":       true,
	"lint-staged": true,
}

// UnusedDependencyAnalyzer flags package.json dependencies that no source
// file in the owning package actually imports, the converse of the
// missing-dependency checks: a declared dependency with zero importers is
// dead weight a consumer pays to install regardless. devDependencies are
// only checked when the "checkDevDependencies" option is true.
type UnusedDependencyAnalyzer struct{}

func (UnusedDependencyAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              UnusedDependencyID,
		Name:            "Unused Dependency",
		Description:     "Flags declared dependencies with no importing source file",
		Categories:      []issue.Category{issue.Dependency},
		DefaultSeverity: issue.Warning,
	}
}

func (a UnusedDependencyAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	exempt := exemptSet(actx.Options, "exemptions")
	checkDev := boolOption(actx.Options, "checkDevDependencies", false)

	var issues []issue.Issue
	for _, pkg := range actx.Packages {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		declared := pkg.PackageJSON.Dependencies
		if checkDev && len(pkg.PackageJSON.DevDependencies) > 0 {
			merged := make(map[string]string, len(declared)+len(pkg.PackageJSON.DevDependencies))
			for name, version := range declared {
				merged[name] = version
			}
			for name, version := range pkg.PackageJSON.DevDependencies {
				merged[name] = version
			}
			declared = merged
		}
		if len(declared) == 0 {
			continue
		}

		used := map[string]bool{}
		usedWorkspace := map[string]bool{}
		for _, file := range pkg.SourceFiles {
			extracted, ok := actx.Extracted[file]
			if !ok {
				continue
			}
			for _, dep := range extracted.ExternalDependencies {
				used[dep] = true
			}
			for _, dep := range extracted.WorkspaceDependencies {
				usedWorkspace[dep] = true
			}
		}

		var names []string
		for name := range declared {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if exempt[name] || defaultBuildToolAllowList[name] || used[name] {
				continue
			}
			if manifest.IsWorkspaceProtocol(declared[name]) && usedWorkspace[name] {
				continue
			}
			issues = append(issues, issue.Issue{
				ID:          UnusedDependencyID + "/" + name,
				Title:       "Unused dependency: " + name,
				Description: pkg.Name + " declares " + name + " as a dependency but no source file imports it.",
				Severity:    issue.Warning,
				Category:    issue.Dependency,
				Location:    issue.Location{FilePath: pkg.PackageJSONPath},
				Metadata:    map[string]any{"dependency": name},
			})
		}
	}
	return issues, nil
}

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
	"strings"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/issue"
)

// PackageBoundaryID is the rule id for the package-boundary sub-rule.
const PackageBoundaryID = "package-boundary"

// PackageBoundaryAnalyzer flags a relative import that reaches from one
// workspace package's source tree into another's, bypassing its declared
// package entry point entirely.
type PackageBoundaryAnalyzer struct{}

func (PackageBoundaryAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              PackageBoundaryID,
		Name:            "Package Boundary",
		Description:     "Flags relative imports that reach into another workspace package's internals",
		Categories:      []issue.Category{issue.Architecture},
		DefaultSeverity: issue.Error,
	}
}

func (a PackageBoundaryAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	exempt := exemptSet(actx.Options, "exemptions")

	var issues []issue.Issue
	if actx.Graph == nil {
		return nil, nil
	}
	for _, node := range actx.Graph.Nodes() {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if node.IsExternal || exempt[node.FilePath] {
			continue
		}
		ownerPkg := packageByFile(actx.Packages, node.FilePath)
		if ownerPkg == nil {
			continue
		}
		for _, depID := range node.Imports {
			depNode := actx.Graph.Node(depID)
			if depNode == nil || depNode.IsExternal {
				continue
			}
			depPkg := packageByFile(actx.Packages, depNode.FilePath)
			if depPkg == nil || depPkg.Name == ownerPkg.Name {
				continue
			}
			if strings.HasPrefix(depNode.FilePath, depPkg.SrcPath) {
				issues = append(issues, issue.Issue{
					ID:          PackageBoundaryID + "/cross-package-reach",
					Title:       "Cross-package import bypasses package entry point",
					Description: relPath(actx.WorkspacePath, node.FilePath) + " in " + ownerPkg.Name + " imports " + relPath(actx.WorkspacePath, depNode.FilePath) + " directly from " + depPkg.Name + "'s source tree instead of its published entry point.",
					Severity:    issue.Error,
					Category:    issue.Architecture,
					Location:    issue.Location{FilePath: node.FilePath},
					RelatedLocations: []issue.Location{
						{FilePath: depNode.FilePath},
					},
					Metadata: map[string]any{"fromPackage": ownerPkg.Name, "toPackage": depPkg.Name},
				})
			}
		}
	}
	return issues, nil
}

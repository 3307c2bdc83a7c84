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

// PublicAPIID is the rule id for the public-API-enforcement sub-rule.
const PublicAPIID = "public-api"

// PublicAPIAnalyzer flags a cross-package import that targets a file path
// containing a configured "internal" segment (e.g. "/internal/" or
// "/private/"), enforcing that only a package's declared entry points are
// consumed by the rest of the workspace.
type PublicAPIAnalyzer struct{}

func (PublicAPIAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              PublicAPIID,
		Name:            "Public API Enforcement",
		Description:     "Flags cross-package imports reaching into a package's internal directories",
		Categories:      []issue.Category{issue.Architecture},
		DefaultSeverity: issue.Error,
	}
}

var defaultInternalSegments = []string{"/internal/", "/private/", "/_internal/"}

func (a PublicAPIAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	segments := stringSliceOption(actx.Options, "internalSegments")
	if len(segments) == 0 {
		segments = defaultInternalSegments
	}
	exempt := exemptSet(actx.Options, "exemptions")

	if actx.Graph == nil {
		return nil, nil
	}

	var issues []issue.Issue
	for _, node := range actx.Graph.Nodes() {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if node.IsExternal || exempt[node.FilePath] {
			continue
		}
		ownerPkg := packageByFile(actx.Packages, node.FilePath)

		for _, depID := range node.Imports {
			depNode := actx.Graph.Node(depID)
			if depNode == nil || depNode.IsExternal {
				continue
			}
			depPkg := packageByFile(actx.Packages, depNode.FilePath)
			if depPkg == nil || (ownerPkg != nil && depPkg.Name == ownerPkg.Name) {
				continue
			}
			normalized := "/" + strings.ReplaceAll(relPath(depPkg.PackagePath, depNode.FilePath), "\\", "/")
			if !containsAny(normalized, segments) {
				continue
			}
			issues = append(issues, issue.Issue{
				ID:          PublicAPIID + "/internal-reach",
				Title:       "Import reaches into another package's internal directory",
				Description: relPath(actx.WorkspacePath, node.FilePath) + " imports " + relPath(actx.WorkspacePath, depNode.FilePath) + ", which " + depPkg.Name + " marks internal.",
				Severity:    issue.Error,
				Category:    issue.Architecture,
				Location:    issue.Location{FilePath: node.FilePath},
				RelatedLocations: []issue.Location{
					{FilePath: depNode.FilePath},
				},
				Metadata: map[string]any{"targetPackage": depPkg.Name},
			})
		}
	}
	return issues, nil
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

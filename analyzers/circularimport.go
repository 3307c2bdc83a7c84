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
	"strings"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/depgraph"
	"driftscan.dev/driftscan/issue"
)

// CircularImportID is the rule id for the circular-import analyzer.
const CircularImportID = "circular-import"

// CircularImportAnalyzer flags import cycles discovered in the dependency
// graph, excluding cycles entirely among test files unless includeTests is
// set.
type CircularImportAnalyzer struct{}

func (CircularImportAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              CircularImportID,
		Name:            "Circular Import",
		Description:     "Flags import cycles among workspace source files",
		Categories:      []issue.Category{issue.CircularImport},
		DefaultSeverity: issue.Error,
	}
}

func (a CircularImportAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	if actx.Graph == nil {
		return nil, nil
	}
	includeTests := boolOption(actx.Options, "includeTests", false)
	maxLength := intOption(actx.Options, "maxCycleLength", 0)
	directSeverity := severityOption(actx.Options, "directSeverity", issue.Error)
	transitiveSeverity := severityOption(actx.Options, "transitiveSeverity", issue.Error)

	cycles := actx.Graph.FindCycles(maxLength)

	var issues []issue.Issue
	for _, cycle := range cycles {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if !includeTests && allTestNodes(actx.Graph, cycle.Nodes) {
			continue
		}

		var related []issue.Location
		for _, id := range cycle.Nodes {
			if n := actx.Graph.Node(id); n != nil {
				related = append(related, issue.Location{FilePath: n.FilePath})
			}
		}
		if len(related) == 0 {
			continue
		}

		severity := transitiveSeverity
		if len(cycle.Nodes) == 2 {
			severity = directSeverity
		}

		issues = append(issues, issue.Issue{
			ID:               CircularImportID + "/" + cycle.Nodes[0],
			Title:            "Circular import detected",
			Description:      "A cycle of " + strconv.Itoa(len(cycle.Nodes)) + " files imports back to itself: " + strings.Join(cycle.Nodes, " -> ") + " -> " + cycle.Nodes[0] + ".",
			Severity:         severity,
			Category:         issue.CircularImport,
			Location:         related[0],
			RelatedLocations: related,
			Metadata:         map[string]any{"cycle": cycle.Nodes},
		})
	}
	return issues, nil
}

func allTestNodes(g *depgraph.Graph, ids []string) bool {
	for _, id := range ids {
		n := g.Node(id)
		if n == nil || !depgraph.IsTestNode(n) {
			return false
		}
	}
	return true
}

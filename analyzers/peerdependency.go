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

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/issue"
)

// PeerDependencyID is the rule id for the peer-dependency analyzer.
const PeerDependencyID = "peer-dependency"

// PeerDependencyAnalyzer flags each peerDependency a package declares that
// the same package does not also list in its dependencies or
// devDependencies. Imports are not inspected, and peerDependenciesMeta is
// not read.
type PeerDependencyAnalyzer struct{}

func (PeerDependencyAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              PeerDependencyID,
		Name:            "Peer Dependency",
		Description:     "Flags undeclared or unsatisfied peer dependencies across workspace packages",
		Categories:      []issue.Category{issue.Dependency},
		DefaultSeverity: issue.Warning,
	}
}

func (a PeerDependencyAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	exempt := exemptSet(actx.Options, "exemptions")

	var issues []issue.Issue
	for _, pkg := range actx.Packages {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if len(pkg.PackageJSON.PeerDependencies) == 0 {
			continue
		}
		for name := range pkg.PackageJSON.PeerDependencies {
			if exempt[name] {
				continue
			}
			_, inDeps := pkg.PackageJSON.Dependencies[name]
			_, inDevDeps := pkg.PackageJSON.DevDependencies[name]
			if inDeps || inDevDeps {
				continue
			}
			issues = append(issues, issue.Issue{
				ID:          PeerDependencyID + "/" + pkg.Name + "/" + name,
				Title:       "Peer dependency not installed for local development",
				Description: pkg.Name + " declares " + name + " as a peerDependency but not as a devDependency, so it isn't available while developing or testing the package in this workspace.",
				Severity:    issue.Warning,
				Category:    issue.Dependency,
				Location:    issue.Location{FilePath: pkg.PackageJSONPath},
				Suggestion:  "Add " + name + " to devDependencies as well.",
				Metadata:    map[string]any{"peer": name},
			})
		}
	}
	return issues, nil
}

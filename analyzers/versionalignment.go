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
	"strings"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/issue"
	"driftscan.dev/driftscan/manifest"
)

// VersionAlignmentID is the rule id for the version-alignment analyzer.
const VersionAlignmentID = "version-alignment"

// VersionAlignmentAnalyzer flags a dependency declared at differing
// version specifiers across packages in the workspace.
type VersionAlignmentAnalyzer struct{}

func (VersionAlignmentAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              VersionAlignmentID,
		Name:            "Version Alignment",
		Description:     "Flags a dependency declared at differing versions across workspace packages",
		Categories:      []issue.Category{issue.Dependency},
		DefaultSeverity: issue.Warning,
	}
}

type versionSite struct {
	pkgName string
	pkgPath string
	version string
}

func (a VersionAlignmentAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	exempt := exemptSet(actx.Options, "exemptions")

	byDep := map[string][]versionSite{}
	for _, pkg := range actx.Packages {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		for name, version := range pkg.PackageJSON.Dependencies {
			if exempt[name] || manifest.IsWorkspaceProtocol(version) {
				continue
			}
			byDep[name] = append(byDep[name], versionSite{pkg.Name, pkg.PackageJSONPath, version})
		}
	}

	var depNames []string
	for name := range byDep {
		depNames = append(depNames, name)
	}
	sort.Strings(depNames)

	var issues []issue.Issue
	for _, name := range depNames {
		sites := byDep[name]
		versions := map[string]bool{}
		for _, s := range sites {
			versions[s.version] = true
		}
		if len(versions) <= 1 {
			continue
		}

		sort.Slice(sites, func(i, j int) bool { return sites[i].pkgName < sites[j].pkgName })

		var related []issue.Location
		distinctVersions := make([]string, 0, len(versions))
		for v := range versions {
			distinctVersions = append(distinctVersions, v)
		}
		sort.Strings(distinctVersions)
		for _, s := range sites {
			related = append(related, issue.Location{FilePath: s.pkgPath})
		}

		issues = append(issues, issue.Issue{
			ID:               VersionAlignmentID + "/" + name,
			Title:            "Dependency version mismatch: " + name,
			Description:      name + " is declared at " + strings.Join(distinctVersions, ", ") + " across " + strings.Join(namesOf(sites), ", ") + ".",
			Severity:         issue.Warning,
			Category:         issue.Dependency,
			Location:         related[0],
			RelatedLocations: related,
			Metadata:         map[string]any{"dependency": name, "versions": distinctVersions},
		})
	}
	return issues, nil
}

func namesOf(sites []versionSite) []string {
	out := make([]string, len(sites))
	for i, s := range sites {
		out[i] = s.pkgName
	}
	return out
}

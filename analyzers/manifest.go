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

// PackageManifestID is the rule id for the package-manifest analyzer.
const PackageManifestID = "package-manifest"

// PackageManifestAnalyzer flags manifests missing required fields, and
// packages carrying a tsconfig without a types/exports surface, honouring a
// configurable exemption list.
type PackageManifestAnalyzer struct{}

func (PackageManifestAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              PackageManifestID,
		Name:            "Package Manifest",
		Description:     "Flags missing required package.json fields and missing types/exports for typed packages",
		Categories:      []issue.Category{issue.Configuration},
		DefaultSeverity: issue.Error,
	}
}

func (a PackageManifestAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	opts := actx.Options
	exempt := exemptSet(opts, "exemptions")

	var issues []issue.Issue
	for _, pkg := range actx.Packages {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if exempt[pkg.Name] {
			continue
		}

		loc := issue.Location{FilePath: pkg.PackageJSONPath}

		if pkg.PackageJSON.Name == "" {
			issues = append(issues, issue.Issue{
				ID:          PackageManifestID + "/missing-name",
				Title:       "Missing required field: name",
				Description: "package.json must declare a non-empty \"name\".",
				Severity:    issue.Error,
				Category:    issue.Configuration,
				Location:    loc,
			})
		}
		if pkg.PackageJSON.Version == "" {
			issues = append(issues, issue.Issue{
				ID:          PackageManifestID + "/missing-version",
				Title:       "Missing required field: version",
				Description: "package.json must declare a non-empty \"version\".",
				Severity:    issue.Error,
				Category:    issue.Configuration,
				Location:    loc,
			})
		}

		if pkg.HasTSConfig {
			if pkg.PackageJSON.Types == "" && pkg.PackageJSON.Main == "" {
				issues = append(issues, issue.Issue{
					ID:          PackageManifestID + "/missing-types",
					Title:       "Missing \"types\" field",
					Description: pkg.Name + " has a tsconfig.json but declares no \"types\" entry for consumers.",
					Severity:    issue.Warning,
					Category:    issue.Configuration,
					Location:    loc,
					Suggestion:  "Add a \"types\" field pointing at the package's emitted declaration file.",
				})
			}
			if pkg.PackageJSON.Exports == nil && pkg.PackageJSON.Main == "" {
				issues = append(issues, issue.Issue{
					ID:          PackageManifestID + "/missing-exports",
					Title:       "Missing \"exports\" field",
					Description: pkg.Name + " has a tsconfig.json but declares neither \"exports\" nor \"main\".",
					Severity:    issue.Warning,
					Category:    issue.Configuration,
					Location:    loc,
				})
			}
		}
	}
	return issues, nil
}

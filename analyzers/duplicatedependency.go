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
)

// DuplicateDependencyID is the rule id for the duplicate-dependency
// analyzer.
const DuplicateDependencyID = "duplicate-dependency"

// knownDuplicates pairs packages that serve the same purpose and are rarely
// meant to be installed together, e.g. two date libraries or two HTTP
// clients.
var knownDuplicates = [][2]string{
	{"moment", "dayjs"},
	{"moment", "date-fns"},
	{"dayjs", "date-fns"},
	{"lodash", "underscore"},
	{"axios", "node-fetch"},
	{"request", "axios"},
	{"uuid", "nanoid"},
	{"jest", "mocha"},
	{"chalk", "colors"},
	{"yarn", "npm"},
}

// DuplicateDependencyAnalyzer flags a package that declares two dependencies
// from the same known-overlapping pair.
type DuplicateDependencyAnalyzer struct{}

func (DuplicateDependencyAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              DuplicateDependencyID,
		Name:            "Duplicate Dependency",
		Description:     "Flags a package that depends on two libraries serving the same purpose",
		Categories:      []issue.Category{issue.Dependency},
		DefaultSeverity: issue.Info,
	}
}

func (a DuplicateDependencyAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	exempt := exemptSet(actx.Options, "exemptions")
	pairs := knownDuplicates
	if custom := stringSliceOption(actx.Options, "additionalPairs"); len(custom) > 0 && len(custom)%2 == 0 {
		for i := 0; i < len(custom); i += 2 {
			pairs = append(pairs, [2]string{custom[i], custom[i+1]})
		}
	}

	var issues []issue.Issue
	for _, pkg := range actx.Packages {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		all := map[string]bool{}
		for name := range pkg.PackageJSON.Dependencies {
			all[name] = true
		}
		for name := range pkg.PackageJSON.DevDependencies {
			all[name] = true
		}

		for _, pair := range pairs {
			a, b := pair[0], pair[1]
			if exempt[a] || exempt[b] {
				continue
			}
			if !all[a] || !all[b] {
				continue
			}
			names := []string{a, b}
			sort.Strings(names)
			issues = append(issues, issue.Issue{
				ID:          DuplicateDependencyID + "/" + pkg.Name + "/" + names[0] + "+" + names[1],
				Title:       "Overlapping dependencies: " + names[0] + " and " + names[1],
				Description: pkg.Name + " depends on both " + names[0] + " and " + names[1] + ", which serve the same purpose.",
				Severity:    issue.Info,
				Category:    issue.Dependency,
				Location:    issue.Location{FilePath: pkg.PackageJSONPath},
				Suggestion:  "Standardize on one of " + names[0] + " or " + names[1] + ".",
				Metadata:    map[string]any{"packages": names},
			})
		}
	}
	return issues, nil
}

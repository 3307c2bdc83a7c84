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
	"os"
	"path/filepath"
	"strings"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/issue"
)

// ExportsFieldID is the rule id for the exports-field analyzer.
const ExportsFieldID = "exports-field"

// ExportsFieldAnalyzer cross-checks a manifest's declared "exports" targets
// against the files actually present on disk for that package.
type ExportsFieldAnalyzer struct{}

func (ExportsFieldAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              ExportsFieldID,
		Name:            "Exports Field",
		Description:     "Cross-checks declared package.json exports targets against files on disk",
		Categories:      []issue.Category{issue.Configuration},
		DefaultSeverity: issue.Error,
	}
}

// statFile abstracts the on-disk existence check so tests can stub it; the
// scanner already read every source file under SrcPath, but an exports
// target commonly points at a build output directory (dist/) never walked
// by the scanner, so this rule checks the real filesystem directly.
var statFile = func(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (a ExportsFieldAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	exempt := exemptSet(actx.Options, "exemptions")

	var issues []issue.Issue
	for _, pkg := range actx.Packages {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if pkg.PackageJSON.Exports == nil || exempt[pkg.Name] {
			continue
		}

		for _, entry := range pkg.PackageJSON.ExportEntries(nil) {
			target := filepath.Join(pkg.PackagePath, filepath.FromSlash(entry.Target))
			if statFile(target) {
				continue
			}
			issues = append(issues, issue.Issue{
				ID:          ExportsFieldID + "/missing-target",
				Title:       "Exports target does not exist",
				Description: pkg.Name + "'s exports entry " + describeSubpath(entry.Subpath) + " points at " + entry.Target + ", which is not present in the package.",
				Severity:    issue.Error,
				Category:    issue.Configuration,
				Location:    issue.Location{FilePath: pkg.PackageJSONPath},
				Metadata:    map[string]any{"subpath": entry.Subpath, "target": entry.Target},
			})
		}
	}
	return issues, nil
}

func describeSubpath(subpath string) string {
	if subpath == "." {
		return "\".\""
	}
	return "\"" + strings.TrimPrefix(subpath, "./") + "\""
}

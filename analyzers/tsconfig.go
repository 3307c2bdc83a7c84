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
	"path/filepath"
	"strconv"
	"strings"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/issue"
)

// TSConfigID is the rule id for the tsconfig analyzer.
const TSConfigID = "tsconfig"

// TSConfigAnalyzer flags incompatibilities between a package manifest's
// "type" field and its tsconfig's compiler module setting, outDir/manifest
// target mismatches, and a missing rootDir when src/ exists.
type TSConfigAnalyzer struct{}

func (TSConfigAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              TSConfigID,
		Name:            "TSConfig Consistency",
		Description:     "Flags mismatches between package.json's type/exports and tsconfig.json's compiler options",
		Categories:      []issue.Category{issue.Configuration},
		DefaultSeverity: issue.Warning,
	}
}

func commonJSModule(module string) bool {
	m := strings.ToLower(module)
	return m == "commonjs" || m == "node16" || m == "node18" || m == "nodenext"
}

func esmModule(module string) bool {
	m := strings.ToLower(module)
	return m == "esnext" || m == "es2015" || m == "es2020" || m == "es2022" || m == "es6" || m == "esm"
}

func (a TSConfigAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	exempt := exemptSet(actx.Options, "exemptions")

	var issues []issue.Issue
	for _, pkg := range actx.Packages {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if !pkg.HasTSConfig || pkg.TSConfig == nil || exempt[pkg.Name] {
			continue
		}
		loc := issue.Location{FilePath: filepath.Join(pkg.PackagePath, "tsconfig.json")}

		module := pkg.TSConfig.Module
		manifestType := pkg.PackageJSON.Type

		if module != "" && manifestType != "" {
			if manifestType == "module" && commonJSModule(module) {
				issues = append(issues, issue.Issue{
					ID:          TSConfigID + "/module-mismatch",
					Title:       "CommonJS compiler output with an ESM package type",
					Description: pkg.Name + " declares \"type\": \"module\" but tsconfig's compilerOptions.module (" + module + ") emits CommonJS.",
					Severity:    issue.Warning,
					Category:    issue.Configuration,
					Location:    loc,
					Metadata:    map[string]any{"module": module, "type": manifestType},
				})
			}
			if (manifestType == "commonjs" || manifestType == "") && esmModule(module) {
				issues = append(issues, issue.Issue{
					ID:          TSConfigID + "/module-mismatch",
					Title:       "ESM compiler output with a CommonJS package type",
					Description: pkg.Name + " compiles with module " + module + " but package.json's \"type\" is not \"module\".",
					Severity:    issue.Warning,
					Category:    issue.Configuration,
					Location:    loc,
					Metadata:    map[string]any{"module": module, "type": manifestType},
				})
			}
		}

		if pkg.TSConfig.OutDir != "" {
			target := pkg.PackageJSON.Main
			if target == "" {
				if entries := pkg.PackageJSON.ExportEntries(nil); len(entries) > 0 {
					target = entries[0].Target
				}
			}
			if target != "" && !strings.Contains(filepath.ToSlash(target), filepath.ToSlash(pkg.TSConfig.OutDir)) {
				issues = append(issues, issue.Issue{
					ID:          TSConfigID + "/outdir-mismatch",
					Title:       "outDir does not match manifest target",
					Description: pkg.Name + "'s tsconfig outDir (" + pkg.TSConfig.OutDir + ") does not contain the manifest's declared entry (" + target + ").",
					Severity:    issue.Warning,
					Category:    issue.Configuration,
					Location:    loc,
				})
			}
		}

		if pkg.TSConfig.RootDir == "" && pkg.SrcPath != pkg.PackagePath {
			issues = append(issues, issue.Issue{
				ID:          TSConfigID + "/missing-rootdir",
				Title:       "Missing rootDir",
				Description: pkg.Name + " has a src/ directory but no compilerOptions.rootDir set.",
				Severity:    issue.Info,
				Category:    issue.Configuration,
				Location:    loc,
				Suggestion:  "Set compilerOptions.rootDir to \"src\".",
			})
		}
	}
	return issues, nil
}

// CrossConfigID is the rule id for the cross-config-consistency analyzer.
const CrossConfigID = "cross-config-consistency"

// CrossConfigAnalyzer detects workspace-wide majority/minority drift in the
// manifest "type" field, once the workspace is large enough (minPackages)
// for a minority to be meaningful.
type CrossConfigAnalyzer struct{}

func (CrossConfigAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              CrossConfigID,
		Name:            "Cross-Package Config Consistency",
		Description:     "Flags packages whose module type diverges from the workspace majority",
		Categories:      []issue.Category{issue.Configuration},
		DefaultSeverity: issue.Warning,
	}
}

func (a CrossConfigAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	minPackages := intOption(actx.Options, "minPackages", 4)
	if len(actx.Packages) < minPackages {
		return nil, nil
	}

	counts := map[string]int{}
	for _, pkg := range actx.Packages {
		t := pkg.PackageJSON.Type
		if t == "" {
			t = "commonjs"
		}
		counts[t]++
	}

	majority, majorityCount := "", 0
	for t, c := range counts {
		if c > majorityCount {
			majority, majorityCount = t, c
		}
	}
	if majority == "" || len(counts) < 2 {
		return nil, nil
	}

	var issues []issue.Issue
	for _, pkg := range actx.Packages {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		t := pkg.PackageJSON.Type
		if t == "" {
			t = "commonjs"
		}
		if t == majority {
			continue
		}
		issues = append(issues, issue.Issue{
			ID:          CrossConfigID + "/type-drift",
			Title:       "Module type diverges from workspace majority",
			Description: pkg.Name + " declares \"type\": \"" + t + "\" while " + majority + " is the workspace majority (" + strconv.Itoa(majorityCount) + "/" + strconv.Itoa(len(actx.Packages)) + " packages).",
			Severity:    issue.Warning,
			Category:    issue.Configuration,
			Location:    issue.Location{FilePath: pkg.PackageJSONPath},
			Metadata:    map[string]any{"packageType": t, "majorityType": majority},
		})
	}
	return issues, nil
}

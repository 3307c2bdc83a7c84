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
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strings"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/issue"
	"driftscan.dev/driftscan/source"
)

// TreeShakingBlockerID is the rule id for the tree-shaking-blocker analyzer.
const TreeShakingBlockerID = "tree-shaking-blocker"

// typeOnlyHeuristic matches identifier names that are very likely a
// type-only binding: a leading "I" + uppercase letter, a conventional type
// suffix, or a leading "Abstract".
var typeOnlyHeuristic = regexp.MustCompile(
	`^(I[A-Z]\w*|Abstract\w*|\w*(Type|Types|Props|Options|Config|Configuration|State|Context|Params|Parameters|Interface|Enum|Kind|Metadata|Schema|Definition))$`,
)

var moduleExportsAssignment = regexp.MustCompile(`\bmodule\.exports\s*=`)
var exportsPropertyAssignment = regexp.MustCompile(`\bexports\.\w+\s*=`)
var requireCallExpr = regexp.MustCompile(`\brequire\s*\(`)
var requireLiteralCallExpr = regexp.MustCompile(`\brequire\s*\(\s*['"]`)

// TreeShakingBlockerAnalyzer flags import/require patterns that defeat a
// bundler's dead-code elimination: namespace imports, CommonJS
// require/module.exports forms, large-package imports that should be
// dynamic, and named imports whose binding looks like a type that could be
// imported with "import type" instead.
type TreeShakingBlockerAnalyzer struct{}

func (TreeShakingBlockerAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              TreeShakingBlockerID,
		Name:            "Tree-Shaking Blocker",
		Description:     "Flags import/require patterns that prevent dead-code elimination by a bundler",
		Categories:      []issue.Category{issue.Performance},
		DefaultSeverity: issue.Info,
	}
}

func (a TreeShakingBlockerAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	exempt := exemptSet(actx.Options, "exemptions")
	flagNamespace := boolOption(actx.Options, "flagNamespaceImports", true)
	flagTypeHeuristic := boolOption(actx.Options, "flagTypeOnlyHeuristic", true)
	largePackages := stringSliceOption(actx.Options, "largePackages")
	if len(largePackages) == 0 {
		largePackages = DefaultLargePackageNames()
	}
	largeSet := make(map[string]bool, len(largePackages))
	for _, p := range largePackages {
		largeSet[p] = true
	}

	var issues []issue.Issue
	for path, extracted := range actx.Extracted {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if exempt[path] || isTestFilePath(path) {
			continue
		}

		for _, imp := range extracted.Imports {
			if flagNamespace && imp.NamespaceImport != "" && !imp.IsRelative && imp.Type != source.ImportTypeOnly {
				issues = append(issues, issue.Issue{
					ID:          TreeShakingBlockerID + "/namespace-import",
					Title:       "Namespace import blocks tree-shaking",
					Description: path + " imports all of " + imp.ModuleSpecifier + " as a namespace (* as " + imp.NamespaceImport + "), which most bundlers cannot shake.",
					Severity:    issue.Info,
					Category:    issue.Performance,
					Location:    issue.Location{FilePath: path, Line: imp.Line, Column: imp.Column},
					Suggestion:  "Import only the named bindings actually used.",
					Metadata:    map[string]any{"specifier": imp.ModuleSpecifier},
				})
			}

			if imp.Type == source.ImportRequire {
				issues = append(issues, issue.Issue{
					ID:          TreeShakingBlockerID + "/commonjs-require",
					Title:       "CommonJS require blocks static analysis",
					Description: path + " uses require(\"" + imp.ModuleSpecifier + "\"), which most bundlers cannot statically analyze for unused exports.",
					Severity:    issue.Info,
					Category:    issue.Performance,
					Location:    issue.Location{FilePath: path, Line: imp.Line, Column: imp.Column},
					Metadata:    map[string]any{"specifier": imp.ModuleSpecifier},
				})
			}

			if !imp.IsRelative && !imp.IsWorkspacePackage {
				base := source.BasePackageName(imp.ModuleSpecifier)
				if largeSet[base] && imp.Type != source.ImportDynamic {
					issues = append(issues, issue.Issue{
						ID:          TreeShakingBlockerID + "/large-package-static-import",
						Title:       "Static import of a large package",
						Description: path + " statically imports " + base + ", a large package; consider a dynamic import() to defer loading it.",
						Severity:    issue.Info,
						Category:    issue.Performance,
						Location:    issue.Location{FilePath: path, Line: imp.Line, Column: imp.Column},
						Suggestion:  "Use a dynamic import() to load " + base + " only when needed.",
						Metadata:    map[string]any{"package": base},
					})
				}
			}

			if flagTypeHeuristic && imp.Type != source.ImportTypeOnly {
				for _, name := range imp.NamedImports {
					if typeOnlyHeuristic.MatchString(name) {
						issues = append(issues, issue.Issue{
							ID:          TreeShakingBlockerID + "/type-only-opportunity",
							Title:       "Likely type-only import not marked as such",
							Description: path + " imports " + name + " from " + imp.ModuleSpecifier + "; its name suggests a type, which could be imported with \"import type\" to be erased at build time.",
							Severity:    issue.Info,
							Category:    issue.Performance,
							Location:    issue.Location{FilePath: path, Line: imp.Line, Column: imp.Column},
							Suggestion:  "Use \"import type { " + name + " }\" if " + name + " is only used as a type.",
							Metadata:    map[string]any{"name": name, "specifier": imp.ModuleSpecifier},
						})
					}
				}
			}
		}
	}

	if actx.FS != nil {
		issues = append(issues, scanRawExportAssignments(ctx, actx, exempt)...)
	}

	return issues, nil
}

// scanRawExportAssignments raw-token-scans source files for
// module.exports/exports.X assignment forms and require(nonLiteral) calls -
// constructs the import extractor's tree-sitter query set doesn't model,
// since they aren't import/require statements at all.
func scanRawExportAssignments(ctx context.Context, actx *analyzer.Context, exempt map[string]bool) []issue.Issue {
	var issues []issue.Issue
	for _, path := range actx.SourceFiles {
		if ctx.Err() != nil {
			break
		}
		if exempt[path] || isTestFilePath(path) {
			continue
		}
		content, err := actx.FS.ReadFile(path)
		if err != nil {
			continue
		}

		scanner := bufio.NewScanner(bytes.NewReader(content))
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if strings.Contains(line, "module.exports") && moduleExportsAssignment.MatchString(line) {
				issues = append(issues, issue.Issue{
					ID:          TreeShakingBlockerID + "/commonjs-module-exports",
					Title:       "module.exports assignment blocks tree-shaking",
					Description: path + " assigns to module.exports, a CommonJS form bundlers cannot statically analyze for unused exports.",
					Severity:    issue.Info,
					Category:    issue.Performance,
					Location:    issue.Location{FilePath: path, Line: lineNo},
				})
			} else if strings.Contains(line, "exports.") && exportsPropertyAssignment.MatchString(line) {
				issues = append(issues, issue.Issue{
					ID:          TreeShakingBlockerID + "/commonjs-exports-property",
					Title:       "exports.X assignment blocks tree-shaking",
					Description: path + " assigns to an exports property, a CommonJS form bundlers cannot statically analyze for unused exports.",
					Severity:    issue.Info,
					Category:    issue.Performance,
					Location:    issue.Location{FilePath: path, Line: lineNo},
				})
			}
			if requireCallExpr.MatchString(line) && !requireLiteralCallExpr.MatchString(line) {
				issues = append(issues, issue.Issue{
					ID:          TreeShakingBlockerID + "/dynamic-require-target",
					Title:       "require() with a non-literal argument",
					Description: path + " calls require() with a computed argument, which cannot be statically analyzed.",
					Severity:    issue.Info,
					Category:    issue.Performance,
					Location:    issue.Location{FilePath: path, Line: lineNo},
				})
			}
		}
	}
	return issues
}

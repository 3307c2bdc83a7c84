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

	"github.com/bmatcuk/doublestar/v4"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/issue"
	"driftscan.dev/driftscan/source"
)

// SideEffectFreeID is the rule id for the side-effect-free sub-rule.
const SideEffectFreeID = "side-effect-free"

// SideEffectFreeAnalyzer flags a module matched by a configured
// "sideEffectFreePatterns" glob pattern (meant to be pure, tree-shakeable exports)
// that is itself imported with a side-effect-only import elsewhere, since
// that usage implies the module does something on load a bundler can't
// prove away.
type SideEffectFreeAnalyzer struct{}

func (SideEffectFreeAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              SideEffectFreeID,
		Name:            "Side-Effect-Free Modules",
		Description:     "Flags side-effect-only imports of modules declared side-effect-free",
		Categories:      []issue.Category{issue.Architecture},
		DefaultSeverity: issue.Warning,
	}
}

func (a SideEffectFreeAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	patterns := stringSliceOption(actx.Options, "sideEffectFreePatterns")
	if len(patterns) == 0 {
		return nil, nil
	}
	exempt := exemptSet(actx.Options, "exemptions")

	var issues []issue.Issue
	for path, extracted := range actx.Extracted {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		if exempt[path] {
			continue
		}
		for _, imp := range extracted.Imports {
			if imp.Type != source.ImportSideEffect {
				continue
			}
			if !matchesAny(patterns, imp.ModuleSpecifier) {
				continue
			}
			issues = append(issues, issue.Issue{
				ID:          SideEffectFreeID + "/unexpected-side-effect-import",
				Title:       "Side-effect import of a side-effect-free module",
				Description: path + " imports " + imp.ModuleSpecifier + " purely for its side effects, but that module is declared side-effect-free.",
				Severity:    issue.Warning,
				Category:    issue.Architecture,
				Location:    issue.Location{FilePath: path, Line: imp.Line, Column: imp.Column},
				Metadata:    map[string]any{"specifier": imp.ModuleSpecifier},
			})
		}
	}
	return issues, nil
}

func matchesAny(patterns []string, specifier string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, specifier); ok {
			return true
		}
	}
	return false
}

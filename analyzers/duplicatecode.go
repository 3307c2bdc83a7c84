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
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/issue"
	"driftscan.dev/driftscan/source"
)

// DuplicateCodeID is the rule id for the duplicate-code analyzer.
const DuplicateCodeID = "duplicate-code"

// fingerprintedBlock is a parsed function/method/arrow-function body
// together with its computed 64-bit hash, a token multiset for Jaccard
// comparisons, and the workspace package that owns it.
type fingerprintedBlock struct {
	filePath  string
	pkgName   string
	name      string
	startLine int
	endLine   int
	hash      uint64
	tokenSet  map[string]int
}

// DuplicateCodeAnalyzer computes a structural fingerprint for every
// function/method/arrow-function body with at least minStatements
// statements, groups exact hash matches as duplicates, and flags
// near-duplicate pairs by Jaccard similarity on the remaining singletons.
type DuplicateCodeAnalyzer struct{}

func (DuplicateCodeAnalyzer) Metadata() analyzer.Metadata {
	return analyzer.Metadata{
		ID:              DuplicateCodeID,
		Name:            "Duplicate Code",
		Description:     "Flags structurally identical or near-identical function/method bodies",
		Categories:      []issue.Category{issue.Performance},
		DefaultSeverity: issue.Info,
	}
}

func fnv64(tokens []string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strings.Join(tokens, ":")))
	return h.Sum64()
}

func tokenSet(tokens []string) map[string]int {
	set := make(map[string]int, len(tokens))
	for _, t := range tokens {
		set[t]++
	}
	return set
}

// jaccardSimilarity computes the Jaccard index over two token-count sets,
// treating the sets as multisets via min/max of the counts.
func jaccardSimilarity(a, b map[string]int) float64 {
	var intersection, union int
	seen := make(map[string]bool, len(a)+len(b))
	for t, ca := range a {
		cb := b[t]
		if ca < cb {
			intersection += ca
		} else {
			intersection += cb
		}
		if ca > cb {
			union += ca
		} else {
			union += cb
		}
		seen[t] = true
	}
	for t, cb := range b {
		if seen[t] {
			continue
		}
		union += cb
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// extractAllBlocks parses every extracted source file's declarations via
// source.ExtractBlocks, keeping only bodies with at least minStatements
// statements, excluding test files.
func extractAllBlocks(actx *analyzer.Context, minStatements int) ([]fingerprintedBlock, error) {
	if actx.FS == nil {
		return nil, nil
	}
	var blocks []fingerprintedBlock
	for _, path := range actx.SourceFiles {
		if isTestFilePath(path) {
			continue
		}
		content, err := actx.FS.ReadFile(path)
		if err != nil {
			continue
		}
		parsed, err := source.ExtractBlocks(path, content)
		if err != nil {
			continue
		}
		pkg := packageByFile(actx.Packages, path)
		pkgName := ""
		if pkg != nil {
			pkgName = pkg.Name
		}
		for _, b := range parsed {
			if b.StatementCount < minStatements {
				continue
			}
			blocks = append(blocks, fingerprintedBlock{
				filePath:  b.FilePath,
				pkgName:   pkgName,
				name:      b.Name,
				startLine: b.StartLine,
				endLine:   b.EndLine,
				hash:      fnv64(b.Tokens),
				tokenSet:  tokenSet(b.Tokens),
			})
		}
	}
	return blocks, nil
}

// groupKey partitions blocks sharing a hash by whether cross-package
// grouping is permitted: when crossPackageAnalysis is false, blocks from
// different packages with the same hash are reported as separate
// single-package groups rather than one cross-package group.
func groupKey(b fingerprintedBlock, crossPackage bool) string {
	if crossPackage {
		return ""
	}
	return b.pkgName
}

func (a DuplicateCodeAnalyzer) Analyze(ctx context.Context, actx *analyzer.Context) ([]issue.Issue, error) {
	minStatements := intOption(actx.Options, "minStatements", 5)
	similarityThreshold := floatOption(actx.Options, "similarityThreshold", 0.85)
	crossPackage := boolOption(actx.Options, "crossPackageAnalysis", false)
	minLineGap := intOption(actx.Options, "minLineGapSameFile", 20)

	blocks, err := extractAllBlocks(actx, minStatements)
	if err != nil {
		return nil, err
	}
	if len(blocks) < 2 {
		return nil, nil
	}

	byHash := map[string][]fingerprintedBlock{}
	for _, b := range blocks {
		key := groupKey(b, crossPackage) + "\x00" + uint64ToString(b.hash)
		byHash[key] = append(byHash[key], b)
	}

	var issues []issue.Issue
	var singletons []fingerprintedBlock

	var keys []string
	for k := range byHash {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		group := byHash[k]
		if len(group) == 1 {
			singletons = append(singletons, group[0])
			continue
		}
		issues = append(issues, duplicateIssue(group))
	}

	sort.Slice(singletons, func(i, j int) bool {
		if singletons[i].filePath != singletons[j].filePath {
			return singletons[i].filePath < singletons[j].filePath
		}
		return singletons[i].startLine < singletons[j].startLine
	})

	for i := 0; i < len(singletons); i++ {
		if ctx.Err() != nil {
			return issues, ctx.Err()
		}
		for j := i + 1; j < len(singletons); j++ {
			x, y := singletons[i], singletons[j]
			if x.filePath == y.filePath && abs(x.startLine-y.startLine) < minLineGap {
				continue
			}
			sim := jaccardSimilarity(x.tokenSet, y.tokenSet)
			if sim >= similarityThreshold && sim < 1.0 {
				issues = append(issues, issue.Issue{
					ID:    DuplicateCodeID + "/similar",
					Title: "Similar function bodies",
					Description: x.name + " in " + x.filePath + " and " + y.name + " in " + y.filePath +
						" are structurally similar.",
					Severity: issue.Info,
					Category: issue.Performance,
					Location: issue.Location{FilePath: x.filePath, Line: x.startLine, EndLine: x.endLine},
					RelatedLocations: []issue.Location{
						{FilePath: y.filePath, Line: y.startLine, EndLine: y.endLine},
					},
					Metadata: map[string]any{"similarity": sim, "isExactMatch": false},
				})
			}
		}
	}

	return issues, nil
}

func duplicateIssue(group []fingerprintedBlock) issue.Issue {
	sort.Slice(group, func(i, j int) bool {
		if group[i].filePath != group[j].filePath {
			return group[i].filePath < group[j].filePath
		}
		return group[i].startLine < group[j].startLine
	})
	var related []issue.Location
	var names []string
	for _, b := range group {
		related = append(related, issue.Location{FilePath: b.filePath, Line: b.startLine, EndLine: b.endLine})
		names = append(names, b.name)
	}
	return issue.Issue{
		ID:               DuplicateCodeID + "/exact",
		Title:            "Duplicate function body",
		Description:      strings.Join(names, ", ") + " are structurally identical (identifiers and literals excluded).",
		Severity:         issue.Info,
		Category:         issue.Performance,
		Location:         related[0],
		RelatedLocations: related,
		Metadata:         map[string]any{"count": len(group), "isExactMatch": true, "similarity": 1.0},
	}
}

func uint64ToString(v uint64) string {
	return strconv.FormatUint(v, 16)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

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

// Package orchestrator runs the full analysis pipeline described by
// spec.md §4.10: resolve configuration, scan the workspace, load and
// validate the cache, parse every source file, fan analyzers out under a
// concurrency limit, merge fresh and cached issues, update and save the
// cache, and return a summarized Result.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/cache"
	"driftscan.dev/driftscan/config"
	"driftscan.dev/driftscan/depgraph"
	"driftscan.dev/driftscan/fs"
	"driftscan.dev/driftscan/hashing"
	"driftscan.dev/driftscan/internal/version"
	"driftscan.dev/driftscan/issue"
	"driftscan.dev/driftscan/source"
	"driftscan.dev/driftscan/workspace"
)

// Result is the full outcome of a Run.
type Result struct {
	Issues        []issue.Issue
	Summary       issue.Summary
	WorkspacePath string
	StartedAt     time.Time
	CompletedAt   time.Time
}

// Orchestrator runs the analysis pipeline against a FileSystem with a
// given analyzer Registry.
type Orchestrator struct {
	FS       fs.FileSystem
	Registry *analyzer.Registry
}

// New constructs an Orchestrator.
func New(fsys fs.FileSystem, registry *analyzer.Registry) *Orchestrator {
	return &Orchestrator{FS: fsys, Registry: registry}
}

// configSubset is the canonicalised portion of Config that affects analysis
// output, hashed to detect configuration changes (spec.md §4.10 step 1).
// Fields like Concurrency and CacheDir don't change what gets reported, so
// they're excluded to avoid spurious full invalidations.
type configSubset struct {
	Include         []string
	Exclude         []string
	Categories      []string
	MinSeverity     string
	PackagePatterns []string
	HashAlgorithm   string
	Analyzers       map[string]config.AnalyzerConfig
	Architecture    map[string]any
}

// Run executes the full pipeline against workspacePath under cfg.
func (o *Orchestrator) Run(ctx context.Context, workspacePath string, cfg *config.Config, progress ProgressFunc) (*Result, error) {
	started := time.Now()
	if cfg == nil {
		d := config.Defaults()
		cfg = &d
	}

	hasher := hashing.New(hashing.WithAlgorithm(hashing.Algorithm(cfg.HashAlgorithm)))
	configHash, err := hasher.HashJSON(configSubset{
		Include:         cfg.Include,
		Exclude:         cfg.Exclude,
		Categories:      cfg.Categories,
		MinSeverity:     cfg.MinSeverity,
		PackagePatterns: cfg.PackagePatterns,
		HashAlgorithm:   cfg.HashAlgorithm,
		Analyzers:       cfg.Analyzers,
		Architecture:    cfg.Architecture,
	})
	if err != nil {
		return nil, &Error{Kind: InvalidConfig, Err: err}
	}

	// Step 2: scan.
	progress.emit(ProgressEvent{Phase: PhaseScanning})
	scanResult, err := workspace.Scan(ctx, o.FS, workspace.Options{
		RootDir:         workspacePath,
		IncludePatterns: cfg.PackagePatterns,
	})
	if err != nil {
		return nil, &Error{Kind: ScanFailed, Err: err}
	}
	if len(scanResult.Packages) == 0 {
		return nil, &Error{Kind: NoPackages, Err: fmt.Errorf("no packages found under %s", workspacePath)}
	}
	progress.emit(ProgressEvent{Phase: PhaseScanning, Processed: len(scanResult.Packages), Total: len(scanResult.Packages)})

	var allFiles []string
	packagePaths := make(map[string]string, len(scanResult.Packages))
	for _, p := range scanResult.Packages {
		allFiles = append(allFiles, p.SourceFiles...)
		packagePaths[p.Name] = p.PackagePath
	}
	sort.Strings(allFiles)

	analyzerVersion := version.GetVersion()

	// Step 3: cache load + validate.
	var analysisCache *cache.AnalysisCache
	var cachedFiles, filesToAnalyze []string
	var invalidatedPackages map[string]bool
	var c *cache.Cache
	cacheEnabled := cfg.CacheEnabled()
	if cacheEnabled {
		c = cache.NewCache(o.FS, hasher, cache.Options{
			WorkspacePath: workspacePath,
			CacheDir:      cfg.CacheDir,
			MaxAge:        cfg.MaxCacheAgeDuration(),
		})
		loaded, loadErr := c.Load()
		valid := loadErr == nil && c.QuickValidate(loaded, workspacePath, configHash, analyzerVersion)
		if valid {
			vr, verr := c.Validate(loaded, allFiles, packagePaths)
			if verr == nil && vr.IsValid {
				analysisCache = loaded
				filesToAnalyze = append(append(append([]string{}, vr.ChangedFiles...), vr.NewFiles...), vr.DeletedFiles...)
				cachedFiles = diffSorted(allFiles, filesToAnalyze)
				invalidatedPackages = toSet(vr.InvalidatedPackages)
			}
		}
	}
	if analysisCache == nil {
		analysisCache = cache.NewAnalysisCache(workspacePath, configHash, analyzerVersion, uuid.NewString(), started)
		filesToAnalyze = allFiles
		invalidatedPackages = toSet(packageNames(scanResult.Packages))
		if cacheEnabled {
			analysisCache.ConfigFiles = recordConfigFiles(o.FS, hasher, scanResult.Packages)
		}
	}

	// Step 4: build AnalysisContext. Every file is parsed regardless of
	// cache status since the dependency graph needs full edges every run;
	// only the per-file analyzer work below is limited to filesToAnalyze.
	progress.emit(ProgressEvent{Phase: PhaseParsing, Total: len(allFiles)})
	workspacePrefixes := packageNames(scanResult.Packages)
	extractor := source.NewExtractor(workspacePrefixes)

	extracted := make(map[string]*source.ImportExtractionResult, len(allFiles))
	var fileExtractions []depgraph.FileExtraction
	for i, pkg := range scanResult.Packages {
		for _, f := range pkg.SourceFiles {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			content, readErr := o.FS.ReadFile(f)
			if readErr != nil {
				continue
			}
			result, exErr := extractor.Extract(f, content)
			if exErr != nil {
				continue
			}
			extracted[f] = result
			fileExtractions = append(fileExtractions, depgraph.FileExtraction{PackageName: pkg.Name, Result: result})
		}
		progress.emit(ProgressEvent{Phase: PhaseParsing, Current: pkg.Name, Processed: i + 1, Total: len(scanResult.Packages)})
	}
	graph := depgraph.Build(workspacePath, fileExtractions, depgraph.BuildOptions{IncludeTypeImports: true})

	actx := &analyzer.Context{
		WorkspacePath:     workspacePath,
		Packages:          scanResult.Packages,
		SourceFiles:       filesToAnalyze,
		Graph:             graph,
		Extracted:         extracted,
		FS:                o.FS,
		WorkspacePrefixes: workspacePrefixes,
		Architecture:      cfg.Architecture,
		ConfigHash:        configHash,
	}

	// Step 5: dispatch enabled analyzers under a concurrency limit.
	overrides := cfg.AnalyzerOverrides()
	enabled := o.Registry.Enabled(overrides)
	progress.emit(ProgressEvent{Phase: PhaseAnalyzing, Total: len(enabled)})

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	issuesByAnalyzer := make([][]issue.Issue, len(enabled))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	var processed int32
	for i, a := range enabled {
		i, a := i, a
		g.Go(func() error {
			rctx := actx.WithOptions(analyzer.EffectiveOptions(a, overrides))
			issues, aerr := a.Analyze(gctx, rctx)
			if ov, ok := overrides[a.Metadata().ID]; ok && ov.Severity != nil {
				severity := *ov.Severity
				for j := range issues {
					issues[j].Severity = severity
				}
			}
			if aerr != nil {
				issues = append(issues, issue.Issue{
					ID:          "analyzer-error/" + a.Metadata().ID,
					Title:       "Analyzer failed",
					Description: aerr.Error(),
					Severity:    issue.Error,
					Category:    issue.Configuration,
				})
			}
			issuesByAnalyzer[i] = issues
			processed++
			progress.emit(ProgressEvent{Phase: PhaseAnalyzing, Current: a.Metadata().ID, Processed: int(processed), Total: len(enabled)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &Error{Kind: AnalysisFailed, Err: err}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Step 7: collect fresh issues, append cached issues, filter.
	progress.emit(ProgressEvent{Phase: PhaseReporting})
	var freshIssues []issue.Issue
	for _, issues := range issuesByAnalyzer {
		freshIssues = append(freshIssues, issues...)
	}

	// Analyzers that walk every extracted file re-emit issues for cached
	// files too, so cached issues already present among the fresh ones are
	// skipped.
	issueKey := func(iss issue.Issue) string {
		return fmt.Sprintf("%s|%s|%d|%d|%s", iss.ID, iss.Location.FilePath, iss.Location.Line, iss.Location.Column, iss.Description)
	}
	freshKeys := make(map[string]bool, len(freshIssues))
	var allIssues []issue.Issue
	for _, iss := range freshIssues {
		freshKeys[issueKey(iss)] = true
		allIssues = append(allIssues, iss)
	}
	for _, f := range cachedFiles {
		if cfa, ok := analysisCache.Files[f]; ok {
			for _, iss := range cfa.Issues {
				if !freshKeys[issueKey(iss)] {
					allIssues = append(allIssues, iss)
				}
			}
		}
	}
	for name, cpa := range analysisCache.Packages {
		if !invalidatedPackages[name] {
			allIssues = append(allIssues, cpa.Issues...)
		}
	}
	allIssues = append(allIssues, analysisCache.WorkspaceIssues...)

	filtered := issue.Filter(allIssues, cfg.FilterOptions())

	// Step 8: update and save the cache.
	if cacheEnabled {
		issuesByFile := groupIssuesByFile(freshIssues)
		analyzerIDs := analyzerIDs(enabled)
		now := time.Now()
		for _, f := range filesToAnalyze {
			analysisCache = c.UpdateFile(analysisCache, f, cache.CachedFileAnalysis{
				FileState:    fileState(o.FS, hasher, f),
				Issues:       issuesByFile[f],
				AnalyzersRun: analyzerIDs,
				AnalyzedAt:   now,
			}, now)
		}
		for name := range invalidatedPackages {
			pkgPath, ok := packagePaths[name]
			if !ok {
				continue
			}
			pkg := findPackage(scanResult.Packages, name)
			hash := ""
			if pkg != nil {
				hash, _ = hasher.HashJSON(pkg.PackageJSON)
			}
			analysisCache = c.UpdatePackage(analysisCache, name, cache.CachedPackageAnalysis{
				PackageName:     name,
				PackagePath:     pkgPath,
				PackageJSONHash: hash,
				Issues:          nil,
				AnalyzersRun:    analyzerIDs,
				AnalyzedAt:      now,
			}, now)
		}
		if err := c.Save(analysisCache); err != nil {
			return nil, &Error{Kind: AnalysisFailed, Err: err}
		}
	}

	completed := time.Now()
	summary := issue.Summarize(filtered, len(scanResult.Packages), len(allFiles), completed.Sub(started).Milliseconds())

	return &Result{
		Issues:        filtered,
		Summary:       summary,
		WorkspacePath: workspacePath,
		StartedAt:     started,
		CompletedAt:   completed,
	}, nil
}

func packageNames(packages []workspace.Package) []string {
	names := make([]string, len(packages))
	for i, p := range packages {
		names[i] = p.Name
	}
	return names
}

func findPackage(packages []workspace.Package, name string) *workspace.Package {
	for i := range packages {
		if packages[i].Name == name {
			return &packages[i]
		}
	}
	return nil
}

func analyzerIDs(analyzers []analyzer.Analyzer) []string {
	ids := make([]string, len(analyzers))
	for i, a := range analyzers {
		ids[i] = a.Metadata().ID
	}
	return ids
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// diffSorted returns the elements of all not present in remove. Both slices
// must be sorted.
func diffSorted(all, remove []string) []string {
	removeSet := toSet(remove)
	var out []string
	for _, v := range all {
		if !removeSet[v] {
			out = append(out, v)
		}
	}
	return out
}

func groupIssuesByFile(issues []issue.Issue) map[string][]issue.Issue {
	out := make(map[string][]issue.Issue)
	for _, i := range issues {
		out[i.Location.FilePath] = append(out[i.Location.FilePath], i)
	}
	return out
}

func fileState(fsys fs.FileSystem, hasher *hashing.Hasher, path string) cache.CachedFileState {
	state := cache.CachedFileState{Path: path}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return state
	}
	state.ContentHash = hasher.HashContent(data)
	state.Size = int64(len(data))
	if info, err := fsys.Stat(path); err == nil {
		state.ModifiedAt = info.ModTime()
	}
	return state
}

// recordConfigFiles hashes every tsconfig.json the scan found, the set of
// "configuration files" spec.md §4.8 tracks for total-invalidation checks.
func recordConfigFiles(fsys fs.FileSystem, hasher *hashing.Hasher, packages []workspace.Package) []cache.CachedFileState {
	var states []cache.CachedFileState
	for _, pkg := range packages {
		if !pkg.HasTSConfig {
			continue
		}
		path := filepath.Join(pkg.PackagePath, "tsconfig.json")
		states = append(states, fileState(fsys, hasher, path))
	}
	return states
}

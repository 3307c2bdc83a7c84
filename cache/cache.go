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

// Package cache persists per-file and per-package analysis results across
// runs so the orchestrator can skip re-analyzing files that have not
// changed since the last run. The cache file is a JSON document, optionally
// gzipped, written under <workspacePath>/<cacheDir>/analysis-cache.json[.gz].
package cache

import (
	"sync"
	"time"

	"driftscan.dev/driftscan/fs"
	"driftscan.dev/driftscan/hashing"
	"driftscan.dev/driftscan/issue"
)

// SchemaVersion is bumped whenever the on-disk cache format changes in a
// way incompatible with older readers. Loading a cache whose
// Metadata.SchemaVersion differs is a VersionMismatch error.
const SchemaVersion = 1

// DefaultMaxAge is the default maximum age of a cache before it is
// considered expired, per spec.md §4.8.
const DefaultMaxAge = 7 * 24 * time.Hour

// FileName is the base name of the cache document, before the optional
// ".gz" suffix gzip compression adds.
const FileName = "analysis-cache.json"

// CachedFileState records the identity of a file at the time it was last
// analyzed, used to detect whether it has changed since.
type CachedFileState struct {
	Path        string    `json:"path"`
	ContentHash string    `json:"contentHash"`
	ModifiedAt  time.Time `json:"modifiedAt"`
	Size        int64     `json:"size"`
}

// CachedFileAnalysis is the cached analysis result for a single source
// file.
type CachedFileAnalysis struct {
	FileState    CachedFileState `json:"fileState"`
	Issues       []issue.Issue   `json:"issues"`
	AnalyzersRun []string        `json:"analyzersRun"`
	AnalyzedAt   time.Time       `json:"analyzedAt"`
}

// CachedPackageAnalysis is the cached analysis result for issues that are
// scoped to a whole package (e.g. manifest checks) rather than one file.
type CachedPackageAnalysis struct {
	PackageName     string        `json:"packageName"`
	PackagePath     string        `json:"packagePath"`
	PackageJSONHash string        `json:"packageJsonHash"`
	Issues          []issue.Issue `json:"issues"`
	AnalyzersRun    []string      `json:"analyzersRun"`
	AnalyzedAt      time.Time     `json:"analyzedAt"`
}

// Metadata identifies the run that produced a cache and the configuration
// it was produced under.
type Metadata struct {
	SchemaVersion   int       `json:"schemaVersion"`
	WorkspacePath   string    `json:"workspacePath"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	ConfigHash      string    `json:"configHash"`
	AnalyzerVersion string    `json:"analyzerVersion"`
	RunID           string    `json:"runId,omitempty"`
}

// AnalysisCache is the full on-disk cache document.
type AnalysisCache struct {
	Metadata        Metadata                        `json:"metadata"`
	Files           map[string]CachedFileAnalysis    `json:"files"`
	Packages        map[string]CachedPackageAnalysis `json:"packages"`
	WorkspaceIssues []issue.Issue                    `json:"workspaceIssues,omitempty"`
	ConfigFiles     []CachedFileState                `json:"configFiles"`
}

// NewAnalysisCache constructs an empty AnalysisCache for workspacePath,
// stamped with the current config/analyzer version.
func NewAnalysisCache(workspacePath, configHash, analyzerVersion, runID string, now time.Time) *AnalysisCache {
	return &AnalysisCache{
		Metadata: Metadata{
			SchemaVersion:   SchemaVersion,
			WorkspacePath:   workspacePath,
			CreatedAt:       now,
			UpdatedAt:       now,
			ConfigHash:      configHash,
			AnalyzerVersion: analyzerVersion,
			RunID:           runID,
		},
		Files:    make(map[string]CachedFileAnalysis),
		Packages: make(map[string]CachedPackageAnalysis),
	}
}

// ValidationResult is the outcome of a full Validate call.
type ValidationResult struct {
	IsValid             bool
	InvalidationReason  string
	ChangedConfigFiles  []string
	ChangedFiles        []string
	NewFiles            []string
	DeletedFiles        []string
	InvalidatedPackages []string
}

// Cache wraps an AnalysisCache with the filesystem/gzip plumbing needed to
// load, validate, and persist it across runs. Load is single-flight per
// Cache instance (only the first caller reads the file; later calls within
// the same run reuse the result), grounded on packagejson.Cache's
// GetOrLoad idiom; the orchestrator itself is responsible for not calling
// Save concurrently with another run, per spec.md §5.
type Cache struct {
	mu     sync.Mutex
	fsys   fs.FileSystem
	hasher *hashing.Hasher

	workspacePath string
	cacheDir      string
	gzipEnabled   bool
	maxAge        time.Duration

	loadOnce sync.Once
	loaded   *AnalysisCache
	loadErr  error
}

// Options configures a Cache.
type Options struct {
	WorkspacePath string
	CacheDir      string // relative to WorkspacePath, e.g. ".driftscan-cache"
	Gzip          bool
	MaxAge        time.Duration // 0 means DefaultMaxAge
}

// NewCache constructs a Cache over fsys using hasher for content digests.
func NewCache(fsys fs.FileSystem, hasher *hashing.Hasher, opts Options) *Cache {
	if hasher == nil {
		hasher = hashing.New()
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	return &Cache{
		fsys:          fsys,
		hasher:        hasher,
		workspacePath: opts.WorkspacePath,
		cacheDir:      opts.CacheDir,
		gzipEnabled:   opts.Gzip,
		maxAge:        opts.MaxAge,
	}
}

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

package cache

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// hashPath hashes a source or config file's current content through the
// Cache's own filesystem abstraction, so tests run entirely against an
// in-memory fs.FileSystem without touching the real disk.
func (c *Cache) hashPath(path string) (string, error) {
	data, err := c.fsys.ReadFile(path)
	if err != nil {
		return "", err
	}
	return c.hasher.HashContent(data), nil
}

// path returns the on-disk cache file path, with the ".gz" suffix when
// gzip is enabled.
func (c *Cache) path() string {
	name := FileName
	if c.gzipEnabled {
		name += ".gz"
	}
	return filepath.Join(c.workspacePath, c.cacheDir, name)
}

// Load reads and parses the cache file, gunzipping it first when the
// configured path ends in ".gz". The read is single-flight: the first
// caller on this Cache instance does the I/O, later callers reuse the
// result.
func (c *Cache) Load() (*AnalysisCache, error) {
	c.loadOnce.Do(func() {
		c.loaded, c.loadErr = c.load()
	})
	return c.loaded, c.loadErr
}

func (c *Cache) load() (*AnalysisCache, error) {
	path := c.path()
	if !c.fsys.Exists(path) {
		return nil, &Error{Kind: NotFound, Path: path}
	}

	raw, err := c.fsys.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: Corrupted, Path: path, Err: err}
	}

	if c.gzipEnabled {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, &Error{Kind: Corrupted, Path: path, Err: err}
		}
		defer zr.Close()
		raw, err = io.ReadAll(zr)
		if err != nil {
			return nil, &Error{Kind: Corrupted, Path: path, Err: err}
		}
	}

	var doc AnalysisCache
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &Error{Kind: Corrupted, Path: path, Err: err}
	}

	if doc.Metadata.SchemaVersion != SchemaVersion {
		return nil, &Error{Kind: VersionMismatch, Path: path}
	}
	if time.Since(doc.Metadata.CreatedAt) > c.maxAge {
		return nil, &Error{Kind: Expired, Path: path}
	}
	if doc.Files == nil {
		doc.Files = make(map[string]CachedFileAnalysis)
	}
	if doc.Packages == nil {
		doc.Packages = make(map[string]CachedPackageAnalysis)
	}
	return &doc, nil
}

// QuickValidate performs the no-I/O checks spec.md §4.8 requires before a
// full Validate is attempted: schema version, workspace path, analyzer
// version, config hash, and age must all match.
func (c *Cache) QuickValidate(doc *AnalysisCache, workspacePath, configHash, analyzerVersion string) bool {
	if doc == nil {
		return false
	}
	if doc.Metadata.SchemaVersion != SchemaVersion {
		return false
	}
	if doc.Metadata.WorkspacePath != workspacePath {
		return false
	}
	if doc.Metadata.AnalyzerVersion != analyzerVersion {
		return false
	}
	if doc.Metadata.ConfigHash != configHash {
		return false
	}
	if time.Since(doc.Metadata.CreatedAt) > c.maxAge {
		return false
	}
	return true
}

// Validate runs the full comparison against the current file set: it first
// re-hashes every recorded config file, and if any differs the whole cache
// is invalidated (spec.md §4.8 "a changed config triggers total
// invalidation"). Otherwise every currentFile is classified as changed
// (hash differs), new (absent from the cache), or left alone; every cached
// file absent from currentFiles is classified deleted. invalidatedPackages
// is the set of package paths (from packagePaths) that prefix any changed,
// new, or deleted path.
func (c *Cache) Validate(doc *AnalysisCache, currentFiles []string, packagePaths map[string]string) (*ValidationResult, error) {
	result := &ValidationResult{IsValid: true}

	for _, cf := range doc.ConfigFiles {
		currentHash, err := c.hashPath(cf.Path)
		if err != nil || currentHash != cf.ContentHash {
			result.ChangedConfigFiles = append(result.ChangedConfigFiles, cf.Path)
		}
	}
	if len(result.ChangedConfigFiles) > 0 {
		sort.Strings(result.ChangedConfigFiles)
		result.IsValid = false
		result.InvalidationReason = "Configuration files changed"
		return result, nil
	}

	currentSet := make(map[string]bool, len(currentFiles))
	for _, f := range currentFiles {
		currentSet[f] = true
		cached, ok := doc.Files[f]
		if !ok {
			result.NewFiles = append(result.NewFiles, f)
			continue
		}
		hash, err := c.hashPath(f)
		if err != nil || hash != cached.FileState.ContentHash {
			result.ChangedFiles = append(result.ChangedFiles, f)
		}
	}
	for f := range doc.Files {
		if !currentSet[f] {
			result.DeletedFiles = append(result.DeletedFiles, f)
		}
	}

	sort.Strings(result.NewFiles)
	sort.Strings(result.ChangedFiles)
	sort.Strings(result.DeletedFiles)

	var invalidated []string
	touched := append(append(append([]string{}, result.ChangedFiles...), result.NewFiles...), result.DeletedFiles...)
	for pkgName, pkgPath := range packagePaths {
		for _, f := range touched {
			if f == pkgPath || strings.HasPrefix(f, pkgPath+string(filepath.Separator)) {
				invalidated = append(invalidated, pkgName)
				break
			}
		}
	}
	sort.Strings(invalidated)
	result.InvalidatedPackages = invalidated

	return result, nil
}

// UpdateFile returns a copy of doc with the file-analysis entry for path
// replaced and Metadata.UpdatedAt refreshed to now.
func (c *Cache) UpdateFile(doc *AnalysisCache, path string, analysis CachedFileAnalysis, now time.Time) *AnalysisCache {
	next := cloneCache(doc)
	next.Files[path] = analysis
	next.Metadata.UpdatedAt = now
	return next
}

// UpdatePackage returns a copy of doc with the package-analysis entry for
// name replaced and Metadata.UpdatedAt refreshed to now.
func (c *Cache) UpdatePackage(doc *AnalysisCache, name string, analysis CachedPackageAnalysis, now time.Time) *AnalysisCache {
	next := cloneCache(doc)
	next.Packages[name] = analysis
	next.Metadata.UpdatedAt = now
	return next
}

// cloneCache returns a shallow copy of doc with its own Files/Packages maps,
// so UpdateFile/UpdatePackage never mutate a cache another goroutine may
// still be reading.
func cloneCache(doc *AnalysisCache) *AnalysisCache {
	next := *doc
	next.Files = make(map[string]CachedFileAnalysis, len(doc.Files))
	for k, v := range doc.Files {
		next.Files[k] = v
	}
	next.Packages = make(map[string]CachedPackageAnalysis, len(doc.Packages))
	for k, v := range doc.Packages {
		next.Packages[k] = v
	}
	return &next
}

// Save writes doc to the cache file, creating the cache directory if
// needed. Uncompressed caches are pretty-printed to aid diffing, per
// spec.md §6; gzipped caches are compact since the gzip stream itself
// isn't meant to be read by eye.
func (c *Cache) Save(doc *AnalysisCache) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Join(c.workspacePath, c.cacheDir)
	if err := c.fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var data []byte
	var err error
	if c.gzipEnabled {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return err
	}

	if c.gzipEnabled {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		data = buf.Bytes()
	}

	return c.fsys.WriteFile(c.path(), data, 0o644)
}

// Clear removes the cache directory entirely.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsys.RemoveAll(filepath.Join(c.workspacePath, c.cacheDir))
}

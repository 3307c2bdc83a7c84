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

// Package workspace discovers the packages and source files that make up a
// monorepo: every directory matched by the configured include patterns that
// carries its own package.json.
package workspace

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"driftscan.dev/driftscan/fs"
	"driftscan.dev/driftscan/manifest"
)

// ErrorKind classifies a scan error.
type ErrorKind string

const (
	InvalidPath        ErrorKind = "INVALID_PATH"
	NoPackageJSON      ErrorKind = "NO_PACKAGE_JSON"
	InvalidPackageJSON ErrorKind = "INVALID_PACKAGE_JSON"
	ReadError          ErrorKind = "READ_ERROR"
)

// ScanError records a problem encountered while scanning. Problems with one
// candidate package directory are accumulated in Result.Errors and do not
// stop the scan; a missing root is returned by Scan as an InvalidPath
// ScanError instead.
type ScanError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Path + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Path
}

func (e *ScanError) Unwrap() error { return e.Err }

// TSConfig is the subset of tsconfig.json consulted by the config
// analyzers.
type TSConfig struct {
	Module  string `json:"-"`
	OutDir  string `json:"-"`
	RootDir string `json:"-"`
}

// Package is a single discovered workspace package.
type Package struct {
	Name            string
	Version         string
	PackagePath     string
	PackageJSONPath string
	SrcPath         string
	PackageJSON     *manifest.Manifest
	SourceFiles     []string
	HasTSConfig     bool
	HasESLintConfig bool
	TSConfig        *TSConfig
}

// DefaultSourceExtensions lists the file extensions the scanner treats as
// source files when enumerating a package's files.
var DefaultSourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mts", ".cts", ".mjs", ".cjs"}

// DefaultExcludeDirs lists directory names skipped entirely while walking a
// package for source files.
var DefaultExcludeDirs = []string{"node_modules", "dist", "lib", "build", "__tests__", "__mocks__", "test", "tests"}

// DefaultIncludePatterns is the default set of package-discovery globs.
var DefaultIncludePatterns = []string{"packages/*"}

// Options configures a scan.
type Options struct {
	RootDir          string
	IncludePatterns  []string
	ExcludePackages  []string
	SourceExtensions []string
	ExcludeDirs      []string
}

func (o Options) withDefaults() Options {
	if len(o.IncludePatterns) == 0 {
		o.IncludePatterns = DefaultIncludePatterns
	}
	if len(o.SourceExtensions) == 0 {
		o.SourceExtensions = DefaultSourceExtensions
	}
	if len(o.ExcludeDirs) == 0 {
		o.ExcludeDirs = DefaultExcludeDirs
	}
	return o
}

// Result is the outcome of a scan.
type Result struct {
	Packages      []Package
	WorkspacePath string
	Errors        []ScanError
	DurationMs    int64
}

// Scan discovers every workspace package under root matching the configured
// include patterns and enumerates each package's source files.
func Scan(ctx context.Context, fsys fs.FileSystem, opts Options) (*Result, error) {
	start := time.Now()
	opts = opts.withDefaults()

	result := &Result{WorkspacePath: opts.RootDir}

	if !fsys.Exists(opts.RootDir) {
		return nil, &ScanError{Kind: InvalidPath, Path: opts.RootDir}
	}

	excluded := toSet(opts.ExcludePackages)

	dirs, err := candidateDirs(fsys, opts.RootDir, opts.IncludePatterns)
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		pkg, scanErr := loadPackage(fsys, dir, opts)
		if scanErr != nil {
			result.Errors = append(result.Errors, *scanErr)
			continue
		}
		if excluded[pkg.Name] {
			continue
		}
		result.Packages = append(result.Packages, pkg)
	}

	sort.Slice(result.Packages, func(i, j int) bool {
		return result.Packages[i].PackagePath < result.Packages[j].PackagePath
	})

	result.DurationMs = time.Since(start).Milliseconds()
	return result, nil
}

// candidateDirs expands every include pattern into a sorted, de-duplicated
// list of directories that exist under root. Patterns are resolved with
// doublestar so arbitrary glob positions work, not just a trailing "/*".
func candidateDirs(fsys fs.FileSystem, root string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string

	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(pattern, "/")

		if !strings.Contains(pattern, "*") {
			full := filepath.Join(root, pattern)
			if fsys.Exists(full) && !seen[full] {
				seen[full] = true
				dirs = append(dirs, full)
			}
			continue
		}

		matches, err := doublestar.Glob(fsys, filepath.ToSlash(filepath.Join(root, pattern)))
		if err != nil {
			continue
		}
		for _, m := range matches {
			full := filepath.FromSlash(m)
			info, err := fsys.Stat(full)
			if err != nil || !info.IsDir() {
				continue
			}
			if !seen[full] {
				seen[full] = true
				dirs = append(dirs, full)
			}
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

// loadPackage parses dir's package.json and enumerates its source files.
func loadPackage(fsys fs.FileSystem, dir string, opts Options) (Package, *ScanError) {
	pkgJSONPath := filepath.Join(dir, "package.json")
	if !fsys.Exists(pkgJSONPath) {
		return Package{}, &ScanError{Kind: NoPackageJSON, Path: dir}
	}

	m, err := manifest.ParseFile(fsys, pkgJSONPath)
	if err != nil {
		return Package{}, &ScanError{Kind: ReadError, Path: pkgJSONPath, Err: err}
	}
	if m.Name == "" || m.Version == "" {
		return Package{}, &ScanError{Kind: InvalidPackageJSON, Path: pkgJSONPath}
	}

	srcPath := filepath.Join(dir, "src")
	if !fsys.Exists(srcPath) {
		srcPath = dir
	}

	files, err := collectSourceFiles(fsys, srcPath, opts)
	if err != nil {
		return Package{}, &ScanError{Kind: ReadError, Path: srcPath, Err: err}
	}

	tsConfigPath := filepath.Join(dir, "tsconfig.json")
	hasTSConfig := fsys.Exists(tsConfigPath)
	hasESLintConfig := fsys.Exists(filepath.Join(dir, ".eslintrc.json")) ||
		fsys.Exists(filepath.Join(dir, ".eslintrc.js")) ||
		fsys.Exists(filepath.Join(dir, "eslint.config.js")) ||
		fsys.Exists(filepath.Join(dir, "eslint.config.mjs"))

	var tsConfig *TSConfig
	if hasTSConfig {
		tsConfig = parseTSConfig(fsys, tsConfigPath)
	}

	return Package{
		Name:            m.Name,
		Version:         m.Version,
		PackagePath:     dir,
		PackageJSONPath: pkgJSONPath,
		SrcPath:         srcPath,
		PackageJSON:     m,
		SourceFiles:     files,
		HasTSConfig:     hasTSConfig,
		HasESLintConfig: hasESLintConfig,
		TSConfig:        tsConfig,
	}, nil
}

// tsConfigCompilerOptions is the subset of tsconfig.json's compilerOptions
// the config analyzers consult.
type tsConfigCompilerOptions struct {
	Module  string `json:"module"`
	OutDir  string `json:"outDir"`
	RootDir string `json:"rootDir"`
}

type tsConfigFile struct {
	CompilerOptions tsConfigCompilerOptions `json:"compilerOptions"`
}

// parseTSConfig best-effort parses tsconfig.json's compiler options. A
// malformed or unreadable file yields a zero-value TSConfig rather than a
// scan error, since tsconfig.json commonly carries JSONC comments that a
// strict JSON parser rejects; rules consult HasTSConfig together with the
// parsed fields and treat blank fields as "not configured".
func parseTSConfig(fsys fs.FileSystem, path string) *TSConfig {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return &TSConfig{}
	}
	var parsed tsConfigFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return &TSConfig{}
	}
	return &TSConfig{
		Module:  parsed.CompilerOptions.Module,
		OutDir:  parsed.CompilerOptions.OutDir,
		RootDir: parsed.CompilerOptions.RootDir,
	}
}

// collectSourceFiles recursively walks root, skipping excluded directory
// names and test files, collecting every file whose extension is in
// opts.SourceExtensions.
func collectSourceFiles(fsys fs.FileSystem, root string, opts Options) ([]string, error) {
	excludeDirs := toSet(opts.ExcludeDirs)
	extSet := toSet(opts.SourceExtensions)

	var files []string
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			return err
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			name := entry.Name()
			full := filepath.Join(dir, name)

			if entry.IsDir() {
				if excludeDirs[name] {
					continue
				}
				if err := walk(full); err != nil {
					return err
				}
				continue
			}

			ext := filepath.Ext(name)
			if !extSet[ext] {
				continue
			}
			if isTestFile(name) {
				continue
			}
			files = append(files, full)
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return files, nil
}

func isTestFile(name string) bool {
	return strings.Contains(name, ".test.") || strings.Contains(name, ".spec.")
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

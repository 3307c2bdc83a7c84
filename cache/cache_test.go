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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"driftscan.dev/driftscan/hashing"
	"driftscan.dev/driftscan/internal/mapfs"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	fsys := mapfs.New()
	c := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws", CacheDir: ".driftscan-cache"})

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := NewAnalysisCache("/ws", "confighash", "1.0.0", "run-1", now)
	doc.Files["/ws/a/a.ts"] = CachedFileAnalysis{
		FileState: CachedFileState{Path: "/ws/a/a.ts", ContentHash: "deadbeef"},
	}

	require.NoError(t, c.Save(doc))

	c2 := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws", CacheDir: ".driftscan-cache"})
	loaded, err := c2.Load()
	require.NoError(t, err)
	require.Equal(t, SchemaVersion, loaded.Metadata.SchemaVersion)
	require.Equal(t, "confighash", loaded.Metadata.ConfigHash)
	require.Contains(t, loaded.Files, "/ws/a/a.ts")
}

func TestSaveThenLoadRoundTripsGzipped(t *testing.T) {
	fsys := mapfs.New()
	c := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws", CacheDir: ".driftscan-cache", Gzip: true})

	doc := NewAnalysisCache("/ws", "confighash", "1.0.0", "run-1", time.Now())
	require.NoError(t, c.Save(doc))

	c2 := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws", CacheDir: ".driftscan-cache", Gzip: true})
	loaded, err := c2.Load()
	require.NoError(t, err)
	require.Equal(t, "confighash", loaded.Metadata.ConfigHash)
}

func TestLoadMissingCacheReturnsNotFound(t *testing.T) {
	fsys := mapfs.New()
	c := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws", CacheDir: ".driftscan-cache"})

	_, err := c.Load()
	require.Error(t, err)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, NotFound, cerr.Kind)
}

func TestLoadVersionMismatch(t *testing.T) {
	fsys := mapfs.New()
	c := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws", CacheDir: ".driftscan-cache"})

	doc := NewAnalysisCache("/ws", "confighash", "1.0.0", "run-1", time.Now())
	doc.Metadata.SchemaVersion = SchemaVersion + 1
	require.NoError(t, c.Save(doc))

	c2 := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws", CacheDir: ".driftscan-cache"})
	_, err := c2.Load()
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, VersionMismatch, cerr.Kind)
}

func TestLoadExpired(t *testing.T) {
	fsys := mapfs.New()
	c := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws", CacheDir: ".driftscan-cache", MaxAge: time.Hour})

	doc := NewAnalysisCache("/ws", "confighash", "1.0.0", "run-1", time.Now().Add(-2*time.Hour))
	require.NoError(t, c.Save(doc))

	c2 := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws", CacheDir: ".driftscan-cache", MaxAge: time.Hour})
	_, err := c2.Load()
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, Expired, cerr.Kind)
}

func TestQuickValidateChecksAllFields(t *testing.T) {
	c := NewCache(mapfs.New(), hashing.New(), Options{WorkspacePath: "/ws"})
	doc := NewAnalysisCache("/ws", "confighash", "1.0.0", "run-1", time.Now())

	require.True(t, c.QuickValidate(doc, "/ws", "confighash", "1.0.0"))
	require.False(t, c.QuickValidate(doc, "/ws", "otherhash", "1.0.0"))
	require.False(t, c.QuickValidate(doc, "/other-ws", "confighash", "1.0.0"))
	require.False(t, c.QuickValidate(doc, "/ws", "confighash", "2.0.0"))
}

func TestValidateDetectsChangedNewAndDeletedFiles(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/ws/a/a.ts", "const a = 1;", 0o644)
	fsys.AddFile("/ws/a/b.ts", "const b = 2;", 0o644)

	c := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws"})
	doc := NewAnalysisCache("/ws", "confighash", "1.0.0", "run-1", time.Now())
	doc.Files["/ws/a/a.ts"] = CachedFileAnalysis{FileState: CachedFileState{Path: "/ws/a/a.ts", ContentHash: "stale"}}
	doc.Files["/ws/a/deleted.ts"] = CachedFileAnalysis{FileState: CachedFileState{Path: "/ws/a/deleted.ts", ContentHash: "whatever"}}

	result, err := c.Validate(doc, []string{"/ws/a/a.ts", "/ws/a/b.ts"}, map[string]string{"a": "/ws/a"})
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.Equal(t, []string{"/ws/a/a.ts"}, result.ChangedFiles)
	require.Equal(t, []string{"/ws/a/b.ts"}, result.NewFiles)
	require.Equal(t, []string{"/ws/a/deleted.ts"}, result.DeletedFiles)
	require.Equal(t, []string{"a"}, result.InvalidatedPackages)
}

func TestValidateInvalidatesOnConfigFileChange(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/ws/tsconfig.json", `{"compilerOptions":{}}`, 0o644)

	c := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws"})
	doc := NewAnalysisCache("/ws", "confighash", "1.0.0", "run-1", time.Now())
	doc.ConfigFiles = []CachedFileState{{Path: "/ws/tsconfig.json", ContentHash: "stale"}}

	result, err := c.Validate(doc, nil, nil)
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Equal(t, "Configuration files changed", result.InvalidationReason)
	require.Equal(t, []string{"/ws/tsconfig.json"}, result.ChangedConfigFiles)
}

func TestUpdateFileDoesNotMutateOriginal(t *testing.T) {
	c := NewCache(mapfs.New(), hashing.New(), Options{WorkspacePath: "/ws"})
	doc := NewAnalysisCache("/ws", "confighash", "1.0.0", "run-1", time.Now())

	updated := c.UpdateFile(doc, "/ws/a/a.ts", CachedFileAnalysis{FileState: CachedFileState{Path: "/ws/a/a.ts"}}, time.Now())

	require.Empty(t, doc.Files)
	require.Contains(t, updated.Files, "/ws/a/a.ts")
}

func TestClearRemovesCacheDirectory(t *testing.T) {
	fsys := mapfs.New()
	c := NewCache(fsys, hashing.New(), Options{WorkspacePath: "/ws", CacheDir: ".driftscan-cache"})
	require.NoError(t, c.Save(NewAnalysisCache("/ws", "confighash", "1.0.0", "run-1", time.Now())))

	require.True(t, fsys.Exists("/ws/.driftscan-cache/analysis-cache.json"))
	require.NoError(t, c.Clear())
	require.False(t, fsys.Exists("/ws/.driftscan-cache/analysis-cache.json"))
}

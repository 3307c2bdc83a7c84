package workspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"driftscan.dev/driftscan/internal/mapfs"
)

func newFixture() *mapfs.MapFileSystem {
	m := mapfs.New()
	m.AddFile("/repo/package.json", `{"name":"root","version":"1.0.0","workspaces":["packages/*"]}`, 0o644)
	m.AddFile("/repo/packages/a/package.json", `{"name":"@acme/a","version":"1.0.0","dependencies":{"lodash":"^4.0.0"}}`, 0o644)
	m.AddFile("/repo/packages/a/src/index.ts", `import {debounce} from 'lodash';\nexport const a = 1;`, 0o644)
	m.AddFile("/repo/packages/a/src/index.test.ts", `test('x', () => {});`, 0o644)
	m.AddFile("/repo/packages/b/package.json", `{"name":"@acme/b","version":"1.0.0"}`, 0o644)
	m.AddFile("/repo/packages/b/src/index.ts", `import '@acme/a';`, 0o644)
	m.AddFile("/repo/packages/b/src/node_modules/vendored/index.ts", `export const v = 1;`, 0o644)
	return m
}

func TestScanDiscoversPackages(t *testing.T) {
	m := newFixture()
	result, err := Scan(context.Background(), m, Options{RootDir: "/repo"})
	require.NoError(t, err)
	require.Len(t, result.Packages, 2)
	require.Equal(t, "@acme/a", result.Packages[0].Name)
	require.Equal(t, "@acme/b", result.Packages[1].Name)
}

func TestScanExcludesTestFilesAndNodeModules(t *testing.T) {
	m := newFixture()
	result, err := Scan(context.Background(), m, Options{RootDir: "/repo"})
	require.NoError(t, err)

	pkgB := result.Packages[1]
	require.Len(t, pkgB.SourceFiles, 1)
	require.Equal(t, "/repo/packages/b/src/index.ts", pkgB.SourceFiles[0])
}

func TestScanExcludePackages(t *testing.T) {
	m := newFixture()
	result, err := Scan(context.Background(), m, Options{RootDir: "/repo", ExcludePackages: []string{"@acme/b"}})
	require.NoError(t, err)
	require.Len(t, result.Packages, 1)
	require.Equal(t, "@acme/a", result.Packages[0].Name)
}

func TestScanInvalidPath(t *testing.T) {
	m := mapfs.New()
	_, err := Scan(context.Background(), m, Options{RootDir: "/does-not-exist"})
	require.Error(t, err)
	var scanErr *ScanError
	require.ErrorAs(t, err, &scanErr)
	require.Equal(t, InvalidPath, scanErr.Kind)
}

func TestScanAccumulatesPerPackageErrors(t *testing.T) {
	m := newFixture()
	m.AddFile("/repo/packages/c/package.json", `{"name":""}`, 0o644)

	result, err := Scan(context.Background(), m, Options{RootDir: "/repo"})
	require.NoError(t, err)
	require.Len(t, result.Packages, 2)
	require.Len(t, result.Errors, 1)
	require.Equal(t, InvalidPackageJSON, result.Errors[0].Kind)
}

func TestScanRespectsCancellation(t *testing.T) {
	m := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Scan(ctx, m, Options{RootDir: "/repo"})
	require.Error(t, err)
}

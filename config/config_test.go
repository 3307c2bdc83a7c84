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

package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"driftscan.dev/driftscan/internal/mapfs"
	"driftscan.dev/driftscan/issue"
)

func TestLoadFillsDefaultsForOmittedFields(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/ws/driftscan.yml", "minSeverity: warning\n", 0o644)

	cfg, err := Load(fsys, "/ws/driftscan.yml")
	require.NoError(t, err)
	require.Equal(t, "warning", cfg.MinSeverity)
	require.Equal(t, 4, cfg.Concurrency)
	require.Equal(t, ".driftscan-cache", cfg.CacheDir)
	require.True(t, cfg.CacheEnabled())
}

func TestLoadParsesAnalyzerOverrides(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/ws/driftscan.yml", `
analyzers:
  circular-import:
    enabled: false
  duplicate-code:
    severity: warning
    options:
      similarityThreshold: 0.9
`, 0o644)

	cfg, err := Load(fsys, "/ws/driftscan.yml")
	require.NoError(t, err)

	overrides := cfg.AnalyzerOverrides()
	require.NotNil(t, overrides["circular-import"].Enabled)
	require.False(t, *overrides["circular-import"].Enabled)
	require.NotNil(t, overrides["duplicate-code"].Severity)
	require.Equal(t, issue.Warning, *overrides["duplicate-code"].Severity)
	require.Equal(t, 0.9, overrides["duplicate-code"].Options["similarityThreshold"])
}

func TestCacheEnabledDefaultsTrueWhenOmitted(t *testing.T) {
	cfg := Defaults()
	require.True(t, cfg.CacheEnabled())
}

func TestCacheEnabledFalseWhenExplicitlyDisabled(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/ws/driftscan.yml", "cache: false\n", 0o644)

	cfg, err := Load(fsys, "/ws/driftscan.yml")
	require.NoError(t, err)
	require.False(t, cfg.CacheEnabled())
}

func TestFilterOptionsBuildsFromMinSeverityAndCategories(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/ws/driftscan.yml", "minSeverity: error\ncategories: [architecture, dependency]\n", 0o644)

	cfg, err := Load(fsys, "/ws/driftscan.yml")
	require.NoError(t, err)

	opts := cfg.FilterOptions()
	require.Equal(t, issue.Error, opts.MinSeverity)
	require.ElementsMatch(t, []issue.Category{issue.Architecture, issue.Dependency}, opts.Categories)
}

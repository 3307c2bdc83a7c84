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

package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"driftscan.dev/driftscan/analyzers"
	"driftscan.dev/driftscan/config"
	"driftscan.dev/driftscan/internal/mapfs"
	"driftscan.dev/driftscan/issue"
)

// singlePackageFixture is spec.md §8 scenario 3: a package whose manifest
// lists two dependencies, one of which ("ramda") is never imported.
func singlePackageFixture() *mapfs.MapFileSystem {
	m := mapfs.New()
	m.AddFile("/ws/packages/a/package.json", `{
		"name": "@acme/a",
		"version": "1.0.0",
		"dependencies": {"ramda": "^0.29.0", "lodash": "^4.17.21"}
	}`, 0o644)
	m.AddFile("/ws/packages/a/src/index.ts", `import {debounce} from 'lodash';
export const a = 1;`, 0o644)
	return m
}

func newTestOrchestrator(fsys *mapfs.MapFileSystem) *Orchestrator {
	return New(fsys, analyzers.NewDefaultRegistry())
}

func TestRunFlagsUnusedDependency(t *testing.T) {
	fsys := singlePackageFixture()
	o := newTestOrchestrator(fsys)
	cfg := config.Defaults()

	result, err := o.Run(context.Background(), "/ws", &cfg, nil)
	require.NoError(t, err)

	var found *issue.Issue
	for i := range result.Issues {
		if result.Issues[i].Category == issue.Dependency && result.Issues[i].Metadata["dependency"] == "ramda" {
			found = &result.Issues[i]
			break
		}
	}
	require.NotNil(t, found, "expected an unused-dependency issue naming ramda")
	require.Equal(t, "unused-dependency/ramda", found.ID)
}

// TestRunCacheReuseYieldsIdenticalIssues covers spec.md §8 scenario 5: a
// second run over an unchanged workspace, with caching enabled, must not
// error and must return the same issue multiset as the first run.
func TestRunCacheReuseYieldsIdenticalIssues(t *testing.T) {
	fsys := singlePackageFixture()
	o := newTestOrchestrator(fsys)
	cfg := config.Defaults()

	first, err := o.Run(context.Background(), "/ws", &cfg, nil)
	require.NoError(t, err)
	require.NotEmpty(t, fsys.ListFiles()["ws/.driftscan-cache/analysis-cache.json"], "expected the cache file to be written")

	second, err := o.Run(context.Background(), "/ws", &cfg, nil)
	require.NoError(t, err)

	require.Equal(t, issueIDs(first.Issues), issueIDs(second.Issues))
	require.Equal(t, first.Summary.TotalIssues, second.Summary.TotalIssues)
}

// TestRunConfigChangeInvalidatesCache covers spec.md §8 scenario 6: after a
// cached run, changing minSeverity must still return a complete, correct
// issue set rather than silently reusing a cache keyed to the old config.
func TestRunConfigChangeInvalidatesCache(t *testing.T) {
	fsys := singlePackageFixture()
	o := newTestOrchestrator(fsys)
	cfg := config.Defaults()

	_, err := o.Run(context.Background(), "/ws", &cfg, nil)
	require.NoError(t, err)

	cfg.MinSeverity = "critical"
	filtered, err := o.Run(context.Background(), "/ws", &cfg, nil)
	require.NoError(t, err)
	for _, i := range filtered.Issues {
		require.GreaterOrEqual(t, i.Severity, issue.Critical)
	}

	cfg.MinSeverity = ""
	restored, err := o.Run(context.Background(), "/ws", &cfg, nil)
	require.NoError(t, err)
	require.NotEmpty(t, restored.Issues, "expected a full re-analysis to still find the unused-dependency issue")
}

func TestRunFailsWithNoPackages(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("/empty/.keep", "", 0o644)
	o := newTestOrchestrator(fsys)
	cfg := config.Defaults()

	_, err := o.Run(context.Background(), "/empty", &cfg, nil)
	require.Error(t, err)
	var orchErr *Error
	require.ErrorAs(t, err, &orchErr)
	require.Equal(t, NoPackages, orchErr.Kind)
}

func TestRunRespectsCancellation(t *testing.T) {
	fsys := singlePackageFixture()
	o := newTestOrchestrator(fsys)
	cfg := config.Defaults()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Run(ctx, "/ws", &cfg, nil)
	require.Error(t, err)
}

func TestRunEmitsProgressInPhaseOrder(t *testing.T) {
	fsys := singlePackageFixture()
	o := newTestOrchestrator(fsys)
	cfg := config.Defaults()

	var phases []Phase
	seen := make(map[Phase]bool)
	_, err := o.Run(context.Background(), "/ws", &cfg, func(e ProgressEvent) {
		if !seen[e.Phase] {
			seen[e.Phase] = true
			phases = append(phases, e.Phase)
		}
	})
	require.NoError(t, err)
	require.Equal(t, []Phase{PhaseScanning, PhaseParsing, PhaseAnalyzing, PhaseReporting}, phases)
}

func issueIDs(issues []issue.Issue) []string {
	ids := make([]string, len(issues))
	for i, iss := range issues {
		ids[i] = iss.ID + "@" + iss.Location.FilePath
	}
	return ids
}

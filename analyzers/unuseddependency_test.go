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
	"testing"

	"github.com/stretchr/testify/require"

	"driftscan.dev/driftscan/analyzer"
	"driftscan.dev/driftscan/manifest"
	"driftscan.dev/driftscan/source"
	"driftscan.dev/driftscan/workspace"
)

func TestUnusedDependencyFlagsDeclaredButUnimported(t *testing.T) {
	p := pkg("a", "/ws/a", &manifest.Manifest{
		Dependencies: map[string]string{"ramda": "^0.29.0", "lodash": "^4.17.21"},
	})
	p.SourceFiles = []string{"/ws/a/src/index.ts"}
	actx := &analyzer.Context{
		Packages: []workspace.Package{p},
		Extracted: map[string]*source.ImportExtractionResult{
			"/ws/a/src/index.ts": {ExternalDependencies: []string{"lodash"}},
		},
	}

	issues, err := UnusedDependencyAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, "unused-dependency/ramda", issues[0].ID)
}

func TestUnusedDependencyHonoursWorkspaceProtocol(t *testing.T) {
	p := pkg("a", "/ws/a", &manifest.Manifest{
		Dependencies: map[string]string{"@acme/shared": "workspace:*"},
	})
	p.SourceFiles = []string{"/ws/a/src/index.ts"}
	actx := &analyzer.Context{
		Packages: []workspace.Package{p},
		Extracted: map[string]*source.ImportExtractionResult{
			"/ws/a/src/index.ts": {WorkspaceDependencies: []string{"@acme/shared"}},
		},
	}

	issues, err := UnusedDependencyAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Empty(t, issues, "a workspace-protocol dependency imported under its workspace name is used")
}

func TestUnusedDependencyFlagsUnimportedWorkspaceDependency(t *testing.T) {
	p := pkg("a", "/ws/a", &manifest.Manifest{
		Dependencies: map[string]string{"@acme/shared": "workspace:*"},
	})
	p.SourceFiles = []string{"/ws/a/src/index.ts"}
	actx := &analyzer.Context{
		Packages:  []workspace.Package{p},
		Extracted: map[string]*source.ImportExtractionResult{"/ws/a/src/index.ts": {}},
	}

	issues, err := UnusedDependencyAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, "unused-dependency/@acme/shared", issues[0].ID)
}

func TestUnusedDependencyIgnoresDevDependenciesByDefault(t *testing.T) {
	p := pkg("a", "/ws/a", &manifest.Manifest{
		Dependencies:    map[string]string{"lodash": "^4.17.21"},
		DevDependencies: map[string]string{"chalk": "^5.0.0"},
	})
	p.SourceFiles = []string{"/ws/a/src/index.ts"}
	actx := &analyzer.Context{
		Packages: []workspace.Package{p},
		Extracted: map[string]*source.ImportExtractionResult{
			"/ws/a/src/index.ts": {ExternalDependencies: []string{"lodash"}},
		},
	}

	issues, err := UnusedDependencyAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Empty(t, issues, "devDependencies are ignored unless checkDevDependencies is enabled")
}

func TestUnusedDependencyFlagsUnimportedDevDependencyWhenEnabled(t *testing.T) {
	p := pkg("a", "/ws/a", &manifest.Manifest{
		Dependencies:    map[string]string{"lodash": "^4.17.21"},
		DevDependencies: map[string]string{"chalk": "^5.0.0"},
	})
	p.SourceFiles = []string{"/ws/a/src/index.ts"}
	actx := &analyzer.Context{
		Packages: []workspace.Package{p},
		Extracted: map[string]*source.ImportExtractionResult{
			"/ws/a/src/index.ts": {ExternalDependencies: []string{"lodash"}},
		},
		Options: map[string]any{"checkDevDependencies": true},
	}

	issues, err := UnusedDependencyAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, "unused-dependency/chalk", issues[0].ID)
}

func TestUnusedDependencyHonoursDefaultBuildToolAllowList(t *testing.T) {
	p := pkg("a", "/ws/a", &manifest.Manifest{
		Dependencies: map[string]string{"typescript": "^5.0.0"},
	})
	actx := &analyzer.Context{Packages: []workspace.Package{p}}

	issues, err := UnusedDependencyAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Empty(t, issues, "typescript is a build-tool dependency never directly imported")
}

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
	"driftscan.dev/driftscan/workspace"
)

func pkg(name, path string, m *manifest.Manifest) workspace.Package {
	return workspace.Package{
		Name:            name,
		PackagePath:     path,
		PackageJSONPath: path + "/package.json",
		SrcPath:         path,
		PackageJSON:     m,
	}
}

func TestPackageManifestAnalyzerFlagsMissingFields(t *testing.T) {
	actx := &analyzer.Context{
		Packages: []workspace.Package{pkg("a", "/ws/a", &manifest.Manifest{})},
	}
	issues, err := PackageManifestAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Len(t, issues, 2)
}

func TestPackageManifestAnalyzerHonoursExemptions(t *testing.T) {
	actx := &analyzer.Context{
		Packages: []workspace.Package{pkg("a", "/ws/a", &manifest.Manifest{})},
		Options:  map[string]any{"exemptions": []any{"a"}},
	}
	issues, err := PackageManifestAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestVersionAlignmentFlagsMismatch(t *testing.T) {
	actx := &analyzer.Context{
		Packages: []workspace.Package{
			pkg("a", "/ws/a", &manifest.Manifest{Dependencies: map[string]string{"lodash": "^4.0.0"}}),
			pkg("b", "/ws/b", &manifest.Manifest{Dependencies: map[string]string{"lodash": "^3.0.0"}}),
		},
	}
	issues, err := VersionAlignmentAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, "lodash", issues[0].Metadata["dependency"])
}

func TestVersionAlignmentIgnoresWorkspaceProtocol(t *testing.T) {
	actx := &analyzer.Context{
		Packages: []workspace.Package{
			pkg("a", "/ws/a", &manifest.Manifest{Dependencies: map[string]string{"b": "workspace:*"}}),
			pkg("b", "/ws/b", &manifest.Manifest{}),
		},
	}
	issues, err := VersionAlignmentAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestPeerDependencyFlagsMissingDevDependency(t *testing.T) {
	actx := &analyzer.Context{
		Packages: []workspace.Package{
			pkg("a", "/ws/a", &manifest.Manifest{PeerDependencies: map[string]string{"react": "^18.0.0"}}),
		},
	}
	issues, err := PeerDependencyAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
}

func TestPeerDependencySatisfiedByDevDependency(t *testing.T) {
	actx := &analyzer.Context{
		Packages: []workspace.Package{
			pkg("a", "/ws/a", &manifest.Manifest{
				PeerDependencies: map[string]string{"react": "^18.0.0"},
				DevDependencies:  map[string]string{"react": "^18.0.0"},
			}),
		},
	}
	issues, err := PeerDependencyAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestDuplicateDependencyFlagsKnownPair(t *testing.T) {
	actx := &analyzer.Context{
		Packages: []workspace.Package{
			pkg("a", "/ws/a", &manifest.Manifest{Dependencies: map[string]string{"moment": "^2.0.0", "dayjs": "^1.0.0"}}),
		},
	}
	issues, err := DuplicateDependencyAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
}

func TestCrossConfigAnalyzerRequiresMinPackages(t *testing.T) {
	actx := &analyzer.Context{
		Packages: []workspace.Package{
			pkg("a", "/ws/a", &manifest.Manifest{Type: "module"}),
			pkg("b", "/ws/b", &manifest.Manifest{Type: "commonjs"}),
		},
	}
	issues, err := CrossConfigAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestCrossConfigAnalyzerFlagsMinorityType(t *testing.T) {
	actx := &analyzer.Context{
		Packages: []workspace.Package{
			pkg("a", "/ws/a", &manifest.Manifest{Type: "module"}),
			pkg("b", "/ws/b", &manifest.Manifest{Type: "module"}),
			pkg("c", "/ws/c", &manifest.Manifest{Type: "module"}),
			pkg("d", "/ws/d", &manifest.Manifest{Type: "commonjs"}),
		},
	}
	issues, err := CrossConfigAnalyzer{}.Analyze(context.Background(), actx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, "/ws/d/package.json", issues[0].Location.FilePath)
}

func TestJaccardSimilarityIdenticalSets(t *testing.T) {
	a := tokenSet([]string{"call_expression", "return_statement", "identifier"})
	b := tokenSet([]string{"call_expression", "return_statement", "identifier"})
	require.Equal(t, 1.0, jaccardSimilarity(a, b))
}

func TestJaccardSimilarityDisjointSets(t *testing.T) {
	a := tokenSet([]string{"call_expression"})
	b := tokenSet([]string{"return_statement"})
	require.Equal(t, 0.0, jaccardSimilarity(a, b))
}

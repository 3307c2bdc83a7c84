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

package depgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"driftscan.dev/driftscan/source"
)

func extraction(path string, specifiers ...string) FileExtraction {
	result := &source.ImportExtractionResult{FilePath: path}
	for _, s := range specifiers {
		result.Imports = append(result.Imports, source.ExtractedImport{
			ModuleSpecifier: s,
			Type:            source.ImportStatic,
			IsRelative:      true,
		})
	}
	return FileExtraction{PackageName: "pkg", Result: result}
}

func TestBuildPopulatesForwardAndReverseEdges(t *testing.T) {
	files := []FileExtraction{
		extraction("/ws/a.ts", "./b"),
		extraction("/ws/b.ts"),
	}
	g := Build("/ws", files, BuildOptions{})

	a := g.Node("a.ts")
	require.NotNil(t, a)
	require.Equal(t, []string{"b.ts"}, a.Imports)

	b := g.Node("b.ts")
	require.NotNil(t, b)
	require.Equal(t, []string{"a.ts"}, b.ImportedBy)
}

func TestFindCyclesDetectsDirectCycle(t *testing.T) {
	files := []FileExtraction{
		extraction("/ws/a.ts", "./b"),
		extraction("/ws/b.ts", "./a"),
	}
	g := Build("/ws", files, BuildOptions{})

	cycles := g.FindCycles(0)
	require.Len(t, cycles, 1)
	require.Contains(t, cycles[0].Nodes, "a.ts")
	require.Contains(t, cycles[0].Nodes, "b.ts")
}

func TestFindCyclesRespectsMaxLength(t *testing.T) {
	files := []FileExtraction{
		extraction("/ws/a.ts", "./b"),
		extraction("/ws/b.ts", "./c"),
		extraction("/ws/c.ts", "./a"),
	}
	g := Build("/ws", files, BuildOptions{})

	require.Len(t, g.FindCycles(0), 1)
	require.Empty(t, g.FindCycles(2))
}

func TestTransitiveDependenciesTerminatesOnCycle(t *testing.T) {
	files := []FileExtraction{
		extraction("/ws/a.ts", "./b"),
		extraction("/ws/b.ts", "./a"),
	}
	g := Build("/ws", files, BuildOptions{})

	deps := g.TransitiveDependencies("a.ts")
	require.Equal(t, []string{"b.ts"}, deps)
}

func TestIsTestNode(t *testing.T) {
	require.True(t, IsTestNode(&Node{FilePath: "/ws/foo.test.ts"}))
	require.False(t, IsTestNode(&Node{FilePath: "/ws/foo.ts"}))
}

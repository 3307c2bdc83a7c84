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

import "sort"

// Cycle is one discovered cycle: the sequence of node ids traversed by the
// DFS, with the closing edge back to the first element implied.
type Cycle struct {
	Nodes []string
}

// FindCycles discovers every cycle among internal nodes, using a recursion
// stack tracked across a depth-first search seeded in sorted node-id order
// so discovery is deterministic. Cycles whose length exceeds maxCycleLength
// are discovered but not reported; 0 or negative disables the cap. Cycles
// are reported exactly as found by the DFS - no canonical-rotation
// deduplication is performed (see DESIGN.md open-question decision).
func (g *Graph) FindCycles(maxCycleLength int) []Cycle {
	g.mu.RLock()
	adjacency := make(map[string][]string, len(g.nodes))
	ids := make([]string, 0, len(g.nodes))
	for id, n := range g.nodes {
		if n.IsExternal {
			continue
		}
		ids = append(ids, id)
		internal := make([]string, 0, len(n.Imports))
		for _, dep := range n.Imports {
			if target, ok := g.nodes[dep]; ok && !target.IsExternal {
				internal = append(internal, dep)
			}
		}
		sort.Strings(internal)
		adjacency[id] = internal
	}
	g.mu.RUnlock()

	sort.Strings(ids)

	visited := make(map[string]bool, len(ids))
	var cycles []Cycle

	for _, id := range ids {
		if visited[id] {
			continue
		}
		recStack := make(map[string]bool)
		path := make([]string, 0)
		dfsFindCycles(id, adjacency, visited, recStack, path, &cycles)
	}

	if maxCycleLength > 0 {
		filtered := cycles[:0]
		for _, c := range cycles {
			if len(c.Nodes) <= maxCycleLength {
				filtered = append(filtered, c)
			}
		}
		cycles = filtered
	}

	return cycles
}

func dfsFindCycles(node string, adjacency map[string][]string, visited, recStack map[string]bool, path []string, cycles *[]Cycle) {
	visited[node] = true
	recStack[node] = true
	path = append(path, node)

	for _, next := range adjacency[node] {
		if recStack[next] {
			*cycles = append(*cycles, Cycle{Nodes: extractCycle(path, next)})
			continue
		}
		if !visited[next] {
			dfsFindCycles(next, adjacency, visited, recStack, path, cycles)
		}
	}

	recStack[node] = false
}

// extractCycle returns the slice of path from the first occurrence of start
// to the end, representing the cycle that closes back to start.
func extractCycle(path []string, start string) []string {
	for i, n := range path {
		if n == start {
			cycle := make([]string, len(path)-i)
			copy(cycle, path[i:])
			return cycle
		}
	}
	return nil
}

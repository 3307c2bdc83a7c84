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

// Package depgraph builds the inter-file dependency graph from extracted
// imports and answers cycle-detection and reachability queries over it.
package depgraph

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"driftscan.dev/driftscan/source"
)

// Node is a single file or external specifier in the graph. External
// specifier nodes are leaves: they have no Imports/ImportDetails.
type Node struct {
	ID            string
	Name          string
	FilePath      string
	PackageName   string
	IsExternal    bool
	Imports       []string
	ImportedBy    []string
	ImportDetails []source.ExtractedImport
}

// Edge is a single directed dependency between two node ids. External
// targets always get a node; To has no node when it is a relative target
// whose file was not among the extracted files.
type Edge struct {
	From       string
	To         string
	Type       source.ImportType
	IsTypeOnly bool
}

// Graph is the dependency graph for one workspace.
type Graph struct {
	mu       sync.RWMutex
	RootPath string
	nodes    map[string]*Node
	edges    []Edge
}

// New creates an empty graph rooted at rootPath.
func New(rootPath string) *Graph {
	return &Graph{RootPath: rootPath, nodes: make(map[string]*Node)}
}

// BuildOptions configures graph construction.
type BuildOptions struct {
	// IncludeTypeImports controls whether type-only import edges are kept.
	// The zero value (false) drops them; set it to true to keep them.
	IncludeTypeImports bool
}

// FileExtraction pairs a package name with its per-file extraction result,
// since the graph needs to know which workspace package a file belongs to.
type FileExtraction struct {
	PackageName string
	Result      *source.ImportExtractionResult
}

// Build constructs a graph from a set of per-file extraction results. Pass 1
// creates nodes and forward edges; pass 2 populates ImportedBy by
// reverse-indexing the edge list.
func Build(rootPath string, files []FileExtraction, opts BuildOptions) *Graph {
	g := New(rootPath)

	for _, f := range files {
		id := canonicalID(rootPath, f.Result.FilePath)
		g.nodes[id] = &Node{
			ID:          id,
			Name:        filepath.Base(f.Result.FilePath),
			FilePath:    f.Result.FilePath,
			PackageName: f.PackageName,
		}
	}

	for _, f := range files {
		fromID := canonicalID(rootPath, f.Result.FilePath)
		for _, imp := range f.Result.Imports {
			if imp.Type == source.ImportTypeOnly && !opts.IncludeTypeImports {
				continue
			}

			var toID string
			if imp.IsRelative {
				toID = resolveRelative(f.Result.FilePath, imp.ModuleSpecifier)
				toID = canonicalID(rootPath, toID)
			} else {
				toID = imp.ModuleSpecifier
				if _, exists := g.nodes[toID]; !exists {
					g.nodes[toID] = &Node{ID: toID, Name: toID, IsExternal: true}
				}
			}

			g.edges = append(g.edges, Edge{
				From:       fromID,
				To:         toID,
				Type:       imp.Type,
				IsTypeOnly: imp.Type == source.ImportTypeOnly,
			})

			if node, ok := g.nodes[fromID]; ok {
				node.Imports = append(node.Imports, toID)
				node.ImportDetails = append(node.ImportDetails, imp)
			}
		}
	}

	for _, e := range g.edges {
		if target, ok := g.nodes[e.To]; ok {
			target.ImportedBy = append(target.ImportedBy, e.From)
		}
	}

	for _, node := range g.nodes {
		sort.Strings(node.Imports)
		sort.Strings(node.ImportedBy)
	}

	return g
}

// canonicalID returns filePath relative to rootPath, using forward slashes
// so ids are stable across platforms.
func canonicalID(rootPath, filePath string) string {
	rel, err := filepath.Rel(rootPath, filePath)
	if err != nil {
		rel = filePath
	}
	return filepath.ToSlash(rel)
}

// resolveRelative resolves a relative import specifier against the
// importing file's directory, appending ".ts" when the specifier carries no
// extension of its own.
func resolveRelative(fromFile, specifier string) string {
	resolved := filepath.Clean(filepath.Join(filepath.Dir(fromFile), specifier))
	if filepath.Ext(resolved) == "" {
		resolved += ".ts"
	}
	return resolved
}

// Node returns the node for id, or nil if absent.
func (g *Graph) Node(id string) *Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[id]
}

// Nodes returns every node, sorted by id.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// TransitiveDependencies returns the forward closure of id, excluding id
// itself. Visited-set tracking guarantees termination in the presence of
// cycles.
func (g *Graph) TransitiveDependencies(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{id: true}
	queue := []string{id}
	var result []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node, ok := g.nodes[current]
		if !ok {
			continue
		}
		for _, dep := range node.Imports {
			if !visited[dep] {
				visited[dep] = true
				result = append(result, dep)
				queue = append(queue, dep)
			}
		}
	}

	sort.Strings(result)
	return result
}

// TransitiveDependents returns the backward closure of id, excluding id
// itself.
func (g *Graph) TransitiveDependents(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{id: true}
	queue := []string{id}
	var result []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node, ok := g.nodes[current]
		if !ok {
			continue
		}
		for _, dependent := range node.ImportedBy {
			if !visited[dependent] {
				visited[dependent] = true
				result = append(result, dependent)
				queue = append(queue, dependent)
			}
		}
	}

	sort.Strings(result)
	return result
}

// Stats summarizes a graph's shape.
type Stats struct {
	NodeCount             int
	EdgeCount             int
	ExternalCount         int
	WorkspaceCount        int
	TopMostImported       []NodeCount
	TopMostImporting      []NodeCount
}

// NodeCount pairs a node id with an edge count, used for the top-N
// statistics.
type NodeCount struct {
	ID    string
	Count int
}

// Statistics computes graph-wide counts and the topN most-imported /
// most-importing nodes by edge count.
func (g *Graph) Statistics(topN int) Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stats := Stats{NodeCount: len(g.nodes), EdgeCount: len(g.edges)}

	var byImported, byImporting []NodeCount
	for _, n := range g.nodes {
		if n.IsExternal {
			stats.ExternalCount++
		} else {
			stats.WorkspaceCount++
		}
		byImported = append(byImported, NodeCount{ID: n.ID, Count: len(n.ImportedBy)})
		byImporting = append(byImporting, NodeCount{ID: n.ID, Count: len(n.Imports)})
	}

	sortByCountThenID(byImported)
	sortByCountThenID(byImporting)

	stats.TopMostImported = truncate(byImported, topN)
	stats.TopMostImporting = truncate(byImporting, topN)

	return stats
}

func sortByCountThenID(items []NodeCount) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].ID < items[j].ID
	})
}

func truncate(items []NodeCount, n int) []NodeCount {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

// IsTestNode reports whether a node's file path looks like a test file,
// used by rules (e.g. circular-import) that exclude tests by default.
func IsTestNode(n *Node) bool {
	base := filepath.Base(n.FilePath)
	return strings.Contains(base, ".test.") || strings.Contains(base, ".spec.")
}

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

// Package analyzer defines the uniform contract every analysis rule
// implements and the registry the orchestrator uses to look analyzers up by
// id and enumerate the enabled set after per-analyzer config overrides.
package analyzer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"driftscan.dev/driftscan/depgraph"
	"driftscan.dev/driftscan/fs"
	"driftscan.dev/driftscan/issue"
	"driftscan.dev/driftscan/source"
	"driftscan.dev/driftscan/workspace"
)

// Metadata describes an analyzer's identity and default behaviour.
type Metadata struct {
	ID              string
	Name            string
	Description     string
	Categories      []issue.Category
	DefaultSeverity issue.Severity
}

// ProgressFunc reports a free-text progress message from inside a running
// analyzer.
type ProgressFunc func(message string)

// Context is the read-only view of workspace, graph, and configuration data
// handed to every analyzer's Analyze call. The orchestrator constructs one
// shared Context per run and, for each analyzer, a shallow copy with
// Options set to that analyzer's own resolved rule options.
type Context struct {
	WorkspacePath     string
	Packages          []workspace.Package
	SourceFiles       []string
	Graph             *depgraph.Graph
	Extracted         map[string]*source.ImportExtractionResult // keyed by absolute file path
	FS                fs.FileSystem                             // for rules that need a raw-token scan over file content
	WorkspacePrefixes []string                                  // configured workspace-package specifier prefixes
	Architecture      map[string]any                            // raw "architecture" config section
	Options           map[string]any                            // this analyzer's own rule-specific options
	ConfigHash        string
	ReportProgress    ProgressFunc
}

// WithOptions returns a shallow copy of c with Options replaced, used by the
// orchestrator to hand each analyzer its own resolved option set without
// mutating the shared Context.
func (c *Context) WithOptions(opts map[string]any) *Context {
	cp := *c
	cp.Options = opts
	return &cp
}

// Progress invokes the Context's ReportProgress callback when set.
func (c *Context) Progress(message string) {
	if c.ReportProgress != nil {
		c.ReportProgress(message)
	}
}

// Error is returned when an analyzer fails to complete. Orchestrator
// isolates it to the failing analyzer and continues with the rest.
type Error struct {
	AnalyzerID string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("analyzer %s: %v", e.AnalyzerID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Analyzer is a single pluggable analysis rule.
type Analyzer interface {
	Metadata() Metadata
	Analyze(ctx context.Context, actx *Context) ([]issue.Issue, error)
}

// Override is a per-analyzer configuration override applied by the
// Registry when enumerating enabled analyzers.
type Override struct {
	Enabled  *bool
	Severity *issue.Severity
	Options  map[string]any
}

// Registry maps analyzer id to Analyzer, supporting lookup and enumeration
// of the enabled set after config overrides are applied.
type Registry struct {
	mu        sync.RWMutex
	analyzers map[string]Analyzer
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[string]Analyzer)}
}

// Register adds an analyzer to the registry, keyed by its metadata id.
func (r *Registry) Register(a Analyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyzers[a.Metadata().ID] = a
}

// Get returns the analyzer registered under id, if any.
func (r *Registry) Get(id string) (Analyzer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyzers[id]
	return a, ok
}

// All returns every registered analyzer, sorted by id.
func (r *Registry) All() []Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Analyzer, 0, len(r.analyzers))
	for _, a := range r.analyzers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metadata().ID < out[j].Metadata().ID })
	return out
}

// Enabled returns every analyzer not explicitly disabled by overrides,
// sorted by id. An id absent from overrides is enabled by default.
func (r *Registry) Enabled(overrides map[string]Override) []Analyzer {
	all := r.All()
	out := make([]Analyzer, 0, len(all))
	for _, a := range all {
		if ov, ok := overrides[a.Metadata().ID]; ok && ov.Enabled != nil && !*ov.Enabled {
			continue
		}
		out = append(out, a)
	}
	return out
}

// EffectiveSeverity returns the severity an analyzer's issues should carry,
// honouring a config override when present.
func EffectiveSeverity(a Analyzer, overrides map[string]Override) issue.Severity {
	if ov, ok := overrides[a.Metadata().ID]; ok && ov.Severity != nil {
		return *ov.Severity
	}
	return a.Metadata().DefaultSeverity
}

// EffectiveOptions returns the rule-specific options map for an analyzer,
// honouring a config override when present.
func EffectiveOptions(a Analyzer, overrides map[string]Override) map[string]any {
	if ov, ok := overrides[a.Metadata().ID]; ok && ov.Options != nil {
		return ov.Options
	}
	return nil
}

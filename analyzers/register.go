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

import "driftscan.dev/driftscan/analyzer"

// RegisterAll registers the full built-in rule suite into r.
func RegisterAll(r *analyzer.Registry) {
	r.Register(PackageManifestAnalyzer{})
	r.Register(TSConfigAnalyzer{})
	r.Register(CrossConfigAnalyzer{})
	r.Register(VersionAlignmentAnalyzer{})
	r.Register(ExportsFieldAnalyzer{})
	r.Register(UnusedDependencyAnalyzer{})
	r.Register(CircularImportAnalyzer{})
	r.Register(PeerDependencyAnalyzer{})
	r.Register(DuplicateDependencyAnalyzer{})
	r.Register(ArchitecturalAnalyzer{})
	r.Register(BarrelExportAnalyzer{})
	r.Register(PublicAPIAnalyzer{})
	r.Register(SideEffectFreeAnalyzer{})
	r.Register(PathAliasAnalyzer{})
	r.Register(PackageBoundaryAnalyzer{})
	r.Register(TreeShakingBlockerAnalyzer{})
	r.Register(DuplicateCodeAnalyzer{})
	r.Register(DeadExportAnalyzer{})
	r.Register(LargeDependencyAnalyzer{})
}

// NewDefaultRegistry constructs a Registry with the full built-in rule
// suite already registered.
func NewDefaultRegistry() *analyzer.Registry {
	r := analyzer.NewRegistry()
	RegisterAll(r)
	return r
}

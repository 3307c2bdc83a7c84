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

// Package source parses JavaScript/TypeScript source text with tree-sitter
// and extracts typed import records for the dependency graph and the
// analyzer suite.
package source

import (
	"fmt"
	"path"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// ImportType classifies how a module was referenced.
type ImportType string

const (
	ImportStatic     ImportType = "static"
	ImportDynamic    ImportType = "dynamic"
	ImportRequire    ImportType = "require"
	ImportTypeOnly   ImportType = "type-only"
	ImportSideEffect ImportType = "side-effect"
)

// ExtractedImport is a single import/require/re-export found in a file.
type ExtractedImport struct {
	ModuleSpecifier    string
	Type               ImportType
	IsRelative         bool
	IsWorkspacePackage bool
	NamedImports       []string
	DefaultImport      string
	NamespaceImport    string
	Line               int
	Column             int
}

// ImportExtractionResult is the per-file output of the extractor.
type ImportExtractionResult struct {
	FilePath              string
	Imports               []ExtractedImport
	ExternalDependencies  []string
	WorkspaceDependencies []string
	RelativeImports       []string
}

// Extractor extracts imports from TypeScript/JavaScript source text.
type Extractor struct {
	workspacePrefixes []string
}

// NewExtractor constructs an Extractor. workspacePrefixes is the configured
// set of specifier prefixes (e.g. "@myorg/") treated as internal to the
// workspace rather than external dependencies.
func NewExtractor(workspacePrefixes []string) *Extractor {
	return &Extractor{workspacePrefixes: workspacePrefixes}
}

// Extract parses content and produces an ImportExtractionResult for
// filePath. A parse failure returns an error; the orchestrator skips such a
// file and records no warning.
func (e *Extractor) Extract(filePath string, content []byte) (*ImportExtractionResult, error) {
	qm, err := GetQueryManager()
	if err != nil {
		return nil, err
	}

	parser := getTSParser()
	defer putTSParser(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("source: failed to parse %s", filePath)
	}
	defer tree.Close()

	query, err := qm.Query("imports")
	if err != nil {
		return nil, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	result := &ImportExtractionResult{FilePath: filePath}
	captureNames := query.CaptureNames()

	matches := cursor.Matches(query, tree.RootNode(), content)
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		e.handleMatch(match, captureNames, content, result)
	}

	e.deriveProjections(result)
	return result, nil
}

func (e *Extractor) handleMatch(match *ts.QueryMatch, captureNames []string, content []byte, result *ImportExtractionResult) {
	var (
		spec          string
		specNode      *ts.Node
		isTypeOnly    bool
		isSideEffect  bool
		isReexport    bool
		isDynamic     bool
		isRequire     bool
		defaultImport string
		namespace     string
		named         []string
	)

	for _, capture := range match.Captures {
		name := captureNames[capture.Index]
		node := capture.Node
		text := node.Utf8Text(content)

		switch name {
		case "import.spec":
			spec = text
			specNode = &node
		case "import.sideeffect.spec":
			spec = text
			specNode = &node
			isSideEffect = true
		case "reexport.spec":
			spec = text
			specNode = &node
			isReexport = true
		case "dynamicImport.spec":
			spec = text
			specNode = &node
			isDynamic = true
		case "require.spec":
			spec = text
			specNode = &node
			isRequire = true
		case "import.typeonly.keyword":
			isTypeOnly = true
		case "import.default":
			defaultImport = text
		case "import.namespace":
			namespace = text
		case "import.named":
			named = append(named, text)
		}
	}

	if spec == "" || specNode == nil {
		return
	}

	importType := ImportStatic
	switch {
	case isTypeOnly:
		importType = ImportTypeOnly
	case isDynamic:
		importType = ImportDynamic
	case isRequire:
		importType = ImportRequire
	case isSideEffect:
		importType = ImportSideEffect
	case isReexport:
		importType = ImportStatic
	}

	imp := ExtractedImport{
		ModuleSpecifier:    spec,
		Type:               importType,
		IsRelative:         isRelativeSpecifier(spec),
		IsWorkspacePackage: e.isWorkspaceSpecifier(spec),
		NamedImports:       named,
		DefaultImport:      defaultImport,
		NamespaceImport:    namespace,
		Line:               int(specNode.StartPosition().Row) + 1,
		Column:             int(specNode.StartPosition().Column) + 1,
	}
	result.Imports = append(result.Imports, imp)
}

func (e *Extractor) deriveProjections(result *ImportExtractionResult) {
	seenExternal := make(map[string]bool)
	seenWorkspace := make(map[string]bool)

	for _, imp := range result.Imports {
		switch {
		case imp.IsRelative:
			result.RelativeImports = append(result.RelativeImports, imp.ModuleSpecifier)
		case imp.IsWorkspacePackage:
			if !seenWorkspace[imp.ModuleSpecifier] {
				seenWorkspace[imp.ModuleSpecifier] = true
				result.WorkspaceDependencies = append(result.WorkspaceDependencies, imp.ModuleSpecifier)
			}
		default:
			base := BasePackageName(imp.ModuleSpecifier)
			if !seenExternal[base] {
				seenExternal[base] = true
				result.ExternalDependencies = append(result.ExternalDependencies, base)
			}
		}
	}
}

func isRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, ".")
}

func (e *Extractor) isWorkspaceSpecifier(specifier string) bool {
	for _, prefix := range e.workspacePrefixes {
		if specifier == prefix || strings.HasPrefix(specifier, prefix+"/") {
			return true
		}
	}
	return false
}

// BasePackageName reduces a bare module specifier to its package name:
// "@scope/name/sub/path" -> "@scope/name", "name/sub/path" -> "name".
func BasePackageName(specifier string) string {
	if strings.HasPrefix(specifier, "@") {
		parts := strings.SplitN(specifier, "/", 3)
		if len(parts) >= 2 {
			return path.Join(parts[0], parts[1])
		}
		return specifier
	}
	parts := strings.SplitN(specifier, "/", 2)
	return parts[0]
}

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

package source

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Block is a single function declaration, class method, or arrow/function
// expression bound to a variable, along with the structural token sequence
// of its body used by the duplicate-code fingerprint.
type Block struct {
	Name           string
	FilePath       string
	StartLine      int
	EndLine        int
	StatementCount int
	Tokens         []string
}

// structuralSkipKinds lists the tree-sitter node kinds whose text carries
// identifier names or literal values rather than syntactic structure; these
// are excluded from the fingerprint token sequence so renaming a variable
// or changing a literal does not change the fingerprint.
var structuralSkipKinds = map[string]bool{
	"identifier":                true,
	"property_identifier":       true,
	"private_property_identifier": true,
	"shorthand_property_identifier": true,
	"string":                    true,
	"string_fragment":           true,
	"template_string":           true,
	"template_substitution":     true,
	"number":                    true,
	"regex":                     true,
	"true":                      true,
	"false":                     true,
	"null":                      true,
	"undefined":                 true,
	"this":                      true,
	"super":                     true,
	"comment":                   true,
}

// ExtractBlocks parses content and returns every function declaration,
// class method, and arrow/function-expression-valued binding with a block
// body, along with the structural fingerprint tokens of each body.
func ExtractBlocks(filePath string, content []byte) ([]Block, error) {
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

	query, err := qm.Query("declarations")
	if err != nil {
		return nil, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	captureNames := query.CaptureNames()
	var blocks []Block

	matches := cursor.Matches(query, tree.RootNode(), content)
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var name string
		var body *ts.Node

		for _, capture := range match.Captures {
			switch captureNames[capture.Index] {
			case "declaration.name":
				name = capture.Node.Utf8Text(content)
			case "declaration.body":
				node := capture.Node
				body = &node
			}
		}

		if body == nil {
			continue
		}

		var tokens []string
		collectTokens(body, content, &tokens)

		blocks = append(blocks, Block{
			Name:           name,
			FilePath:       filePath,
			StartLine:      int(body.StartPosition().Row) + 1,
			EndLine:        int(body.EndPosition().Row) + 1,
			StatementCount: int(body.NamedChildCount()),
			Tokens:         tokens,
		})
	}

	return blocks, nil
}

// collectTokens walks n's descendants, appending one token per named node
// whose kind is not in structuralSkipKinds.
func collectTokens(n *ts.Node, content []byte, tokens *[]string) {
	if n == nil {
		return
	}
	if n.IsNamed() && !structuralSkipKinds[n.Kind()] {
		*tokens = append(*tokens, n.Kind())
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		collectTokens(child, content, tokens)
	}
}

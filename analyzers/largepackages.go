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

// knownLargePackages is a static table of well-known packages with a large
// installed/minified footprint, consulted by the tree-shaking-blocker and
// large-dependency rules. Sizes are approximate minified+gzipped kilobytes,
// intended as a coarse "is this worth dynamic-importing" signal, not an
// exact measurement - the core has no network access to query a registry
// for current sizes (see DESIGN.md).
var knownLargePackages = map[string]int{
	"moment":        67,
	"lodash":        25,
	"aws-sdk":       2000,
	"@aws-sdk/client-s3": 300,
	"rxjs":          45,
	"three":         150,
	"chart.js":      60,
	"pdfkit":        500,
	"puppeteer":     300,
	"playwright":    400,
	"@material-ui/core": 300,
	"@mui/material": 300,
	"antd":          500,
	"monaco-editor": 2000,
	"echarts":       450,
	"xlsx":          700,
	"pdfjs-dist":    1000,
	"jspdf":         350,
	"highlight.js":  100,
	"prismjs":       20,
	"firebase":      250,
	"googleapis":    600,
}

// DefaultLargePackageNames returns the package names in knownLargePackages,
// used by rules whose "largePackages" option is left unconfigured.
func DefaultLargePackageNames() []string {
	names := make([]string, 0, len(knownLargePackages))
	for name := range knownLargePackages {
		names = append(names, name)
	}
	return names
}

// LargePackageSizeKB returns the approximate size in kilobytes for a known
// large package, and whether it is in the table at all.
func LargePackageSizeKB(name string) (int, bool) {
	size, ok := knownLargePackages[name]
	return size, ok
}

//go:build tools

// Package tools pins build-time tool dependencies in go.mod so `go mod tidy`
// doesn't drop them; none of these are imported by the analysis engine
// itself.
package tools

import (
	_ "gotest.tools/gotestsum"
)

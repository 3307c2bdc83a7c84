package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractStaticImport(t *testing.T) {
	e := NewExtractor([]string{"@acme/"})
	result, err := e.Extract("index.ts", []byte(`import { debounce } from 'lodash';`))
	require.NoError(t, err)
	require.Len(t, result.Imports, 1)
	imp := result.Imports[0]
	require.Equal(t, "lodash", imp.ModuleSpecifier)
	require.Equal(t, ImportStatic, imp.Type)
	require.Contains(t, imp.NamedImports, "debounce")
	require.False(t, imp.IsRelative)
	require.Equal(t, []string{"lodash"}, result.ExternalDependencies)
}

func TestExtractDefaultImport(t *testing.T) {
	e := NewExtractor(nil)
	result, err := e.Extract("index.ts", []byte(`import React from 'react';`))
	require.NoError(t, err)
	require.Len(t, result.Imports, 1)
	require.Equal(t, "React", result.Imports[0].DefaultImport)
}

func TestExtractNamespaceImport(t *testing.T) {
	e := NewExtractor(nil)
	result, err := e.Extract("index.ts", []byte(`import * as path from 'node:path';`))
	require.NoError(t, err)
	require.Len(t, result.Imports, 1)
	require.Equal(t, "path", result.Imports[0].NamespaceImport)
}

func TestExtractRelativeImport(t *testing.T) {
	e := NewExtractor(nil)
	result, err := e.Extract("index.ts", []byte(`import { helper } from './helper';`))
	require.NoError(t, err)
	require.True(t, result.Imports[0].IsRelative)
	require.Equal(t, []string{"./helper"}, result.RelativeImports)
}

func TestExtractWorkspaceImport(t *testing.T) {
	e := NewExtractor([]string{"@acme/"})
	result, err := e.Extract("index.ts", []byte(`import { thing } from '@acme/shared';`))
	require.NoError(t, err)
	require.True(t, result.Imports[0].IsWorkspacePackage)
	require.Equal(t, []string{"@acme/shared"}, result.WorkspaceDependencies)
}

func TestExtractDynamicImport(t *testing.T) {
	e := NewExtractor(nil)
	result, err := e.Extract("index.ts", []byte(`const mod = await import('lodash');`))
	require.NoError(t, err)
	require.Len(t, result.Imports, 1)
	require.Equal(t, ImportDynamic, result.Imports[0].Type)
}

func TestExtractRequire(t *testing.T) {
	e := NewExtractor(nil)
	result, err := e.Extract("index.js", []byte(`const fs = require('fs');`))
	require.NoError(t, err)
	require.Len(t, result.Imports, 1)
	require.Equal(t, ImportRequire, result.Imports[0].Type)
}

func TestExtractTypeOnlyImport(t *testing.T) {
	e := NewExtractor(nil)
	result, err := e.Extract("index.ts", []byte(`import type { Foo } from './types';`))
	require.NoError(t, err)
	require.Len(t, result.Imports, 1)
	require.Equal(t, ImportTypeOnly, result.Imports[0].Type)
}

func TestExtractSideEffectImport(t *testing.T) {
	e := NewExtractor(nil)
	result, err := e.Extract("index.ts", []byte(`import './polyfills';`))
	require.NoError(t, err)
	require.Len(t, result.Imports, 1)
	require.Equal(t, ImportSideEffect, result.Imports[0].Type)
}

func TestExtractReexport(t *testing.T) {
	e := NewExtractor(nil)
	result, err := e.Extract("index.ts", []byte(`export { foo } from './foo';`))
	require.NoError(t, err)
	require.Len(t, result.Imports, 1)
	require.Equal(t, "./foo", result.Imports[0].ModuleSpecifier)
}

func TestBasePackageNameScoped(t *testing.T) {
	require.Equal(t, "@acme/widgets", BasePackageName("@acme/widgets/dist/index"))
}

func TestBasePackageNameUnscoped(t *testing.T) {
	require.Equal(t, "lodash", BasePackageName("lodash/debounce"))
}

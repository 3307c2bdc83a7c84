package hashing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashContentStable(t *testing.T) {
	h := New()
	d1 := h.HashContent([]byte("hello world"))
	d2 := h.HashContent([]byte("hello world"))
	require.Equal(t, d1, d2)
}

func TestHashContentNormalizesLF(t *testing.T) {
	h := New()
	withCRLF := h.HashContent([]byte("line1\r\nline2\r\n"))
	withLF := h.HashContent([]byte("line1\nline2\n"))
	require.Equal(t, withLF, withCRLF)
}

func TestHashContentNormalizationDisabled(t *testing.T) {
	h := New(WithLFNormalization(false))
	withCRLF := h.HashContent([]byte("line1\r\nline2\r\n"))
	withLF := h.HashContent([]byte("line1\nline2\n"))
	require.NotEqual(t, withLF, withCRLF)
}

func TestHashJSONStableUnderKeyReordering(t *testing.T) {
	h := New()
	d1, err := h.HashJSON(map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	d2, err := h.HashJSON(map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	require.Equal(t, d1, d2, "hashJson must be stable under key reordering")
}

func TestHashJSONDiffersOnValueChange(t *testing.T) {
	h := New()
	d1, _ := h.HashJSON(map[string]any{"a": 1})
	d2, _ := h.HashJSON(map[string]any{"a": 2})
	require.NotEqual(t, d1, d2)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	h := New()
	digest, err := h.Hash(path)
	require.NoError(t, err)
	require.Equal(t, h.HashContent([]byte("content")), digest)
}

func TestHashMissingFile(t *testing.T) {
	h := New()
	_, err := h.Hash(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestHashFilesCombinesDigests(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("beta"), 0o644))

	h := New()
	combined, err := h.HashFiles([]string{a, b})
	require.NoError(t, err)

	reordered, err := h.HashFiles([]string{b, a})
	require.NoError(t, err)

	require.NotEqual(t, combined, reordered, "HashFiles is order-sensitive for the given slice")
}

func TestHashMD5Algorithm(t *testing.T) {
	h := New(WithAlgorithm(MD5))
	digest := h.HashContent([]byte("hello"))
	require.Len(t, digest, 32)
}

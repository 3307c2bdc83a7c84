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

// Package hashing produces content-addressed digests of files and JSON
// values for the analysis cache and change detector.
package hashing

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"os"
	"sort"
)

// Algorithm selects the digest function used by a Hasher.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	MD5    Algorithm = "md5"
)

// Hasher computes digests over files, in-memory content, and JSON values.
// The zero value is not usable; construct one with New.
type Hasher struct {
	algorithm     Algorithm
	normalizeLF   bool
	normalizeLFOn bool
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithAlgorithm selects the digest algorithm. Default is SHA256.
func WithAlgorithm(alg Algorithm) Option {
	return func(h *Hasher) { h.algorithm = alg }
}

// WithLFNormalization toggles CRLF->LF normalization before hashing.
// Default is on.
func WithLFNormalization(enabled bool) Option {
	return func(h *Hasher) { h.normalizeLFOn = enabled }
}

// New constructs a Hasher with sha256 and LF normalization enabled by
// default, overridden by the supplied options.
func New(opts ...Option) *Hasher {
	h := &Hasher{algorithm: SHA256, normalizeLFOn: true}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hasher) newHash() hash.Hash {
	if h.algorithm == MD5 {
		return md5.New()
	}
	return sha256.New()
}

func normalizeLF(data []byte) []byte {
	if !bytes.Contains(data, []byte("\r\n")) {
		return data
	}
	return bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
}

// Hash reads path and returns its canonical digest.
func (h *Hasher) Hash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hashing: read %s: %w", path, err)
	}
	return h.HashContent(data), nil
}

// HashContent returns the digest of in-memory content.
func (h *Hasher) HashContent(data []byte) string {
	if h.normalizeLFOn {
		data = normalizeLF(data)
	}
	sum := h.newHash()
	sum.Write(data)
	return hex.EncodeToString(sum.Sum(nil))
}

// HashJSON serializes value with deterministic key ordering and returns its
// digest. Two values that differ only in map key insertion order hash to
// the same digest.
func (h *Hasher) HashJSON(value any) (string, error) {
	canonical, err := canonicalize(value)
	if err != nil {
		return "", fmt.Errorf("hashing: canonicalize: %w", err)
	}
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("hashing: marshal: %w", err)
	}
	return h.HashContent(data), nil
}

// HashFiles hashes each path then hashes the delimited concatenation of the
// per-file digests, producing a single stable combined digest. Paths are
// hashed in the order given; callers that need order-independence should
// sort paths before calling.
func (h *Hasher) HashFiles(paths []string) (string, error) {
	var buf bytes.Buffer
	for i, p := range paths {
		digest, err := h.Hash(p)
		if err != nil {
			return "", err
		}
		if i > 0 {
			buf.WriteByte(0x1f) // unit separator: a byte that cannot appear in a hex digest
		}
		buf.WriteString(digest)
	}
	return h.HashContent(buf.Bytes()), nil
}

// canonicalize walks an arbitrary JSON-marshalable value and returns one
// whose map keys are in deterministic (sorted) order, by round-tripping
// through encoding/json into a tree of ordered primitives.
func canonicalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var decoded any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}
	return canonicalizeDecoded(decoded), nil
}

func canonicalizeDecoded(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make([]orderedEntry, 0, len(keys))
		for _, k := range keys {
			ordered = append(ordered, orderedEntry{Key: k, Value: canonicalizeDecoded(t[k])})
		}
		return orderedObject(ordered)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalizeDecoded(e)
		}
		return out
	default:
		return t
	}
}

type orderedEntry struct {
	Key   string
	Value any
}

// orderedObject marshals as a JSON object preserving the sorted key order
// assigned during canonicalization (map[string]any would re-randomize it).
type orderedObject []orderedEntry

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

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

// Package changedetect is the ground truth for "has this path changed"
// queries: it records a path's content hash and later reports whether the
// path's current content still matches. cache.Cache does not use a
// Detector; its Validate hashes files itself.
package changedetect

import (
	"sync"

	"driftscan.dev/driftscan/fs"
	"driftscan.dev/driftscan/hashing"
)

// Detector records content hashes for a set of paths and answers whether a
// given path has changed since it was last recorded. Safe for concurrent
// use.
type Detector struct {
	mu     sync.RWMutex
	fsys   fs.FileSystem
	hasher *hashing.Hasher
	hashes map[string]string
}

// New constructs an empty Detector.
func New(fsys fs.FileSystem, hasher *hashing.Hasher) *Detector {
	if hasher == nil {
		hasher = hashing.New()
	}
	return &Detector{
		fsys:   fsys,
		hasher: hasher,
		hashes: make(map[string]string),
	}
}

// Record hashes path's current content and stores it as the known-good
// state for future Changed queries. Returns the computed hash.
func (d *Detector) Record(path string) (string, error) {
	data, err := d.fsys.ReadFile(path)
	if err != nil {
		return "", err
	}
	hash := d.hasher.HashContent(data)

	d.mu.Lock()
	d.hashes[path] = hash
	d.mu.Unlock()

	return hash, nil
}

// RecordHash stores a pre-computed hash for path, used when the caller
// already hashed the content (e.g. while loading a cache document) and a
// redundant re-read would be wasted I/O.
func (d *Detector) RecordHash(path, hash string) {
	d.mu.Lock()
	d.hashes[path] = hash
	d.mu.Unlock()
}

// Changed reports whether path's current on-disk content differs from its
// recorded hash. A path with no recorded hash is always reported changed
// (it is effectively new).
func (d *Detector) Changed(path string) (bool, error) {
	d.mu.RLock()
	known, ok := d.hashes[path]
	d.mu.RUnlock()
	if !ok {
		return true, nil
	}

	data, err := d.fsys.ReadFile(path)
	if err != nil {
		return true, err
	}
	return d.hasher.HashContent(data) != known, nil
}

// Hash returns the recorded hash for path, if any.
func (d *Detector) Hash(path string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.hashes[path]
	return h, ok
}

// Clear removes the recorded hash for a single path.
func (d *Detector) Clear(path string) {
	d.mu.Lock()
	delete(d.hashes, path)
	d.mu.Unlock()
}

// ClearAll removes every recorded hash.
func (d *Detector) ClearAll() {
	d.mu.Lock()
	d.hashes = make(map[string]string)
	d.mu.Unlock()
}

// Result partitions a set of current paths against the Detector's recorded
// state, mirroring cache.ValidationResult's file classification.
type Result struct {
	Changed []string
	New     []string
	Deleted []string
}

// Validate classifies every path in currentPaths as changed or new
// relative to the Detector's recorded state, and every previously recorded
// path absent from currentPaths as deleted.
func (d *Detector) Validate(currentPaths []string) Result {
	var result Result
	seen := make(map[string]bool, len(currentPaths))

	for _, p := range currentPaths {
		seen[p] = true
		changed, err := d.Changed(p)
		if err != nil {
			result.New = append(result.New, p)
			continue
		}
		d.mu.RLock()
		_, known := d.hashes[p]
		d.mu.RUnlock()
		if !known {
			result.New = append(result.New, p)
		} else if changed {
			result.Changed = append(result.Changed, p)
		}
	}

	d.mu.RLock()
	for p := range d.hashes {
		if !seen[p] {
			result.Deleted = append(result.Deleted, p)
		}
	}
	d.mu.RUnlock()

	return result
}
